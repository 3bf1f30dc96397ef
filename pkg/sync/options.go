package sync

import (
	"os"
	"strings"
	"time"

	"github.com/damonswayn/agentconfig/pkg/config"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// Options configures one sync run. Zero values defer to the configuration
// file's defaults section.
type Options struct {
	// SourceRoot is the canonical source tree. Empty uses the configured
	// default, then AGENTCONFIG_ROOT, then the XDG config directory.
	SourceRoot string

	// Scope selects global or project targets. Empty means global.
	Scope types.Scope

	// ProjectRoot is the target repository root; required for project scope.
	ProjectRoot string

	// Mode is the requested sync mode. Empty defers to the config default,
	// then auto.
	Mode types.SyncMode

	// Agents filters the run to the named agents. Empty syncs all.
	Agents []string

	// Profile selects a named profile whose mappings are appended to every
	// agent. Empty defers to the config default.
	Profile string

	// Force replaces pre-existing unmanaged targets without prompting,
	// equivalent to a fixed overwrite policy.
	Force bool

	// Strict makes a missing mapping source fail the run instead of
	// producing a warning.
	Strict bool

	// DryRun resolves the plan without touching the filesystem or the
	// state snapshot.
	DryRun bool

	// OnConflict fixes the conflict policy up front. Empty means undecided.
	OnConflict types.ConflictAction

	// Resolver supplies interactive conflict decisions. Nil means the run
	// cannot prompt: the first unresolvable conflict fixes skip for the
	// rest of the run.
	Resolver types.ConflictResolver

	// Env is the environment map used for placeholder expansion. Nil
	// snapshots the process environment once at the boundary.
	Env map[string]string

	// WorkDir anchors relative path resolution. Empty uses the process
	// working directory, captured once at the boundary.
	WorkDir string

	// Now supplies timestamps (backup directories, state records).
	// Nil uses time.Now.
	Now func() time.Time
}

// withDefaults resolves every optional field against the configuration and
// the ambient process state, so the engine itself never reads globals.
func (o Options) withDefaults(cfg *config.Config) Options {
	if o.Env == nil {
		o.Env = environMap()
	}
	if o.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			o.WorkDir = wd
		} else {
			o.WorkDir = "/"
		}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Scope == "" {
		o.Scope = types.ScopeGlobal
	}
	if o.Mode == "" {
		o.Mode = cfg.Defaults.Mode
	}
	if o.Mode == "" {
		o.Mode = types.ModeAuto
	}
	if o.Profile == "" {
		o.Profile = cfg.Defaults.Profile
	}
	if o.SourceRoot == "" {
		o.SourceRoot = cfg.Defaults.SourceRoot
	}
	if o.SourceRoot == "" {
		o.SourceRoot = paths.DefaultSourceRoot(o.Env)
	}
	o.SourceRoot = paths.ResolveAbsolute(o.SourceRoot, o.Env, o.WorkDir)
	if o.ProjectRoot != "" {
		o.ProjectRoot = paths.ResolveAbsolute(o.ProjectRoot, o.Env, o.WorkDir)
	}
	if o.Force && o.OnConflict == "" {
		o.OnConflict = types.ConflictOverwrite
	}
	return o
}

// environMap snapshots the process environment into a map.
func environMap() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	return env
}
