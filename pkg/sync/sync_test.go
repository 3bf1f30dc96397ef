package sync_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damonswayn/agentconfig/pkg/config"
	acerrors "github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/filesystem"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/state"
	"github.com/damonswayn/agentconfig/pkg/sync"
	"github.com/damonswayn/agentconfig/pkg/types"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// env is a test environment: a source root with one agent.md file and a
// single-agent configuration targeting tgt/claude.
type env struct {
	base    string
	srcRoot string
	tgtRoot string
	cfg     *config.Config
}

func setupEnv(t *testing.T) *env {
	t.Helper()

	base := t.TempDir()
	e := &env{
		base:    base,
		srcRoot: filepath.Join(base, "src"),
		tgtRoot: filepath.Join(base, "tgt"),
	}
	writeFileT(t, filepath.Join(e.srcRoot, "agent.md"), "hello")

	e.cfg = &config.Config{
		Version: 1,
		Agents: config.AgentList{
			{ID: "claude", AgentConfig: types.AgentConfig{
				Global: &types.ScopeConfig{
					Root:  filepath.Join(e.tgtRoot, "claude"),
					Files: []types.MappingEntry{{Source: "agent.md", Target: "CLAUDE.md"}},
				},
			}},
		},
	}
	return e
}

func (e *env) opts(mode types.SyncMode) sync.Options {
	return sync.Options{
		SourceRoot: e.srcRoot,
		Mode:       mode,
		Env:        map[string]string{},
		WorkDir:    "/",
		Now:        func() time.Time { return fixedNow },
	}
}

func (e *env) source() string { return filepath.Join(e.srcRoot, "agent.md") }
func (e *env) target() string { return filepath.Join(e.tgtRoot, "claude", "CLAUDE.md") }

func (e *env) loadState(t *testing.T) *state.State {
	t.Helper()
	st, err := state.NewStore(filesystem.NewOS(), e.srcRoot).Load()
	require.NoError(t, err)
	return st
}

func writeFileT(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFileT(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_LinkCreatesSymlink(t *testing.T) {
	e := setupEnv(t)

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	assert.Len(t, result.Planned, 1)
	assert.Len(t, result.Updated, 1)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Warnings)

	linkTarget, err := os.Readlink(e.target())
	require.NoError(t, err)
	assert.Equal(t, e.source(), linkTarget)

	st := e.loadState(t)
	rec, ok := st.Files[e.target()]
	require.True(t, ok)
	assert.Equal(t, types.ModeLink, rec.Mode)
	assert.Equal(t, e.source(), rec.LinkTarget)
	assert.Equal(t, "claude", rec.Agent)
	assert.Empty(t, rec.Hash)
}

func TestRun_CopyCreatesFile(t *testing.T) {
	e := setupEnv(t)

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeCopy))
	require.NoError(t, err)
	require.Len(t, result.Updated, 1)

	info, err := os.Lstat(e.target())
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.Equal(t, "hello", readFileT(t, e.target()))

	rec := e.loadState(t).Files[e.target()]
	assert.Equal(t, types.ModeCopy, rec.Mode)
	assert.True(t, strings.HasPrefix(rec.Hash, "sha256:"))
	assert.Empty(t, rec.LinkTarget)
}

func TestRun_CopyDirectory(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, filepath.Join(e.srcRoot, "rules", "go.md"), "go rules")
	writeFileT(t, filepath.Join(e.srcRoot, "rules", "nested", "deep.md"), "deep")
	e.cfg.Agents[0].Global.Files = []types.MappingEntry{{Source: "rules/", Target: "rules/"}}

	_, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeCopy))
	require.NoError(t, err)

	dst := filepath.Join(e.tgtRoot, "claude", "rules")
	assert.Equal(t, "go rules", readFileT(t, filepath.Join(dst, "go.md")))
	assert.Equal(t, "deep", readFileT(t, filepath.Join(dst, "nested", "deep.md")))
}

func TestRun_MissingSourceWarns(t *testing.T) {
	e := setupEnv(t)
	require.NoError(t, os.Remove(e.source()))

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	assert.Len(t, result.Planned, 1)
	assert.Empty(t, result.Updated)
	assert.Len(t, result.Skipped, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "missing source")

	_, err = os.Lstat(e.target())
	assert.True(t, os.IsNotExist(err))

	// Nothing was applied, so no snapshot is written.
	_, err = os.Stat(paths.StatePath(e.srcRoot))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_MissingSourceStrict(t *testing.T) {
	e := setupEnv(t)
	require.NoError(t, os.Remove(e.source()))

	opts := e.opts(types.ModeLink)
	opts.Strict = true

	_, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.Error(t, err)
	assert.True(t, acerrors.IsErrorCode(err, acerrors.ErrSourceMissing))
	assert.Equal(t, acerrors.KindValidation, acerrors.KindOf(err))
}

func TestRun_ConflictDefaultsToSkip(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	assert.Empty(t, result.Updated)
	assert.Len(t, result.Skipped, 1)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "no conflict policy")

	// The pre-existing file is untouched.
	assert.Equal(t, "precious", readFileT(t, e.target()))
	info, err := os.Lstat(e.target())
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestRun_ConflictOverwrite(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	opts := e.opts(types.ModeLink)
	opts.OnConflict = types.ConflictOverwrite

	result, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)
	assert.Len(t, result.Updated, 1)

	linkTarget, err := os.Readlink(e.target())
	require.NoError(t, err)
	assert.Equal(t, e.source(), linkTarget)
}

func TestRun_ForceImpliesOverwrite(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	opts := e.opts(types.ModeCopy)
	opts.Force = true

	result, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, "hello", readFileT(t, e.target()))
}

func TestRun_ConflictBackup(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	opts := e.opts(types.ModeCopy)
	opts.OnConflict = types.ConflictBackup

	result, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, "hello", readFileT(t, e.target()))

	backup := filepath.Join(e.srcRoot, "backup", "2025-03-14T09-26-53Z", paths.BackupRelativePath(e.target()))
	assert.Equal(t, "precious", readFileT(t, backup))
}

func TestRun_ConflictCancel(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	opts := e.opts(types.ModeLink)
	opts.Resolver = types.ConflictResolverFunc(func(types.ResolvedMapping) (types.ConflictDecision, error) {
		return types.ConflictDecision{Action: types.ConflictCancel}, nil
	})

	_, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.Error(t, err)
	assert.True(t, acerrors.IsErrorCode(err, acerrors.ErrConflictCancelled))
	assert.Equal(t, acerrors.KindConflict, acerrors.KindOf(err))

	// Cancel aborts before touching the target.
	assert.Equal(t, "precious", readFileT(t, e.target()))
}

func TestRun_ResolverApplyToAll(t *testing.T) {
	e := setupEnv(t)
	e.cfg.Agents[0].Global.Files = []types.MappingEntry{
		{Source: "agent.md", Target: "CLAUDE.md"},
		{Source: "agent.md", Target: "other.md"},
	}
	writeFileT(t, e.target(), "one")
	writeFileT(t, filepath.Join(e.tgtRoot, "claude", "other.md"), "two")

	calls := 0
	opts := e.opts(types.ModeLink)
	opts.Resolver = types.ConflictResolverFunc(func(types.ResolvedMapping) (types.ConflictDecision, error) {
		calls++
		return types.ConflictDecision{Action: types.ConflictOverwrite, ApplyToAll: true}, nil
	})

	result, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "apply-to-all should suppress further prompts")
	assert.Len(t, result.Updated, 2)
}

func TestRun_ManagedTargetReplacedWithoutPrompt(t *testing.T) {
	e := setupEnv(t)

	_, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	// Tamper: replace the managed symlink with a plain file.
	require.NoError(t, os.Remove(e.target()))
	writeFileT(t, e.target(), "tampered")

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	assert.Len(t, result.Updated, 1)
	assert.Empty(t, result.Warnings)

	linkTarget, err := os.Readlink(e.target())
	require.NoError(t, err)
	assert.Equal(t, e.source(), linkTarget)
}

func TestRun_LinkIdempotent(t *testing.T) {
	e := setupEnv(t)

	_, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	// The correct symlink is left alone but still counts as updated.
	assert.Len(t, result.Updated, 1)
	assert.Empty(t, result.Warnings)
}

func TestRun_CopyRepeatsEveryRun(t *testing.T) {
	e := setupEnv(t)

	_, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeCopy))
	require.NoError(t, err)

	// Unlike link mode, copy mode has no already-satisfied check: the
	// managed target is re-copied, picking up source edits.
	writeFileT(t, e.source(), "hello again")

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeCopy))
	require.NoError(t, err)
	assert.Len(t, result.Updated, 1)
	assert.Equal(t, "hello again", readFileT(t, e.target()))
}

func TestRun_DryRunMutatesNothing(t *testing.T) {
	e := setupEnv(t)
	writeFileT(t, e.target(), "precious")

	opts := e.opts(types.ModeLink)
	opts.DryRun = true
	opts.Resolver = types.ConflictResolverFunc(func(m types.ResolvedMapping) (types.ConflictDecision, error) {
		t.Fatalf("dry run prompted for %s", m.Target)
		return types.ConflictDecision{}, nil
	})

	result, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)

	assert.Len(t, result.Planned, 1)
	assert.Empty(t, result.Updated)

	assert.Equal(t, "precious", readFileT(t, e.target()))
	_, err = os.Stat(paths.StatePath(e.srcRoot))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_StateMergesAcrossRuns(t *testing.T) {
	e := setupEnv(t)
	e.cfg.Agents = append(e.cfg.Agents, config.Agent{
		ID: "codex",
		AgentConfig: types.AgentConfig{
			Global: &types.ScopeConfig{
				Root:  filepath.Join(e.tgtRoot, "codex"),
				Files: []types.MappingEntry{{Source: "agent.md", Target: "AGENTS.md"}},
			},
		},
	})

	opts := e.opts(types.ModeLink)
	opts.Agents = []string{"claude"}
	_, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)

	opts = e.opts(types.ModeLink)
	opts.Agents = []string{"codex"}
	_, err = sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.NoError(t, err)

	st := e.loadState(t)
	assert.True(t, st.IsManaged(e.target()))
	assert.True(t, st.IsManaged(filepath.Join(e.tgtRoot, "codex", "AGENTS.md")))
}

// symlinkFailFS simulates a filesystem that cannot create symlinks, like a
// FAT volume.
type symlinkFailFS struct {
	types.FS
}

func (symlinkFailFS) Symlink(oldname, newname string) error {
	return fmt.Errorf("symlink %s: operation not permitted", newname)
}

func TestRun_LinkFallsBackToCopy(t *testing.T) {
	e := setupEnv(t)

	result, err := sync.Run(symlinkFailFS{filesystem.NewOS()}, e.cfg, e.opts(types.ModeLink))
	require.NoError(t, err)

	assert.Len(t, result.Updated, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "copying instead")

	info, err := os.Lstat(e.target())
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	assert.Equal(t, "hello", readFileT(t, e.target()))

	// The record reflects what is on disk, not what was requested.
	rec := e.loadState(t).Files[e.target()]
	assert.Equal(t, types.ModeCopy, rec.Mode)
	assert.True(t, strings.HasPrefix(rec.Hash, "sha256:"))
}

func TestRun_InvalidScope(t *testing.T) {
	e := setupEnv(t)

	opts := e.opts(types.ModeLink)
	opts.Scope = types.Scope("globl")

	_, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.Error(t, err)
	assert.True(t, acerrors.IsErrorCode(err, acerrors.ErrInvalidInput))
	assert.Equal(t, acerrors.KindValidation, acerrors.KindOf(err))

	// A mistyped scope must never pass as an empty successful run.
	_, err = os.Lstat(e.target())
	assert.True(t, os.IsNotExist(err))
}

func TestRun_InvalidMode(t *testing.T) {
	e := setupEnv(t)

	_, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.SyncMode("symlink")))
	require.Error(t, err)
	assert.True(t, acerrors.IsErrorCode(err, acerrors.ErrInvalidInput))
	assert.Equal(t, acerrors.KindValidation, acerrors.KindOf(err))
}

func TestRun_DirectoryMarkerMismatch(t *testing.T) {
	e := setupEnv(t)
	// "rules/" declares a directory mapping, but the source is a file.
	writeFileT(t, filepath.Join(e.srcRoot, "rules"), "not a dir")
	e.cfg.Agents[0].Global.Files = []types.MappingEntry{{Source: "rules/", Target: "rules"}}

	result, err := sync.Run(filesystem.NewOS(), e.cfg, e.opts(types.ModeCopy))
	require.NoError(t, err)

	// The mismatch warns but still syncs what is actually there.
	assert.Len(t, result.Updated, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "marked as a directory")
	assert.Equal(t, "not a dir", readFileT(t, filepath.Join(e.tgtRoot, "claude", "rules")))
}

func TestRun_InvalidConflictPolicy(t *testing.T) {
	e := setupEnv(t)

	opts := e.opts(types.ModeLink)
	opts.OnConflict = types.ConflictAction("explode")

	_, err := sync.Run(filesystem.NewOS(), e.cfg, opts)
	require.Error(t, err)
	assert.True(t, acerrors.IsErrorCode(err, acerrors.ErrInvalidInput))
}
