package sync

import (
	"strings"

	"github.com/damonswayn/agentconfig/pkg/config"
	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// ResolveMappings expands the configuration into the ordered list of
// concrete sync operations for one run. Agents are visited in declaration
// order; an agent lacking the requested scope is skipped, not an error.
// The mode on every resolved mapping is the already-concrete run mode:
// auto must have been resolved before this step.
func ResolveMappings(cfg *config.Config, opts Options, mode types.SyncMode) ([]types.ResolvedMapping, error) {
	if !opts.Scope.IsValid() {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown scope %q (expected global or project)", opts.Scope)
	}
	if opts.Scope == types.ScopeProject && opts.ProjectRoot == "" {
		return nil, errors.New(errors.ErrProjectRootMissing, "project scope requires a project root")
	}

	var filter map[string]bool
	if len(opts.Agents) > 0 {
		filter = make(map[string]bool, len(opts.Agents))
		for _, id := range opts.Agents {
			if _, ok := cfg.Agent(id); !ok {
				return nil, errors.Newf(errors.ErrAgentNotFound, "agent %q is not defined in the configuration", id)
			}
			filter[id] = true
		}
	}

	var profileFiles []types.MappingEntry
	if opts.Profile != "" {
		profile, ok := cfg.Profile(opts.Profile)
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "profile %q is not defined in the configuration", opts.Profile)
		}
		profileFiles = profile.Files
	}

	var mappings []types.ResolvedMapping
	for _, agent := range cfg.Agents {
		if filter != nil && !filter[agent.ID] {
			continue
		}

		sc := agent.ScopeConfigFor(opts.Scope)
		if sc == nil {
			continue
		}

		root := sc.Root
		if opts.Scope == types.ScopeProject {
			root = strings.ReplaceAll(root, paths.ProjectRootToken, opts.ProjectRoot)
		}
		rootAbs := paths.ResolveAbsolute(root, opts.Env, opts.WorkDir)

		entries := make([]types.MappingEntry, 0, len(sc.Files)+len(profileFiles))
		entries = append(entries, sc.Files...)
		entries = append(entries, profileFiles...)

		for _, entry := range entries {
			mappings = append(mappings, types.ResolvedMapping{
				Agent:     agent.ID,
				Source:    paths.ResolveFromRoot(opts.SourceRoot, entry.Source),
				Target:    paths.ResolveFromRoot(rootAbs, entry.Target),
				Mode:      mode,
				Directory: entry.IsDirectory(),
			})
		}
	}

	return mappings, nil
}
