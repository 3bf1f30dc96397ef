package config

import (
	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// DefaultConfigYAML is the configuration written by 'agentconfig init'.
// It covers the common coding-assistant tools; users trim it to taste.
const DefaultConfigYAML = `# agentconfig.yaml
#
# Declarative mapping of one canonical source tree onto the configuration
# locations of coding-assistant tools. Sources are relative to this
# directory; targets are relative to each agent's root.
#
# A trailing slash on a source syncs the whole directory.
# Roots may use ~, ${VAR}, ${VAR:-fallback} and, for project scope,
# <project-root>.

version: 1

defaults:
  # auto picks symlinks where the platform supports them, copies otherwise
  mode: auto

agents:
  claude:
    name: Claude Code
    global:
      root: ~/.claude
      files:
        - source: agent.md
          target: CLAUDE.md
        - source: skills/
          target: skills
    project:
      root: <project-root>
      files:
        - source: agent.md
          target: CLAUDE.md

  codex:
    name: Codex CLI
    global:
      root: ~/.codex
      files:
        - source: agent.md
          target: AGENTS.md

  cursor:
    name: Cursor
    project:
      root: <project-root>/.cursor
      files:
        - source: rules/
          target: rules

# Profiles append extra mappings to every agent in a run.
# Select one with --profile or defaults.profile.
profiles: {}
`

// WriteDefault writes the default configuration under sourceRoot. An
// existing configuration is only replaced when force is set.
func WriteDefault(filesys types.FS, sourceRoot string, force bool) error {
	path := paths.ConfigPath(sourceRoot)

	if !force {
		if _, err := filesys.Stat(path); err == nil {
			return errors.Newf(errors.ErrInvalidInput, "configuration already exists at %s (use --force to replace)", path)
		}
	}

	if err := filesys.MkdirAll(sourceRoot, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create source root %s", sourceRoot)
	}
	if err := filesys.WriteFile(path, []byte(DefaultConfigYAML), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	return nil
}
