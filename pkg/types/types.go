package types

import (
	"os"
	"strings"
)

// SyncMode selects how a mapping is materialized on disk.
type SyncMode string

const (
	// ModeAuto resolves to ModeLink or ModeCopy once per run, based on
	// whether the platform can create symlinks.
	ModeAuto SyncMode = "auto"

	// ModeLink creates symlinks pointing back at the source tree.
	ModeLink SyncMode = "link"

	// ModeCopy copies file or directory content into place.
	ModeCopy SyncMode = "copy"
)

// IsValid reports whether m is a known sync mode.
func (m SyncMode) IsValid() bool {
	return m == ModeAuto || m == ModeLink || m == ModeCopy
}

// Scope selects which target root set a sync run operates on.
type Scope string

const (
	// ScopeGlobal syncs into per-user tool locations.
	ScopeGlobal Scope = "global"

	// ScopeProject syncs into a target repository, substituting the
	// project root placeholder in each agent's configured root.
	ScopeProject Scope = "project"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	return s == ScopeGlobal || s == ScopeProject
}

// MappingEntry is one declared source→target pairing, both sides relative
// to their respective roots unless absolute.
type MappingEntry struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// IsDirectory reports whether the entry maps a whole subtree. A trailing
// path separator on the source marks a directory mapping.
func (m MappingEntry) IsDirectory() bool {
	return strings.HasSuffix(m.Source, "/") || strings.HasSuffix(m.Source, string(os.PathSeparator))
}

// ScopeConfig is one agent's configuration for a single scope.
type ScopeConfig struct {
	// Root is the target root, possibly containing ~, ${VAR},
	// ${VAR:-default} and <project-root> placeholders.
	Root string `yaml:"root" json:"root"`

	// Files are the mappings synced under Root, in declaration order.
	Files []MappingEntry `yaml:"files" json:"files"`
}

// AgentConfig describes one coding-assistant tool. An agent may define
// either scope, both, or neither.
type AgentConfig struct {
	Name    string       `yaml:"name,omitempty" json:"name,omitempty"`
	Global  *ScopeConfig `yaml:"global,omitempty" json:"global,omitempty"`
	Project *ScopeConfig `yaml:"project,omitempty" json:"project,omitempty"`
}

// ScopeConfigFor returns the agent's configuration for the given scope,
// or nil if the agent does not define it.
func (a *AgentConfig) ScopeConfigFor(scope Scope) *ScopeConfig {
	switch scope {
	case ScopeGlobal:
		return a.Global
	case ScopeProject:
		return a.Project
	default:
		return nil
	}
}

// ProfileConfig is a named extra set of mappings appended to every agent's
// mapping set when the profile is selected.
type ProfileConfig struct {
	Files []MappingEntry `yaml:"files,omitempty" json:"files,omitempty"`
}

// ResolvedMapping is one concrete planned sync operation. It is produced
// fresh per run and never persisted.
type ResolvedMapping struct {
	Agent  string
	Source string
	Target string
	Mode   SyncMode

	// Directory is set when the entry carried a trailing-separator
	// directory marker on its source. The engine syncs whatever kind the
	// source actually is, but warns when it disagrees with the marker.
	Directory bool
}
