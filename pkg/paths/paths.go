package paths

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvSourceRoot overrides the default source root location
	EnvSourceRoot = "AGENTCONFIG_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed filenames and markers
// IMPORTANT: These constants define agentconfig's on-disk contract and are
// NOT user-configurable. They must remain consistent across installations.
const (
	// AppDirName is the directory name for agentconfig-specific files
	AppDirName = "agentconfig"

	// ConfigFileName is the configuration file kept under the source root
	ConfigFileName = "agentconfig.yaml"

	// StateFileName is the sync-state snapshot kept under the source root
	StateFileName = ".agentconfig-state.json"

	// BackupDirName is the backup tree kept under the source root
	BackupDirName = "backup"

	// ProjectRootToken is substituted in scope roots during project syncs
	ProjectRootToken = "<project-root>"
)

// placeholderPattern matches ${NAME} and ${NAME:-fallback} tokens.
var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// ExpandPlaceholders replaces a leading ~ with the home directory and
// ${NAME} / ${NAME:-fallback} tokens with values from the given environment
// map. An unset variable with no fallback resolves to the empty string.
// Paths lacking these tokens are returned unchanged.
func ExpandPlaceholders(path string, env map[string]string) string {
	expanded := expandHome(path, env)

	if !strings.Contains(expanded, "${") {
		return expanded
	}

	return placeholderPattern.ReplaceAllStringFunc(expanded, func(token string) string {
		inner := token[2 : len(token)-1]

		name := inner
		fallback := ""
		hasFallback := false
		if i := strings.Index(inner, ":-"); i >= 0 {
			name = inner[:i]
			fallback = inner[i+2:]
			hasFallback = true
		}

		if value := env[name]; value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		return ""
	})
}

// ResolveAbsolute expands placeholders in path and resolves relative
// results against workDir. The working directory is threaded explicitly so
// the engine never reads ambient process state.
func ResolveAbsolute(path string, env map[string]string, workDir string) string {
	expanded := ExpandPlaceholders(path, env)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Clean(filepath.Join(workDir, expanded))
}

// ResolveFromRoot joins a mapping entry path to its root. An absolute entry
// is returned as-is (normalized), letting individual mappings escape their
// nominal root by design.
func ResolveFromRoot(root, relative string) string {
	if filepath.IsAbs(relative) {
		return filepath.Clean(relative)
	}
	return filepath.Clean(filepath.Join(root, relative))
}

// ConfigPath returns the configuration file location for a source root.
func ConfigPath(sourceRoot string) string {
	return filepath.Join(sourceRoot, ConfigFileName)
}

// StatePath returns the sync-state snapshot location for a source root.
func StatePath(sourceRoot string) string {
	return filepath.Join(sourceRoot, StateFileName)
}

// BackupDir returns the timestamped backup directory for one sync run.
// The timestamp is RFC3339 with colons and dots replaced by dashes so the
// directory name is portable.
func BackupDir(sourceRoot string, now time.Time) string {
	stamp := now.UTC().Format(time.RFC3339)
	stamp = strings.ReplaceAll(stamp, ":", "-")
	stamp = strings.ReplaceAll(stamp, ".", "-")
	return filepath.Join(sourceRoot, BackupDirName, stamp)
}

// BackupRelativePath converts an absolute target path into the relative
// path it occupies under a backup directory.
func BackupRelativePath(target string) string {
	vol := filepath.VolumeName(target)
	rel := target[len(vol):]
	return strings.TrimLeft(rel, string(filepath.Separator))
}

// DefaultSourceRoot returns the source root to use when none is configured:
// the AGENTCONFIG_ROOT variable if set, otherwise the XDG config directory.
func DefaultSourceRoot(env map[string]string) string {
	if root := env[EnvSourceRoot]; root != "" {
		return expandHome(root, env)
	}
	return filepath.Join(xdg.ConfigHome, AppDirName)
}

// expandHome expands a leading ~ using the environment map, falling back
// to the XDG-detected home directory.
func expandHome(path string, env map[string]string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	home := env[EnvHome]
	if home == "" {
		home = xdg.Home
	}
	if home == "" {
		return path
	}

	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}

	// ~something (another user's home), leave untouched
	return path
}
