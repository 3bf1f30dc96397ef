package state

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// CurrentVersion is the snapshot schema version written by this build.
const CurrentVersion = 1

// Record captures how one target looked immediately after a successful
// apply. Exactly one of Hash and LinkTarget is meaningful, determined by
// Mode: link records store the literal symlink text, copy records store a
// content hash. Records are never deleted automatically; entries for
// mappings later removed from the configuration persist by design.
type Record struct {
	Path       string         `json:"path"`
	Source     string         `json:"source"`
	Agent      string         `json:"agent"`
	Mode       types.SyncMode `json:"mode"`
	Size       int64          `json:"size"`
	MTime      time.Time      `json:"mtime"`
	Hash       string         `json:"hash,omitempty"`
	LinkTarget string         `json:"linkTarget,omitempty"`
}

// State is the persisted snapshot for one source root.
type State struct {
	Version     int               `json:"version"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Scope       types.Scope       `json:"mode"`
	ProjectRoot string            `json:"projectRoot,omitempty"`
	Files       map[string]Record `json:"files"`
}

// NewState returns an empty snapshot for the given scope.
func NewState(scope types.Scope, projectRoot string) *State {
	return &State{
		Version:     CurrentVersion,
		Scope:       scope,
		ProjectRoot: projectRoot,
		Files:       make(map[string]Record),
	}
}

// IsManaged reports whether the target path was recorded by a prior sync.
func (s *State) IsManaged(target string) bool {
	if s == nil || s.Files == nil {
		return false
	}
	_, ok := s.Files[target]
	return ok
}

// SortedPaths returns the tracked target paths in lexicographic order, for
// deterministic status output.
func (s *State) SortedPaths() []string {
	out := make([]string, 0, len(s.Files))
	for p := range s.Files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Merge folds prev into next: the result tracks every target either
// snapshot knows about, with next's records replacing prev's on key
// collisions. A sync run therefore never forgets unrelated prior targets.
func Merge(prev, next *State) *State {
	merged := &State{
		Version:     next.Version,
		UpdatedAt:   next.UpdatedAt,
		Scope:       next.Scope,
		ProjectRoot: next.ProjectRoot,
		Files:       make(map[string]Record, len(prev.Files)+len(next.Files)),
	}
	for path, rec := range prev.Files {
		merged.Files[path] = rec
	}
	for path, rec := range next.Files {
		merged.Files[path] = rec
	}
	return merged
}

// Store owns the snapshot file under one source root.
type Store struct {
	fs   types.FS
	path string
}

// NewStore creates a store for the given source root.
func NewStore(filesys types.FS, sourceRoot string) *Store {
	return &Store{fs: filesys, path: paths.StatePath(sourceRoot)}
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields an empty snapshot; a
// malformed one is a validation failure.
func (s *Store) Load() (*State, error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(types.ScopeGlobal, ""), nil
		}
		return nil, errors.Wrapf(err, errors.ErrStateLoad, "cannot read %s", s.path)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStateParse, "malformed state file %s", s.path)
	}
	if st.Files == nil {
		st.Files = make(map[string]Record)
	}
	return &st, nil
}

// Save writes the snapshot atomically enough for a single-process tool:
// concurrent invocations are out of scope and last writer wins.
func (s *Store) Save(st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot serialize state")
	}
	data = append(data, '\n')

	if err := s.fs.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStateWrite, "cannot write %s", s.path)
	}
	return nil
}
