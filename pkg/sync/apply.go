package sync

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/filesystem"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// apply materializes one mapping and returns the mode that actually took
// effect: link normally, copy when symlink creation failed and the engine
// fell back for this mapping only.
func (s *syncer) apply(m types.ResolvedMapping, destructive bool) (types.SyncMode, error) {
	if err := s.fs.MkdirAll(filepath.Dir(m.Target), 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create parent directory for %s", m.Target)
	}

	switch m.Mode {
	case types.ModeLink:
		return s.applyLink(m, destructive)
	case types.ModeCopy:
		return types.ModeCopy, s.applyCopy(m, destructive)
	default:
		return "", errors.Newf(errors.ErrInternal, "mode %q reached the apply engine unresolved", m.Mode)
	}
}

func (s *syncer) applyLink(m types.ResolvedMapping, destructive bool) (types.SyncMode, error) {
	kind, linkTarget, err := s.probe.KindOf(m.Target)
	if err != nil {
		return "", err
	}

	// Fast path: an existing symlink already pointing at the source is
	// left alone but still counts as updated so its record refreshes.
	if kind == filesystem.KindSymlink && linkTarget == m.Source {
		s.logger.Debug().Str("target", m.Target).Msg("symlink already points at source")
		return types.ModeLink, nil
	}

	if err := s.removeExisting(m.Target, kind, destructive); err != nil {
		return "", err
	}

	if err := s.fs.Symlink(m.Source, m.Target); err != nil {
		// Unsupported volume or similar: degrade to a copy for this one
		// mapping and keep the run going.
		s.warnf("cannot symlink %s: %v; copying instead", m.Target, err)
		copyMapping := m
		copyMapping.Mode = types.ModeCopy
		if cerr := s.applyCopy(copyMapping, destructive); cerr != nil {
			return "", cerr
		}
		return types.ModeCopy, nil
	}

	return types.ModeLink, nil
}

func (s *syncer) applyCopy(m types.ResolvedMapping, destructive bool) error {
	kind, _, err := s.probe.KindOf(m.Target)
	if err != nil {
		return err
	}
	if err := s.removeExisting(m.Target, kind, destructive); err != nil {
		return err
	}
	return s.copyNode(m.Source, m.Target)
}

// removeExisting clears the way for a new node at target. Non-empty
// directories are only removed when destructive replacement was permitted
// by the conflict decision; refusing otherwise is a hard invariant, not a
// recoverable condition.
func (s *syncer) removeExisting(target string, kind filesystem.Kind, destructive bool) error {
	switch kind {
	case filesystem.KindAbsent:
		return nil

	case filesystem.KindFile, filesystem.KindSymlink:
		if err := s.fs.Remove(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove existing %s", target)
		}
		return nil

	case filesystem.KindDirectory:
		if !destructive {
			entries, err := s.fs.ReadDir(target)
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", target)
			}
			if len(entries) > 0 {
				return errors.Newf(errors.ErrDirNotEmpty, "refusing to replace non-empty directory %s", target)
			}
		}
		if err := s.fs.RemoveAll(target); err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot remove existing directory %s", target)
		}
		return nil

	default:
		return errors.Newf(errors.ErrInternal, "unknown node kind %q at %s", kind, target)
	}
}

// copyNode recursively copies src to dst. Directory entries are visited in
// sorted order; symlinks are replicated as symlinks, never followed, so a
// link cycle in the source cannot recurse.
func (s *syncer) copyNode(src, dst string) error {
	kind, linkTarget, err := s.probe.KindOf(src)
	if err != nil {
		return err
	}

	switch kind {
	case filesystem.KindFile:
		return s.copyFile(src, dst)

	case filesystem.KindDirectory:
		if err := s.fs.MkdirAll(dst, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", dst)
		}
		entries, err := s.fs.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read directory %s", src)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		for _, entry := range entries {
			if err := s.copyNode(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil

	case filesystem.KindSymlink:
		if err := s.fs.Symlink(linkTarget, dst); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot replicate symlink %s", dst)
		}
		return nil

	default:
		return errors.Newf(errors.ErrNotFound, "copy source %s does not exist", src)
	}
}

func (s *syncer) copyFile(src, dst string) error {
	data, err := s.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}

	perm := fs.FileMode(0644)
	if info, err := s.fs.Stat(src); err == nil {
		perm = info.Mode().Perm()
	}

	if err := s.fs.WriteFile(dst, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", dst)
	}
	return nil
}
