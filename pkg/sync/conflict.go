package sync

import (
	"fmt"
	"path/filepath"

	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/state"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// classification buckets a planned target before applying.
type classification int

const (
	targetAbsent classification = iota
	targetManaged
	targetUnmanaged
)

// classify inspects the target and the prior snapshot. Managed targets are
// those the tool itself created in an earlier run; replacing them needs no
// permission, including non-empty directories.
func (s *syncer) classify(m types.ResolvedMapping, prev *state.State) (classification, error) {
	if !s.probe.Exists(m.Target) {
		return targetAbsent, nil
	}
	if prev.IsManaged(m.Target) {
		return targetManaged, nil
	}
	return targetUnmanaged, nil
}

// decide runs the per-run conflict state machine for one mapping. It
// returns whether to proceed and whether destructive replacement (of
// non-empty directories in particular) is permitted. Skips are recorded on
// the result before returning.
func (s *syncer) decide(m types.ResolvedMapping, prev *state.State) (proceed, destructive bool, err error) {
	class, err := s.classify(m, prev)
	if err != nil {
		return false, false, err
	}

	switch class {
	case targetAbsent:
		return true, false, nil
	case targetManaged:
		return true, true, nil
	}

	// Unmanaged pre-existing target: a conflict.
	action := s.policy
	if !s.policyFixed {
		if s.opts.Resolver == nil {
			// No way to ask: skip, and fix skip for the rest of the run.
			s.policy = types.ConflictSkip
			s.policyFixed = true
			action = types.ConflictSkip
			s.warnf("no conflict policy for pre-existing %s; skipping this and all remaining conflicts", m.Target)
		} else {
			decision, rerr := s.opts.Resolver.Resolve(m)
			if rerr != nil {
				return false, false, errors.Wrapf(rerr, errors.ErrConflictPrompt, "conflict prompt failed for %s", m.Target)
			}
			if !decision.Action.IsValid() {
				return false, false, errors.Newf(errors.ErrConflictPrompt, "resolver returned unknown action %q", decision.Action)
			}
			action = decision.Action
			if decision.ApplyToAll {
				s.policy = action
				s.policyFixed = true
			}
		}
	}

	switch action {
	case types.ConflictOverwrite:
		return true, true, nil

	case types.ConflictBackup:
		if err := s.backupTarget(m.Target); err != nil {
			return false, false, err
		}
		return true, true, nil

	case types.ConflictSkip:
		s.result.Skipped = append(s.result.Skipped, m)
		s.warnf("skipped %s: target exists and is not managed", m.Target)
		return false, false, nil

	case types.ConflictCancel:
		return false, false, errors.Newf(errors.ErrConflictCancelled, "sync cancelled at %s", m.Target)

	default:
		return false, false, errors.Newf(errors.ErrConflictPrompt, "unknown conflict action %q", action)
	}
}

// backupTarget copies the pre-existing target into this run's timestamped
// backup directory before it is overwritten. All conflicts in one run share
// a single backup directory.
func (s *syncer) backupTarget(target string) error {
	dest := filepath.Join(s.backupDir(), paths.BackupRelativePath(target))
	if err := s.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrBackupFailed, "cannot create backup directory for %s", target)
	}
	if err := s.copyNode(target, dest); err != nil {
		return errors.Wrapf(err, errors.ErrBackupFailed, "cannot back up %s", target)
	}
	s.logger.Debug().Str("target", target).Str("backup", dest).Msg("backed up conflicting target")
	return nil
}

func (s *syncer) warnf(format string, args ...interface{}) {
	s.result.Warnings = append(s.result.Warnings, fmt.Sprintf(format, args...))
}
