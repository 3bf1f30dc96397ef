package sync

import (
	"github.com/rs/zerolog"

	"github.com/damonswayn/agentconfig/pkg/config"
	"github.com/damonswayn/agentconfig/pkg/errors"
	"github.com/damonswayn/agentconfig/pkg/filesystem"
	"github.com/damonswayn/agentconfig/pkg/logging"
	"github.com/damonswayn/agentconfig/pkg/paths"
	"github.com/damonswayn/agentconfig/pkg/state"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// syncer carries the per-run engine state: the fixed conflict policy once
// one is established, the shared backup directory, and the accumulating
// result.
type syncer struct {
	fs     types.FS
	probe  *filesystem.Probe
	opts   Options
	logger zerolog.Logger
	result *types.SyncResult

	policy      types.ConflictAction
	policyFixed bool
	backupPath  string
}

// SyncConfigs is the CLI entry point: it loads the configuration under the
// source root and runs a sync against the OS filesystem.
func SyncConfigs(opts Options) (*types.SyncResult, error) {
	filesys := filesystem.NewOS()

	root := opts.SourceRoot
	if root == "" {
		root = paths.DefaultSourceRoot(environMap())
	}

	cfg, err := config.Load(filesys, root)
	if err != nil {
		return nil, err
	}

	opts.SourceRoot = root
	return Run(filesys, cfg, opts)
}

// Run executes one sync of cfg against the given filesystem.
func Run(filesys types.FS, cfg *config.Config, opts Options) (*types.SyncResult, error) {
	opts = opts.withDefaults(cfg)

	s := &syncer{
		fs:     filesys,
		probe:  filesystem.NewProbe(filesys),
		opts:   opts,
		logger: logging.GetLogger("sync"),
		result: &types.SyncResult{},
	}

	if !opts.Mode.IsValid() {
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown sync mode %q (expected auto, link or copy)", opts.Mode)
	}

	if opts.OnConflict != "" {
		if !opts.OnConflict.IsValid() {
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown conflict policy %q", opts.OnConflict)
		}
		s.policy = opts.OnConflict
		s.policyFixed = true
	}

	// Auto resolves to a concrete mode exactly once, before resolution,
	// so every mapping in the run shares it.
	mode := opts.Mode
	if mode == types.ModeAuto {
		if s.probe.CanCreateSymlinks() {
			mode = types.ModeLink
		} else {
			mode = types.ModeCopy
		}
		s.logger.Debug().Str("mode", string(mode)).Msg("resolved auto mode")
	}

	mappings, err := ResolveMappings(cfg, opts, mode)
	if err != nil {
		return nil, err
	}

	store := state.NewStore(filesys, opts.SourceRoot)
	prev, err := store.Load()
	if err != nil {
		return nil, err
	}

	type appliedMapping struct {
		mapping types.ResolvedMapping
		mode    types.SyncMode
	}
	var applied []appliedMapping

	for _, m := range mappings {
		s.result.Planned = append(s.result.Planned, m)

		if !s.probe.Exists(m.Source) {
			if opts.Strict {
				return nil, errors.Newf(errors.ErrSourceMissing, "missing source %s for agent %s", m.Source, m.Agent)
			}
			s.result.Skipped = append(s.result.Skipped, m)
			s.warnf("missing source %s; skipping %s", m.Source, m.Target)
			continue
		}

		if m.Directory {
			if kind, _, kerr := s.probe.KindOf(m.Source); kerr == nil && kind != filesystem.KindDirectory {
				s.warnf("source %s is marked as a directory but is a %s", m.Source, kind)
			}
		}

		if opts.DryRun {
			continue
		}

		proceed, destructive, err := s.decide(m, prev)
		if err != nil {
			return nil, err
		}
		if !proceed {
			continue
		}

		effMode, err := s.apply(m, destructive)
		if err != nil {
			return nil, err
		}

		s.logger.Debug().
			Str("agent", m.Agent).
			Str("target", m.Target).
			Str("mode", string(effMode)).
			Msg("applied mapping")

		s.result.Updated = append(s.result.Updated, m)
		applied = append(applied, appliedMapping{mapping: m, mode: effMode})
	}

	if !opts.DryRun && len(applied) > 0 {
		next := state.NewState(opts.Scope, opts.ProjectRoot)
		next.UpdatedAt = opts.Now()

		for _, a := range applied {
			rec, err := s.recordFor(a.mapping, a.mode)
			if err != nil {
				return nil, err
			}
			next.Files[rec.Path] = rec
		}

		if err := store.Save(state.Merge(prev, next)); err != nil {
			return nil, err
		}
	}

	return s.result, nil
}

// recordFor re-probes a freshly-applied target and builds its snapshot
// record from what is actually on disk, not from what was requested: a
// mapping that fell back from link to copy records as a copy.
func (s *syncer) recordFor(m types.ResolvedMapping, effMode types.SyncMode) (state.Record, error) {
	rec := state.Record{
		Path:   m.Target,
		Source: m.Source,
		Agent:  m.Agent,
		Mode:   effMode,
	}

	kind, linkTarget, err := s.probe.KindOf(m.Target)
	if err != nil {
		return rec, err
	}

	if kind == filesystem.KindSymlink {
		rec.Mode = types.ModeLink
		rec.LinkTarget = linkTarget
		if info, err := s.fs.Lstat(m.Target); err == nil {
			rec.Size = info.Size()
			rec.MTime = info.ModTime()
		}
		return rec, nil
	}

	rec.Mode = types.ModeCopy
	hash, err := s.probe.ContentHash(m.Target)
	if err != nil {
		return rec, err
	}
	rec.Hash = hash
	if info, err := s.fs.Stat(m.Target); err == nil {
		rec.Size = info.Size()
		rec.MTime = info.ModTime()
	}
	return rec, nil
}

// backupDir lazily resolves the shared backup directory for this run.
func (s *syncer) backupDir() string {
	if s.backupPath == "" {
		s.backupPath = paths.BackupDir(s.opts.SourceRoot, s.opts.Now())
	}
	return s.backupPath
}
