package status

import (
	"github.com/damonswayn/agentconfig/pkg/filesystem"
	"github.com/damonswayn/agentconfig/pkg/state"
	"github.com/damonswayn/agentconfig/pkg/types"
)

// GetStatus reports drift for every target recorded in the snapshot under
// sourceRoot, ordered by target path.
func GetStatus(filesys types.FS, sourceRoot string) ([]types.TargetStatus, error) {
	store := state.NewStore(filesys, sourceRoot)
	st, err := store.Load()
	if err != nil {
		return nil, err
	}

	probe := filesystem.NewProbe(filesys)

	statuses := make([]types.TargetStatus, 0, len(st.Files))
	for _, path := range st.SortedPaths() {
		statuses = append(statuses, checkRecord(probe, st.Files[path]))
	}
	return statuses, nil
}

// checkRecord classifies a single tracked target. A record never upgrades
// to ok without passing both the existence check and the identity check
// for its effective mode.
func checkRecord(probe *filesystem.Probe, rec state.Record) types.TargetStatus {
	ts := types.TargetStatus{Path: rec.Path, Agent: rec.Agent}

	kind, linkTarget, err := probe.KindOf(rec.Path)
	if err != nil {
		ts.Status = types.StatusDrifted
		ts.Reason = "cannot inspect target: " + err.Error()
		return ts
	}

	if kind == filesystem.KindAbsent {
		ts.Status = types.StatusMissing
		return ts
	}

	// Records written as "auto" by older runs carry an ambiguous mode;
	// infer from what is on disk now. Best-effort reconciliation, not a
	// guarantee.
	mode := rec.Mode
	if mode != types.ModeLink && mode != types.ModeCopy {
		if kind == filesystem.KindSymlink {
			mode = types.ModeLink
		} else {
			mode = types.ModeCopy
		}
	}

	if mode == types.ModeLink {
		switch {
		case kind != filesystem.KindSymlink:
			ts.Status = types.StatusDrifted
			ts.Reason = "not a symlink"
		case rec.LinkTarget == "":
			ts.Status = types.StatusDrifted
			ts.Reason = "no recorded link target"
		case linkTarget != rec.LinkTarget:
			ts.Status = types.StatusDrifted
			ts.Reason = "link target changed"
		default:
			ts.Status = types.StatusOK
		}
		return ts
	}

	if rec.Hash == "" {
		ts.Status = types.StatusDrifted
		ts.Reason = "no recorded content hash"
		return ts
	}

	hash, err := probe.ContentHash(rec.Path)
	if err != nil {
		ts.Status = types.StatusDrifted
		ts.Reason = "cannot hash target: " + err.Error()
		return ts
	}
	if hash != rec.Hash {
		ts.Status = types.StatusDrifted
		ts.Reason = "content changed"
		return ts
	}

	ts.Status = types.StatusOK
	return ts
}
