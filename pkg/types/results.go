package types

// SyncResult is the outcome of one sync run.
type SyncResult struct {
	// Planned holds every resolved mapping the run considered, in order.
	Planned []ResolvedMapping

	// Updated holds the mappings that were applied (or, in link mode,
	// confirmed already correct and refreshed in state).
	Updated []ResolvedMapping

	// Skipped holds mappings left untouched: missing sources in
	// non-strict mode and conflict decisions of skip.
	Skipped []ResolvedMapping

	// Warnings collects non-fatal conditions in occurrence order.
	Warnings []string
}

// TargetState classifies one previously-synced target during a status run.
type TargetState string

const (
	StatusOK      TargetState = "ok"
	StatusDrifted TargetState = "drifted"
	StatusMissing TargetState = "missing"
)

// TargetStatus is the drift report for a single tracked target.
type TargetStatus struct {
	Path   string
	Agent  string
	Status TargetState
	Reason string
}
