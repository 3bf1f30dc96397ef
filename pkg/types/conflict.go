package types

// ConflictAction is the operator's answer for an unmanaged pre-existing
// target.
type ConflictAction string

const (
	ConflictOverwrite ConflictAction = "overwrite"
	ConflictBackup    ConflictAction = "backup"
	ConflictSkip      ConflictAction = "skip"
	ConflictCancel    ConflictAction = "cancel"
)

// IsValid reports whether a is a known conflict action.
func (a ConflictAction) IsValid() bool {
	switch a {
	case ConflictOverwrite, ConflictBackup, ConflictSkip, ConflictCancel:
		return true
	}
	return false
}

// ConflictDecision is one resolution for a single conflicting target.
// ApplyToAll fixes the action as the policy for every remaining conflict
// in the run.
type ConflictDecision struct {
	Action     ConflictAction
	ApplyToAll bool
}

// ConflictResolver supplies conflict decisions to the conflict engine.
// Implementations block until a decision is available; the interactive
// implementation prompts the operator, test implementations are scripted.
type ConflictResolver interface {
	Resolve(mapping ResolvedMapping) (ConflictDecision, error)
}

// ConflictResolverFunc adapts a plain function to a ConflictResolver.
type ConflictResolverFunc func(mapping ResolvedMapping) (ConflictDecision, error)

// Resolve implements ConflictResolver.
func (f ConflictResolverFunc) Resolve(mapping ResolvedMapping) (ConflictDecision, error) {
	return f(mapping)
}
