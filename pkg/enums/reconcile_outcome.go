package enums

// ReconcileOutcome labels the result of one reconciliation pass.
type ReconcileOutcome string

const (
	ReconcileOutcomeSuccess  ReconcileOutcome = "success"
	ReconcileOutcomeFailure  ReconcileOutcome = "failure"
	ReconcileOutcomeConflict ReconcileOutcome = "conflict"
	ReconcileOutcomeSkipped  ReconcileOutcome = "skipped"
)

// String implements fmt.Stringer.
func (o ReconcileOutcome) String() string {
	return string(o)
}

// ConflictResolution is the user's answer to a consistency warning.
type ConflictResolution string

const (
	ConflictResolutionProceed ConflictResolution = "proceed"
	ConflictResolutionDiscard ConflictResolution = "discard"
)

// IsValid reports whether the value is a known ConflictResolution.
func (r ConflictResolution) IsValid() bool {
	return r == ConflictResolutionProceed || r == ConflictResolutionDiscard
}
