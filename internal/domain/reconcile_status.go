package domain

type ReconcileStatus string

const (
	ReconcileStatusIdle       ReconcileStatus = "IDLE"
	ReconcileStatusProcessing ReconcileStatus = "PROCESSING"
	ReconcileStatusSuccess    ReconcileStatus = "SUCCESS"
	ReconcileStatusError      ReconcileStatus = "ERROR"
)

func (s ReconcileStatus) IsTerminal() bool {
	return s == ReconcileStatusSuccess || s == ReconcileStatusError
}

// String representation (for logging)
func (s ReconcileStatus) String() string {
	return string(s)
}

// CanTransitionTo enforces the reconciliation state machine:
// Idle -> Processing -> {Success, Error}. Terminal states have no exits.
func CanTransitionTo(from, to ReconcileStatus) bool {
	switch from {
	case ReconcileStatusIdle:
		return to == ReconcileStatusProcessing
	case ReconcileStatusProcessing:
		return to == ReconcileStatusSuccess || to == ReconcileStatusError
	default:
		return false
	}
}
