package workflows

// StateMachine enforces lifecycle status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewCreditLifecycle returns the carbon-credit status machine. PENDING and
// RETIRED are declared for forward compatibility; no ledger operation
// currently produces them.
func NewCreditLifecycle() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"PENDING":  {"VERIFIED"},
			"VERIFIED": {"SOLD", "RETIRED"},
			"SOLD":     {},
			"RETIRED":  {},
		},
	}
}

// NewMeasurementLifecycle returns the measurement status machine. DISPUTED is
// declared but unreachable from the current operation set.
func NewMeasurementLifecycle() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			"PENDING":  {"VERIFIED", "DISPUTED"},
			"VERIFIED": {},
			"DISPUTED": {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
