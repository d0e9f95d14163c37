package strategy

// PlanningError reports that a strategy could not be assembled, which only
// happens when the knowledge base tables are incomplete.
type PlanningError struct {
	Reason string
	Err    error
}

func (e *PlanningError) Error() string {
	if e.Err == nil {
		return "strategy planning: " + e.Reason
	}
	return "strategy planning: " + e.Reason + ": " + e.Err.Error()
}

func (e *PlanningError) Unwrap() error { return e.Err }
