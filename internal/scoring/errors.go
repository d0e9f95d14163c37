package scoring

import "fmt"

// ScoringError reports a corrupt knowledge base. It is never returned for
// incomplete or malformed case data.
type ScoringError struct {
	Reason string
	Err    error
}

func (e *ScoringError) Error() string {
	if e.Err == nil {
		return "scoring: " + e.Reason
	}
	return fmt.Sprintf("scoring: %s: %v", e.Reason, e.Err)
}

func (e *ScoringError) Unwrap() error { return e.Err }
