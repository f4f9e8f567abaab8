package evaluation

import (
	"errors"
	"fmt"
)

var (
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrMatrixMismatch     = errors.New("matrix does not belong to this evaluation")
	ErrNoScoreInputs      = errors.New("at least one criterion score is required")
)

// ValidationError reports the first malformed score input; nothing is
// computed or persisted once one is found.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
