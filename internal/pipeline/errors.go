package pipeline

import (
	"errors"
	"fmt"
)

// ErrMissingInput is wrapped by StageError when a producer's output is absent.
var ErrMissingInput = errors.New("required upstream output missing")

// StageError aborts a run. It is distinct from per-item failures, which are
// recorded in failure tables and never returned.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func missing(stage, producer string) error {
	return &StageError{Stage: stage, Err: fmt.Errorf("%w: %s", ErrMissingInput, producer)}
}
