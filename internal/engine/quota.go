package engine

import (
	"errors"
	"fmt"
)

// Quota counts reduction steps of one trace and enforces a limit.
//
// Multi-step evaluation is not bounded (a diverging program diverges);
// single-step tracing is, so that a trace of a looping program ends with
// an error instead of an unbounded transcript.
type Quota struct {
	maxSteps int
	current  int
}

// NewQuota creates a quota allowing maxSteps steps.
func NewQuota(maxSteps int) *Quota {
	return &Quota{maxSteps: maxSteps}
}

// Check counts one step and fails once the limit is passed.
func (q *Quota) Check(runID string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			RunID: runID,
			Steps: q.current,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// Current returns the number of steps counted so far.
func (q *Quota) Current() int {
	return q.current
}

// MaxSteps returns the limit.
func (q *Quota) MaxSteps() int {
	return q.maxSteps
}

// ErrCodeStepsExceeded is the code reported for a StepsExceededError.
const ErrCodeStepsExceeded ErrorCode = "STEPS_EXCEEDED"

// StepsExceededError is returned when a trace exceeds its step quota.
type StepsExceededError struct {
	RunID string
	Steps int
	Limit int
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded max steps quota: %d steps > %d limit",
		e.RunID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
