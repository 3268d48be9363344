package verifier

import (
	"fmt"

	"hrm-e2e/internal/domain/entity"
)

// ProbeFailure is a soft failure: the probe itself returned an error.
type ProbeFailure struct {
	Attempt int
	Err     error
}

func (e *ProbeFailure) Error() string {
	return fmt.Sprintf("attempt %d: probe failed: %v", e.Attempt, e.Err)
}

func (e *ProbeFailure) Unwrap() error { return e.Err }

// PredicateRejected is a soft failure: the probe produced an artifact that
// the success predicate did not accept.
type PredicateRejected struct {
	Attempt int
}

func (e *PredicateRejected) Error() string {
	return fmt.Sprintf("attempt %d: artifact rejected", e.Attempt)
}

// VerificationExhausted is returned once every allowed attempt has failed.
type VerificationExhausted struct {
	Label    string
	Attempts int
	Last     error
	History  []entity.Attempt
}

func (e *VerificationExhausted) Error() string {
	return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Label, e.Attempts, e.Last)
}

func (e *VerificationExhausted) Unwrap() error { return e.Last }

// DelayInterrupted is returned when the context ends while waiting between
// attempts. It unwraps to the context cause.
type DelayInterrupted struct {
	Label   string
	Attempt int
	Cause   error
}

func (e *DelayInterrupted) Error() string {
	return fmt.Sprintf("%s: interrupted while waiting after attempt %d: %v", e.Label, e.Attempt, e.Cause)
}

func (e *DelayInterrupted) Unwrap() error { return e.Cause }
