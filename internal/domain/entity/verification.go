package entity

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidPolicy = errors.New("invalid verification policy")

type VerificationPolicy struct {
	MaxRetries     int
	AttemptTimeout time.Duration
	Delay          time.Duration
}

func (p VerificationPolicy) Validate() error {
	if p.MaxRetries < 1 {
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidPolicy, p.MaxRetries)
	}
	if p.Delay < 0 {
		return fmt.Errorf("%w: negative delay %s", ErrInvalidPolicy, p.Delay)
	}
	if p.AttemptTimeout < 0 {
		return fmt.Errorf("%w: negative attempt timeout %s", ErrInvalidPolicy, p.AttemptTimeout)
	}
	return nil
}

type AttemptOutcome string

const (
	OutcomeSucceeded  AttemptOutcome = "succeeded"
	OutcomeProbeError AttemptOutcome = "probe_error"
	OutcomeRejected   AttemptOutcome = "rejected"
)

// Attempt records one probe invocation inside a single verification run.
type Attempt struct {
	Index    int
	Outcome  AttemptOutcome
	Err      error
	Artifact any
	Started  time.Time
	Duration time.Duration
}

type VerifierState string

const (
	StatePending     VerifierState = "pending"
	StateAttempting  VerifierState = "attempting"
	StateSoftFailure VerifierState = "soft_failure"
	StateSucceeded   VerifierState = "succeeded"
	StateExhausted   VerifierState = "exhausted"
	StateCancelled   VerifierState = "cancelled"
)

func (s VerifierState) Terminal() bool {
	return s == StateSucceeded || s == StateExhausted || s == StateCancelled
}
