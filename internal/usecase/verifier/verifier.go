// Package verifier runs flaky UI operations under a bounded retry policy.
//
// A probe is invoked up to MaxRetries times, strictly one after another. The
// first artifact accepted by the predicate is returned; probe errors and
// rejected artifacts are soft failures that are logged and retried after the
// policy delay. When every attempt has failed the caller gets a
// *VerificationExhausted. Context cancellation is never retried: it surfaces
// as *DelayInterrupted when it lands between attempts, or as the wrapped
// context cause when it lands during a probe.
package verifier

import (
	"context"
	"fmt"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"

	"github.com/cenkalti/backoff/v5"
)

type Probe[T any] func(ctx context.Context) (T, error)

type Predicate[T any] func(artifact T) bool

// Always accepts any artifact; useful when only probe errors should drive retries.
func Always[T any](T) bool { return true }

// Identity accepts a boolean artifact as-is.
func Identity(v bool) bool { return v }

type RetryHook func(ctx context.Context, label string, attempt int, err error, next time.Duration)

type Option func(*options)

type options struct {
	label  string
	logger output.LoggerPort
	hooks  []RetryHook
}

func WithLabel(label string) Option {
	return func(o *options) { o.label = label }
}

func WithLogger(logger output.LoggerPort) Option {
	return func(o *options) { o.logger = logger }
}

// WithRetryHook registers a callback invoked before each inter-attempt wait.
func WithRetryHook(hook RetryHook) Option {
	return func(o *options) {
		if hook != nil {
			o.hooks = append(o.hooks, hook)
		}
	}
}

// withoutHooks drops hooks inherited from an enclosing verification, so
// nested polling does not report every poll as a retry.
func withoutHooks() Option {
	return func(o *options) { o.hooks = nil }
}

func Verify[T any](ctx context.Context, probe Probe[T], accept Predicate[T], policy entity.VerificationPolicy, opts ...Option) (T, error) {
	var zero T

	if err := policy.Validate(); err != nil {
		return zero, err
	}
	if probe == nil || accept == nil {
		return zero, fmt.Errorf("%w: probe and predicate are required", entity.ErrInvalidPolicy)
	}

	o := options{label: "verify"}
	for _, opt := range opts {
		opt(&o)
	}

	r := &run{
		label:  o.label,
		max:    policy.MaxRetries,
		logger: o.logger,
		state:  entity.StatePending,
	}

	operation := func() (T, error) {
		r.waiting = false
		if cause := context.Cause(ctx); cause != nil {
			return zero, backoff.Permanent(cause)
		}

		r.attempt++
		r.transition(entity.StateAttempting)
		started := time.Now()
		artifact, err := invoke(ctx, probe, policy.AttemptTimeout)
		rec := entity.Attempt{Index: r.attempt, Started: started, Duration: time.Since(started)}

		if err != nil {
			if cause := context.Cause(ctx); cause != nil {
				return zero, backoff.Permanent(cause)
			}
			failure := &ProbeFailure{Attempt: r.attempt, Err: err}
			rec.Outcome, rec.Err = entity.OutcomeProbeError, failure
			r.softFailure(rec)
			return zero, failure
		}

		rec.Artifact = artifact
		if !accept(artifact) {
			rejected := &PredicateRejected{Attempt: r.attempt}
			rec.Outcome, rec.Err = entity.OutcomeRejected, rejected
			r.softFailure(rec)
			return zero, rejected
		}

		rec.Outcome = entity.OutcomeSucceeded
		r.history = append(r.history, rec)
		return artifact, nil
	}

	notify := func(err error, next time.Duration) {
		r.waiting = true
		for _, hook := range o.hooks {
			hook(ctx, r.label, r.attempt, err, next)
		}
	}

	result, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(policy.Delay)),
		backoff.WithMaxTries(uint(policy.MaxRetries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err == nil {
		r.transition(entity.StateSucceeded)
		if r.attempt > 1 && r.logger != nil {
			r.logger.Info("verification succeeded after retry", "label", r.label, "attempt", r.attempt)
		}
		return result, nil
	}

	if cause := context.Cause(ctx); cause != nil {
		r.transition(entity.StateCancelled)
		if r.waiting {
			return zero, &DelayInterrupted{Label: r.label, Attempt: r.attempt, Cause: cause}
		}
		return zero, fmt.Errorf("%s: %w", r.label, cause)
	}

	r.transition(entity.StateExhausted)
	if r.logger != nil {
		r.logger.Error("verification exhausted", "label", r.label, "attempts", r.attempt, "error", err)
	}
	return zero, &VerificationExhausted{
		Label:    r.label,
		Attempts: r.attempt,
		Last:     err,
		History:  r.history,
	}
}

// invoke runs one probe. The attempt timeout is cooperative: the probe's
// context expires after timeout, but invoke keeps waiting until the probe
// returns, so attempts never overlap on the shared page. A probe that ignores
// its context holds the attempt open until it returns or the caller's
// context ends.
func invoke[T any](ctx context.Context, probe Probe[T], timeout time.Duration) (T, error) {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type outcome struct {
		artifact T
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		artifact, err := probe(attemptCtx)
		done <- outcome{artifact, err}
	}()

	select {
	case out := <-done:
		return out.artifact, out.err
	case <-ctx.Done():
		var zero T
		return zero, context.Cause(ctx)
	}
}

type run struct {
	label   string
	max     int
	logger  output.LoggerPort
	state   entity.VerifierState
	attempt int
	waiting bool
	history []entity.Attempt
}

func (r *run) transition(to entity.VerifierState) {
	if r.logger != nil {
		r.logger.Debug("verifier state", "label", r.label, "from", r.state, "to", to, "attempt", r.attempt)
	}
	r.state = to
}

func (r *run) softFailure(rec entity.Attempt) {
	r.history = append(r.history, rec)
	r.transition(entity.StateSoftFailure)
	if r.logger != nil {
		r.logger.Warn("verification attempt failed",
			"label", r.label,
			"attempt", rec.Index,
			"max_retries", r.max,
			"outcome", rec.Outcome,
			"error", rec.Err,
		)
	}
}
