package verifier

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
)

const (
	visibilityPollInterval = 250 * time.Millisecond
	urlPollInterval        = 250 * time.Millisecond
)

// WaitUntilVisible polls el up to maxRetries times. Each visibility check is
// bounded by timeout.
func WaitUntilVisible(ctx context.Context, el output.ElementPort, timeout time.Duration, maxRetries int, opts ...Option) error {
	policy := entity.VerificationPolicy{
		MaxRetries:     maxRetries,
		AttemptTimeout: timeout,
		Delay:          visibilityPollInterval,
	}
	opts = append([]Option{WithLabel("wait visible")}, opts...)

	_, err := Verify(ctx, el.Visible, Identity, policy, opts...)
	return err
}

// WaitVisibleFor polls el until it is visible or budget worth of polls have
// been spent.
func WaitVisibleFor(ctx context.Context, el output.ElementPort, budget time.Duration, opts ...Option) error {
	return WaitUntilVisible(ctx, el, budget, PollsFor(budget, visibilityPollInterval), opts...)
}

// PollsFor converts a total wait budget into a number of polls at interval.
func PollsFor(budget, interval time.Duration) int {
	if interval <= 0 || budget <= interval {
		return 1
	}
	n := int(budget / interval)
	if budget%interval != 0 {
		n++
	}
	return n
}

// WaitForURL polls the page URL until it matches pattern or timeout worth of
// polls have been spent. It returns the matching URL.
func WaitForURL(ctx context.Context, page output.URLReader, pattern *regexp.Regexp, timeout time.Duration, opts ...Option) (string, error) {
	if pattern == nil {
		return "", fmt.Errorf("%w: url pattern is required", entity.ErrInvalidPolicy)
	}
	policy := entity.VerificationPolicy{
		MaxRetries: PollsFor(timeout, urlPollInterval),
		Delay:      urlPollInterval,
	}
	opts = append([]Option{WithLabel("wait url " + pattern.String())}, opts...)

	return Verify(ctx, page.URL, pattern.MatchString, policy, opts...)
}

// NavigateWithRetry loads url and requires every ready locator to become
// visible; a failure of either step triggers a fresh navigation.
func NavigateWithRetry(ctx context.Context, page output.Navigator, url string, ready []entity.Locator, readyTimeout time.Duration, policy entity.VerificationPolicy, opts ...Option) error {
	probe := func(ctx context.Context) (struct{}, error) {
		if err := page.Navigate(ctx, url); err != nil {
			return struct{}{}, err
		}
		for _, loc := range ready {
			inner := append(append([]Option{}, opts...), WithLabel("wait visible "+loc.String()), withoutHooks())
			if err := WaitVisibleFor(ctx, page.Locate(loc), readyTimeout, inner...); err != nil {
				return struct{}{}, fmt.Errorf("%s not visible: %w", loc, err)
			}
		}
		return struct{}{}, nil
	}

	outer := append([]Option{WithLabel("navigate " + url)}, opts...)
	_, err := Verify(ctx, probe, Always[struct{}], policy, outer...)
	return err
}
