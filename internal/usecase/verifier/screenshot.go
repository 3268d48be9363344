package verifier

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"
)

const defaultScreenshotRetries = 3

type ScreenshotConfig struct {
	Dir    string
	Policy entity.VerificationPolicy
	Check  ContentCheck
	Now    func() time.Time
}

func DefaultScreenshotConfig() ScreenshotConfig {
	return ScreenshotConfig{
		Dir: "screenshots",
		Policy: entity.VerificationPolicy{
			MaxRetries:     defaultScreenshotRetries,
			AttemptTimeout: 10 * time.Second,
			Delay:          time.Second,
		},
		Check: DefaultContentCheck(),
		Now:   time.Now,
	}
}

type Screenshotter struct {
	store  output.ArtifactStore
	logger output.LoggerPort
	cfg    ScreenshotConfig
	hooks  []RetryHook
}

func NewScreenshotter(store output.ArtifactStore, logger output.LoggerPort, cfg ScreenshotConfig, hooks ...RetryHook) *Screenshotter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Check.SampleSize == 0 {
		cfg.Check = DefaultContentCheck()
	}
	return &Screenshotter{
		store:  store,
		logger: logger,
		cfg:    cfg,
		hooks:  hooks,
	}
}

// In returns a Screenshotter sharing s's store, policy and hooks that saves
// under dir.
func (s *Screenshotter) In(dir string) *Screenshotter {
	c := *s
	c.cfg.Dir = dir
	return &c
}

// CaptureVerifiedScreenshot settles the page, captures frames until one has
// content and stores only that frame. maxRetries <= 0 uses the configured
// policy.
func (s *Screenshotter) CaptureVerifiedScreenshot(ctx context.Context, page output.FramePort, name string, maxRetries int) (string, error) {
	policy := s.cfg.Policy
	if maxRetries > 0 {
		policy.MaxRetries = maxRetries
	}
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = defaultScreenshotRetries
	}

	path := ArtifactPath(s.cfg.Dir, name, s.cfg.Now())

	probe := func(ctx context.Context) (*entity.Frame, error) {
		if err := page.Settle(ctx); err != nil {
			return nil, fmt.Errorf("settle page: %w", err)
		}
		return page.CaptureFrame(ctx)
	}

	opts := []Option{WithLabel("screenshot " + name), WithLogger(s.logger)}
	for _, hook := range s.hooks {
		opts = append(opts, WithRetryHook(hook))
	}

	frame, err := Verify(ctx, probe, s.cfg.Check.AcceptFrame, policy, opts...)
	if err != nil {
		return "", err
	}

	if err := s.store.Save(ctx, path, frame.Data); err != nil {
		return "", fmt.Errorf("save screenshot %s: %w", path, err)
	}

	if s.logger != nil {
		s.logger.Info("screenshot saved", "path", path, "width", frame.Width, "height", frame.Height)
	}
	return path, nil
}

// ArtifactPath builds <dir>/<name>-<UTC ISO-8601 with ':' and '.' replaced>.png.
func ArtifactPath(dir, name string, at time.Time) string {
	stamp := at.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return filepath.Join(dir, fmt.Sprintf("%s-%s.png", name, stamp))
}
