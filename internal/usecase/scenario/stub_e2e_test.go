package scenario_test

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"hrm-e2e/internal/domain/entity"
	"hrm-e2e/internal/infrastructure/browser/rod"
	"hrm-e2e/internal/infrastructure/fixtures"
	"hrm-e2e/internal/infrastructure/hrmstub"
	"hrm-e2e/internal/infrastructure/logger"
	"hrm-e2e/internal/infrastructure/storage/fs"
	"hrm-e2e/internal/infrastructure/userinteraction"
	"hrm-e2e/internal/usecase/scenario"
	"hrm-e2e/internal/usecase/verifier"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSuiteAgainstStub drives a real browser through a subset of the suite
// against the in-process HR stub.
func TestSuiteAgainstStub(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	stub := httptest.NewServer(hrmstub.New(hrmstub.DefaultConfig(), zerolog.New(io.Discard)).Handler())
	defer stub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := rod.DefaultConfig()
	cfg.SlowMotion = 0
	cfg.Timeout = 10 * time.Second
	browser, err := rod.NewBrowserAdapter(ctx, cfg)
	if err != nil {
		t.Skipf("browser unavailable: %v", err)
	}
	defer browser.Close()

	fx, err := fixtures.Default()
	require.NoError(t, err)
	filter, err := scenario.NewFilter(`^auth/(successful login|failed login|successful logout)|^dashboard/|^directory/directory search`)
	require.NoError(t, err)

	dir := t.TempDir()
	store := fs.NewFileStore(dir)
	log := logger.NewNop()
	shots := verifier.NewScreenshotter(store, log, verifier.DefaultScreenshotConfig())

	rc := scenario.DefaultRunnerConfig()
	rc.BaseURL = stub.URL
	rc.Credentials = entity.Credentials{Username: "Admin", Password: "admin123"}
	rc.Fixtures = fx
	rc.Timing = scenario.Timing{
		Action: 10 * time.Second,
		Ready:  10 * time.Second,
		Navigation: entity.VerificationPolicy{
			MaxRetries:     2,
			AttemptTimeout: 20 * time.Second,
			Delay:          500 * time.Millisecond,
		},
		Reachability: 10 * time.Second,
		Idle:         time.Second,
	}
	rc.Workers = 2
	rc.ScenarioTimeout = time.Minute
	rc.ResultsDir = "results"
	rc.Filter = filter

	reporter := userinteraction.NewConsoleReporterTo(io.Discard)
	runner := scenario.NewRunner(scenario.NewSuiteRegistry(), browser, shots, store, reporter, log, rc)

	suite, err := runner.Run(ctx)
	require.NoError(t, err)

	require.Len(t, suite.Results, 5)
	for _, r := range suite.Results {
		assert.Equal(t, entity.ScenarioPassed, r.Status, "%s: %s", r.Name, r.Error)
	}
	assert.False(t, suite.Failed())

	finalShots, err := filepath.Glob(filepath.Join(dir, "results", "*", "test-finished-*.png"))
	require.NoError(t, err)
	assert.Len(t, finalShots, 5, "one final screenshot per scenario")
	videos, err := filepath.Glob(filepath.Join(dir, "results", "*", "video.mjpeg"))
	require.NoError(t, err)
	assert.NotEmpty(t, videos)
}
