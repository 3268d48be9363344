package userinteraction

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hrm-e2e/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func newTestReporter(t *testing.T) (*ConsoleReporter, *bytes.Buffer) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	return NewConsoleReporterTo(&buf), &buf
}

func TestConsoleReporter_ScenarioLifecycle(t *testing.T) {
	r, buf := newTestReporter(t)
	ctx := context.Background()

	r.ShowScenarioStart(ctx, "auth/valid login")
	r.ShowRetry(ctx, "screenshot login-page-initial", 1, errors.New("blank frame"), time.Second)
	r.ShowScenarioResult(ctx, entity.ScenarioResult{
		Name:     "auth/valid login",
		Status:   entity.ScenarioPassed,
		Duration: 1234567 * time.Microsecond,
	})
	r.ShowScenarioResult(ctx, entity.ScenarioResult{
		Name:      "directory/search",
		Status:    entity.ScenarioFailed,
		Duration:  2 * time.Second,
		Error:     "search button not visible",
		Artifacts: []string{"screenshots/directory-search-failure.png"},
	})
	r.ShowScenarioResult(ctx, entity.ScenarioResult{Name: "session/timeout", Status: entity.ScenarioSkipped})

	out := buf.String()
	assert.Contains(t, out, "▶ auth/valid login")
	assert.Contains(t, out, "↻ screenshot login-page-initial: attempt 1 failed, retrying in 1s")
	assert.Contains(t, out, "blank frame")
	assert.Contains(t, out, "✓ auth/valid login (1.235s)")
	assert.Contains(t, out, "✗ directory/search (2s)")
	assert.Contains(t, out, "search button not visible")
	assert.Contains(t, out, "↳ screenshots/directory-search-failure.png")
	assert.Contains(t, out, "- session/timeout (skipped)")
}

func TestConsoleReporter_Summary(t *testing.T) {
	r, buf := newTestReporter(t)

	r.ShowSummary(context.Background(), entity.SuiteResult{
		Duration: 90 * time.Second,
		Results: []entity.ScenarioResult{
			{Status: entity.ScenarioPassed},
			{Status: entity.ScenarioPassed},
			{Status: entity.ScenarioFailed},
			{Status: entity.ScenarioSkipped},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "4 scenarios in 1m30s")
	assert.Contains(t, out, "2 passed, 1 failed, 1 skipped")
}

func TestConsoleReporter_ConcurrentWritesKeepLinesWhole(t *testing.T) {
	r, buf := newTestReporter(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.ShowScenarioStart(context.Background(), "parallel scenario")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 20)
	for _, line := range lines {
		assert.Equal(t, "▶ parallel scenario", line)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}
