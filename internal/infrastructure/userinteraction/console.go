package userinteraction

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"hrm-e2e/internal/application/port/output"
	"hrm-e2e/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.ReporterPort = (*ConsoleReporter)(nil)

// ConsoleReporter prints suite progress. Scenarios run in parallel, so every
// write holds the mutex to keep lines whole.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) ShowScenarioStart(ctx context.Context, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cyan := color.New(color.FgCyan)
	cyan.Fprintf(r.out, "▶ %s\n", name)
}

func (r *ConsoleReporter) ShowRetry(ctx context.Context, label string, attempt int, err error, next time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	yellow := color.New(color.FgYellow)
	yellow.Fprintf(r.out, "  ↻ %s: attempt %d failed, retrying in %s\n", label, attempt, next)

	if err != nil {
		dim := color.New(color.Faint)
		dim.Fprintf(r.out, "    %s\n", truncate(err.Error(), 200))
	}
}

func (r *ConsoleReporter) ShowScenarioResult(ctx context.Context, result entity.ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	duration := result.Duration.Round(time.Millisecond)

	switch result.Status {
	case entity.ScenarioPassed:
		green := color.New(color.FgGreen)
		green.Fprintf(r.out, "✓ %s (%s)\n", result.Name, duration)
	case entity.ScenarioSkipped:
		dim := color.New(color.Faint)
		dim.Fprintf(r.out, "- %s (skipped)\n", result.Name)
	default:
		red := color.New(color.FgRed, color.Bold)
		red.Fprintf(r.out, "✗ %s (%s)\n", result.Name, duration)
		if result.Error != "" {
			dim := color.New(color.Faint)
			dim.Fprintf(r.out, "    %s\n", truncate(result.Error, 500))
		}
	}

	for _, artifact := range result.Artifacts {
		fmt.Fprintf(r.out, "    ↳ %s\n", artifact)
	}
}

func (r *ConsoleReporter) ShowSummary(ctx context.Context, suite entity.SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bold := color.New(color.Bold)
	bold.Fprintf(r.out, "\n━━━ %d scenarios in %s ━━━\n", len(suite.Results), suite.Duration.Round(time.Millisecond))

	parts := []string{
		color.GreenString("%d passed", suite.Count(entity.ScenarioPassed)),
	}
	if n := suite.Count(entity.ScenarioFailed); n > 0 {
		parts = append(parts, color.RedString("%d failed", n))
	}
	if n := suite.Count(entity.ScenarioSkipped); n > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", n))
	}
	fmt.Fprintln(r.out, strings.Join(parts, ", "))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
