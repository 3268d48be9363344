package output

import (
	"context"
	"time"

	"hrm-e2e/internal/domain/entity"
)

type ReporterPort interface {
	ShowScenarioStart(ctx context.Context, name string)
	ShowRetry(ctx context.Context, label string, attempt int, err error, next time.Duration)
	ShowScenarioResult(ctx context.Context, result entity.ScenarioResult)
	ShowSummary(ctx context.Context, suite entity.SuiteResult)
}
