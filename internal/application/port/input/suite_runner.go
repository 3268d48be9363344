package input

import (
	"context"

	"hrm-e2e/internal/domain/entity"
)

type SuiteRunner interface {
	Run(ctx context.Context) (entity.SuiteResult, error)
}
