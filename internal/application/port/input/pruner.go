package input

import (
	"context"

	"hrm-e2e/internal/domain/entity"
)

type Pruner interface {
	Prune(ctx context.Context) (*entity.PruneReport, error)
}
