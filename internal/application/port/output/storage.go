package output

import "context"

type ArtifactStore interface {
	Save(ctx context.Context, path string, data []byte) error
}
