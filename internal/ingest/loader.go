package ingest

import (
	"context"
	"fmt"

	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/repository"
)

// Loader writes reduced batches to the pass store.
type Loader struct {
	passes repository.PassRepository
}

// NewLoader builds a loader.
func NewLoader(passes repository.PassRepository) *Loader {
	return &Loader{passes: passes}
}

// Load stores passes and their counter increments as one write.
func (l *Loader) Load(ctx context.Context, passes []domain.Pass) error {
	if len(passes) == 0 {
		return nil
	}
	if err := l.passes.CreateBatch(ctx, passes); err != nil {
		return fmt.Errorf("load %d passes: %w", len(passes), err)
	}
	return nil
}
