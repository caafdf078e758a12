package out

import (
	"context"

	"segdesk/internal/modules/journal/domain"
)

type BatchStore interface {
	Save(ctx context.Context, batch domain.Batch) (string, error)
	// List returns stored batches, newest first.
	List(ctx context.Context) ([]domain.Entry, error)
	Load(ctx context.Context, id string) (domain.Entry, error)
}
