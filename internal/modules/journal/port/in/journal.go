package in

import (
	"context"

	"segdesk/internal/modules/journal/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.RecordOutput, error)
	List(ctx context.Context, input dto.ListInput) ([]dto.BatchOutput, error)
	Get(ctx context.Context, id string) (dto.BatchDetailOutput, error)
}
