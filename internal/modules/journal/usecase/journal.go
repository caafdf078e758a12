package usecase

import (
	"context"

	"segdesk/internal/modules/journal/domain"
	journaldto "segdesk/internal/modules/journal/dto"
	journalin "segdesk/internal/modules/journal/port/in"
	"segdesk/internal/modules/journal/service"
)

type Interactor struct {
	svc *service.JournalService
}

func NewInteractor(svc *service.JournalService) journalin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input journaldto.RecordInput) (journaldto.RecordOutput, error) {
	batch, path, err := i.svc.Record(ctx, domain.Batch{
		UserID:        input.UserID,
		StartedAt:     input.StartedAt,
		FinishedAt:    input.FinishedAt,
		Total:         input.Total,
		Done:          input.Done,
		Invalid:       input.Invalid,
		LastSegmentID: input.LastSegmentID,
		AudioNames:    input.AudioNames,
	})
	if err != nil {
		return journaldto.RecordOutput{}, err
	}
	return journaldto.RecordOutput{ID: batch.ID, Path: path}, nil
}

func (i *Interactor) List(ctx context.Context, input journaldto.ListInput) ([]journaldto.BatchOutput, error) {
	entries, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]journaldto.BatchOutput, 0, len(entries))
	for _, entry := range entries {
		if input.UserID != "" && entry.Batch.UserID != input.UserID {
			continue
		}
		out = append(out, toOutput(entry))
		if input.Limit > 0 && len(out) == input.Limit {
			break
		}
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (journaldto.BatchDetailOutput, error) {
	entry, err := i.svc.Get(ctx, id)
	if err != nil {
		return journaldto.BatchDetailOutput{}, err
	}
	return journaldto.BatchDetailOutput{BatchOutput: toOutput(entry), Body: entry.Body}, nil
}

func toOutput(entry domain.Entry) journaldto.BatchOutput {
	b := entry.Batch
	return journaldto.BatchOutput{
		ID:            b.ID,
		UserID:        b.UserID,
		StartedAt:     b.StartedAt,
		FinishedAt:    b.FinishedAt,
		DurationMin:   b.DurationMin,
		Total:         b.Total,
		Done:          b.Done,
		Invalid:       b.Invalid,
		Remaining:     b.Remaining(),
		LastSegmentID: b.LastSegmentID,
		AudioNames:    b.AudioNames,
		Path:          entry.Path,
	}
}
