package out

import (
	"context"

	journaldto "segdesk/internal/modules/journal/dto"
	journalin "segdesk/internal/modules/journal/port/in"
	"segdesk/internal/modules/workflow/domain"
	workflowout "segdesk/internal/modules/workflow/port/out"
)

type JournalAdapter struct {
	journal journalin.Usecase
}

func NewJournalAdapter(journal journalin.Usecase) workflowout.BatchJournal {
	return &JournalAdapter{journal: journal}
}

func (a *JournalAdapter) RecordBatch(ctx context.Context, batch domain.BatchSummary) (string, error) {
	out, err := a.journal.Record(ctx, journaldto.RecordInput{
		UserID:        batch.UserID,
		StartedAt:     batch.StartedAt,
		FinishedAt:    batch.FinishedAt,
		Total:         batch.Total,
		Done:          batch.Done,
		Invalid:       batch.Invalid,
		LastSegmentID: batch.LastSegmentID,
		AudioNames:    batch.AudioNames,
	})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
