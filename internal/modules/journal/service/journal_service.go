package service

import (
	"context"
	"fmt"
	"time"

	"segdesk/internal/modules/journal/domain"
	journalout "segdesk/internal/modules/journal/port/out"
	"segdesk/internal/platform/clock"
	apperrors "segdesk/internal/platform/errors"
	"segdesk/internal/platform/id"
)

type JournalService struct {
	clock clock.Clock
	idGen id.Generator
	store journalout.BatchStore
}

func NewJournalService(clock clock.Clock, idGen id.Generator, store journalout.BatchStore) *JournalService {
	return &JournalService{clock: clock, idGen: idGen, store: store}
}

// Record stamps and stores a finished batch. A zero finish time is taken
// from the clock; a zero start time collapses to the finish time.
func (s *JournalService) Record(ctx context.Context, batch domain.Batch) (domain.Batch, string, error) {
	if batch.UserID == "" {
		return domain.Batch{}, "", fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if batch.Total < 0 || batch.Done < 0 || batch.Invalid < 0 {
		return domain.Batch{}, "", fmt.Errorf("%w: counts must be non-negative", apperrors.ErrInvalidInput)
	}
	if batch.FinishedAt.IsZero() {
		batch.FinishedAt = s.clock.Now()
	}
	if batch.StartedAt.IsZero() || batch.StartedAt.After(batch.FinishedAt) {
		batch.StartedAt = batch.FinishedAt
	}
	batch.ID = s.idGen.New()
	batch.DurationMin = int(batch.FinishedAt.Sub(batch.StartedAt) / time.Minute)
	path, err := s.store.Save(ctx, batch)
	if err != nil {
		return domain.Batch{}, "", err
	}
	return batch, path, nil
}

func (s *JournalService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.store.List(ctx)
}

func (s *JournalService) Get(ctx context.Context, id string) (domain.Entry, error) {
	if id == "" {
		return domain.Entry{}, fmt.Errorf("%w: batch id is required", apperrors.ErrInvalidInput)
	}
	return s.store.Load(ctx, id)
}
