package out

import (
	"context"

	"segdesk/internal/modules/workflow/domain"
)

// SegmentBackend is the backend of record for segment assignment and edits.
type SegmentBackend interface {
	ListSegments(ctx context.Context, userID string) ([]domain.Segment, error)
	GetDetail(ctx context.Context, segmentID int64) (domain.SegmentDetail, error)
	UpdateSegment(ctx context.Context, segmentID int64, update domain.SegmentUpdate) error
	StartSegment(ctx context.Context, segmentID int64) error
}

// KVStore is a small string key-value store used to remember the cursor
// between runs. Get reports found=false for a missing key.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// BatchJournal records a finished batch.
type BatchJournal interface {
	RecordBatch(ctx context.Context, batch domain.BatchSummary) (string, error)
}
