package apperrors

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")

	// Draft validation, rejected before any request is issued.
	ErrEmptyDraft     = errors.New("nothing to commit: transcription and report are both empty")
	ErrEmptyUpdate    = errors.New("update must carry a transcription or a report")
	ErrReportConflict = errors.New("cannot report a segment that has a transcription")
	ErrNotAtEnd       = errors.New("finish is only allowed on the last segment")

	ErrBackend          = errors.New("backend request failed")
	ErrQueueUnavailable = errors.New("segment queue unavailable")
	ErrEmptyQueue       = errors.New("no segments assigned")

	ErrMutationPending = errors.New("another change is still being saved")
	ErrStaleResponse   = errors.New("response no longer matches the open segment")
	ErrInstanceLocked  = errors.New("another segdesk editor is already running")
)
