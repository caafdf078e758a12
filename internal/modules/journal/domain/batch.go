package domain

import "time"

const SchemaVersion = 1

// Batch is the journal record of one finished review queue.
type Batch struct {
	ID            string
	UserID        string
	StartedAt     time.Time
	FinishedAt    time.Time
	DurationMin   int
	Total         int
	Done          int
	Invalid       int
	LastSegmentID int64
	AudioNames    []string
}

// Remaining counts segments that were neither transcribed nor reported.
func (b Batch) Remaining() int {
	left := b.Total - b.Done - b.Invalid
	if left < 0 {
		return 0
	}
	return left
}

// Entry is a stored batch together with where it lives and its note body.
type Entry struct {
	Batch Batch
	Path  string
	Body  string
}
