package dto

import "time"

type RecordInput struct {
	UserID        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Total         int
	Done          int
	Invalid       int
	LastSegmentID int64
	AudioNames    []string
}

type RecordOutput struct {
	ID   string
	Path string
}

type BatchOutput struct {
	ID            string
	UserID        string
	StartedAt     time.Time
	FinishedAt    time.Time
	DurationMin   int
	Total         int
	Done          int
	Invalid       int
	Remaining     int
	LastSegmentID int64
	AudioNames    []string
	Path          string
}

type BatchDetailOutput struct {
	BatchOutput
	Body string
}

type ListInput struct {
	UserID string
	Limit  int
}
