package domain

import (
	"fmt"
	"time"
)

// DefaultWindowSize is the number of queue entries shown at once.
const DefaultWindowSize = 5

type Status string

const (
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusInvalid    Status = "invalid"
)

var statusLabels = map[Status]string{
	StatusReady:      "Ready",
	StatusInProgress: "In progress",
	StatusDone:       "Done",
	StatusInvalid:    "Invalid",
}

func (s Status) Validate() error {
	switch s {
	case StatusReady, StatusInProgress, StatusDone, StatusInvalid:
		return nil
	default:
		return fmt.Errorf("unsupported segment status %q", string(s))
	}
}

// Terminal reports whether the server considers the segment processed.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusInvalid
}

func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Segment is one assignable unit of audio. Two Segment values describe the
// same unit only if their IDs match; values are rebuilt on every fetch.
type Segment struct {
	ID               int64
	AudioID          int64
	AudioName        string
	CreatedAt        time.Time
	FilePath         string
	Status           Status
	TranscribeOption *string
}

// SegmentDetail is loaded lazily for the segment under the cursor.
type SegmentDetail struct {
	SegmentID      int64
	AudioName      string
	Username       string
	AIText         string
	TranscribeText string
	ReportText     string
	Emotion        string
	Status         Status
}

// BatchSummary describes a queue the reviewer finished.
type BatchSummary struct {
	UserID        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Total         int
	Done          int
	Invalid       int
	LastSegmentID int64
	AudioNames    []string
}
