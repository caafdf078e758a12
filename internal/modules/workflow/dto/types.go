package dto

import "time"

type EditField string

const (
	FieldTranscription EditField = "transcription"
	FieldEmotion       EditField = "emotion"
	FieldReport        EditField = "report"
)

type SegmentView struct {
	Position         int
	ID               int64
	AudioID          int64
	AudioName        string
	FilePath         string
	CreatedAt        time.Time
	Status           string
	StatusLabel      string
	TranscribeOption string
	Current          bool
	InWindow         bool
}

type DetailView struct {
	SegmentID      int64
	AudioName      string
	Username       string
	AIText         string
	TranscribeText string
	ReportText     string
	Emotion        string
	Status         string
}

type DraftView struct {
	Loaded        bool
	Transcription string
	Emotion       string
	Report        string
	CanCommit     bool
	// ReportEnabled is false while a transcription is present.
	ReportEnabled bool
}

// WorkspaceOutput is everything a renderer needs for one frame.
type WorkspaceOutput struct {
	UserID      string
	Generation  uint64
	Segments    []SegmentView
	Position    int
	WindowStart int
	WindowEnd   int
	AtEnd       bool
	Finished    bool
	Pending     bool
	// Empty is set when the queue loaded fine but holds nothing.
	Empty       bool
	QueueError  string
	DetailError string
	Detail      DetailView
	Draft       DraftView
}

// Visible returns the segments inside the current window.
func (w WorkspaceOutput) Visible() []SegmentView {
	if w.WindowStart < 0 || w.WindowEnd > len(w.Segments) || w.WindowStart >= w.WindowEnd {
		return nil
	}
	return w.Segments[w.WindowStart:w.WindowEnd]
}

// Current returns the segment under the cursor.
func (w WorkspaceOutput) Current() (SegmentView, bool) {
	if w.Position < 1 || w.Position > len(w.Segments) {
		return SegmentView{}, false
	}
	return w.Segments[w.Position-1], true
}

type MoveInput struct {
	// Position is 1-based. SegmentID takes precedence when set.
	Position  int
	SegmentID int64
}

type EditInput struct {
	Field EditField
	Value string
}

type EditOutput struct {
	Workspace WorkspaceOutput
	// StartSegmentID is set when the edit should move a ready segment to
	// in progress.
	StartSegmentID int64
}

type AnchorOutput struct {
	SegmentID int64
	Set       bool
}
