package domain

import (
	"fmt"
	"strings"

	apperrors "segdesk/internal/platform/errors"
)

// Draft is the unsaved edit state of the open segment.
type Draft struct {
	Transcription string
	Emotion       string
	Report        string
}

func (d Draft) HasTranscription() bool { return strings.TrimSpace(d.Transcription) != "" }

func (d Draft) HasReport() bool { return strings.TrimSpace(d.Report) != "" }

// EditingSession owns the draft for one segment visit. It is rebuilt every
// time the cursor settles on a segment and its detail has loaded.
type EditingSession struct {
	segmentID int64
	draft     Draft
	loaded    bool
	started   bool
}

// OpenEditingSession seeds a draft from stored text, falling back to the
// machine suggestion for the transcription.
func OpenEditingSession(detail SegmentDetail) EditingSession {
	transcription := detail.TranscribeText
	if transcription == "" {
		transcription = detail.AIText
	}
	return EditingSession{
		segmentID: detail.SegmentID,
		loaded:    true,
		draft: Draft{
			Transcription: transcription,
			Emotion:       detail.Emotion,
			Report:        detail.ReportText,
		},
	}
}

func (e EditingSession) SegmentID() int64 { return e.segmentID }

func (e EditingSession) Loaded() bool { return e.loaded }

func (e EditingSession) Draft() Draft { return e.draft }

// The setters report true only for the first edit of the visit; that edit
// is what moves a ready segment to in_progress.

func (e *EditingSession) SetTranscription(text string) bool {
	e.draft.Transcription = text
	return e.touch()
}

func (e *EditingSession) SetEmotion(emotion string) bool {
	e.draft.Emotion = emotion
	return e.touch()
}

func (e *EditingSession) SetReport(text string) bool {
	e.draft.Report = text
	return e.touch()
}

func (e *EditingSession) touch() bool {
	if !e.loaded || e.started {
		return false
	}
	e.started = true
	return true
}

func (e EditingSession) CanCommit() bool {
	return e.draft.HasTranscription() || e.draft.HasReport()
}

// BuildUpdate produces the commit payload. A transcription wins over a
// report; the losing text is sent as an explicit null.
func (e EditingSession) BuildUpdate() (SegmentUpdate, error) {
	switch {
	case e.draft.HasTranscription():
		text := e.draft.Transcription
		update := SegmentUpdate{TranscribeText: &text, IncludeEmotion: true}
		if e.draft.Emotion != "" {
			emotion := e.draft.Emotion
			update.Emotion = &emotion
		}
		return update, nil
	case e.draft.HasReport():
		return e.BuildReport()
	default:
		return SegmentUpdate{}, apperrors.ErrEmptyDraft
	}
}

// BuildReport produces the defect-report payload used by the dedicated
// report action.
func (e EditingSession) BuildReport() (SegmentUpdate, error) {
	if e.draft.HasTranscription() {
		return SegmentUpdate{}, apperrors.ErrReportConflict
	}
	if !e.draft.HasReport() {
		return SegmentUpdate{}, apperrors.ErrEmptyDraft
	}
	report := e.draft.Report
	return SegmentUpdate{ReportText: &report}, nil
}

// ValidateEmotion checks an emotion tag against the configured vocabulary.
// An empty vocabulary accepts anything.
func ValidateEmotion(emotion string, allowed []string) error {
	if emotion == "" || len(allowed) == 0 {
		return nil
	}
	for _, a := range allowed {
		if strings.EqualFold(a, emotion) {
			return nil
		}
	}
	return fmt.Errorf("%w: emotion %q is not one of %s", apperrors.ErrInvalidInput, emotion, strings.Join(allowed, ", "))
}
