package domain

import apperrors "segdesk/internal/platform/errors"

// SegmentUpdate is the body of a segment save. Nil text fields are sent as
// explicit nulls; Emotion is only sent when IncludeEmotion is set.
type SegmentUpdate struct {
	TranscribeText *string
	ReportText     *string
	Emotion        *string
	IncludeEmotion bool
}

// Validate rejects a payload that would null both texts; the backend's
// behaviour for that request is undefined.
func (u SegmentUpdate) Validate() error {
	if u.TranscribeText == nil && u.ReportText == nil {
		return apperrors.ErrEmptyUpdate
	}
	return nil
}

// ResultStatus is the status the server derives from the payload.
func (u SegmentUpdate) ResultStatus() Status {
	if u.TranscribeText != nil {
		return StatusDone
	}
	return StatusInvalid
}
