package in

import (
	"context"
	"fmt"

	workflowdto "segdesk/internal/modules/workflow/dto"
	workflowin "segdesk/internal/modules/workflow/port/in"
)

// CLIHandler runs each command against a freshly loaded queue, so every
// invocation resumes from the persisted anchor.
type CLIHandler struct {
	usecase workflowin.Usecase
}

func NewCLIHandler(usecase workflowin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Queue(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Load(ctx)
}

// Show opens a segment, the resumed one when segmentID is zero.
func (h CLIHandler) Show(ctx context.Context, segmentID int64) (workflowdto.WorkspaceOutput, error) {
	if err := h.focus(ctx, segmentID); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	return h.usecase.Open(ctx)
}

func (h CLIHandler) Start(ctx context.Context, segmentID int64) error {
	if _, err := h.usecase.Load(ctx); err != nil {
		return err
	}
	return h.usecase.Start(ctx, segmentID)
}

func (h CLIHandler) Commit(ctx context.Context, segmentID int64, text, emotion string) (workflowdto.WorkspaceOutput, error) {
	if err := h.openAt(ctx, segmentID); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	if err := h.edit(ctx, workflowdto.FieldTranscription, text); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	if emotion != "" {
		if err := h.edit(ctx, workflowdto.FieldEmotion, emotion); err != nil {
			return workflowdto.WorkspaceOutput{}, err
		}
	}
	return h.usecase.Commit(ctx)
}

func (h CLIHandler) Report(ctx context.Context, segmentID int64, text string) (workflowdto.WorkspaceOutput, error) {
	if err := h.openAt(ctx, segmentID); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	if err := h.edit(ctx, workflowdto.FieldTranscription, ""); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	if err := h.edit(ctx, workflowdto.FieldReport, text); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	return h.usecase.Report(ctx)
}

// Finish moves to the last segment and closes the batch, saving text as
// its transcription when given.
func (h CLIHandler) Finish(ctx context.Context, text, emotion string) (workflowdto.WorkspaceOutput, error) {
	ws, err := h.usecase.Load(ctx)
	if err != nil {
		return ws, err
	}
	if len(ws.Segments) == 0 {
		return ws, fmt.Errorf("queue is empty, nothing to finish")
	}
	if _, err := h.usecase.MoveTo(ctx, workflowdto.MoveInput{Position: len(ws.Segments)}); err != nil {
		return workflowdto.WorkspaceOutput{}, err
	}
	if text != "" {
		if _, err := h.usecase.Open(ctx); err != nil {
			return workflowdto.WorkspaceOutput{}, err
		}
		if err := h.edit(ctx, workflowdto.FieldTranscription, text); err != nil {
			return workflowdto.WorkspaceOutput{}, err
		}
		if emotion != "" {
			if err := h.edit(ctx, workflowdto.FieldEmotion, emotion); err != nil {
				return workflowdto.WorkspaceOutput{}, err
			}
		}
	}
	return h.usecase.Finish(ctx)
}

func (h CLIHandler) Anchor(ctx context.Context) workflowdto.AnchorOutput {
	return h.usecase.Anchor(ctx)
}

func (h CLIHandler) ClearAnchor(ctx context.Context) {
	h.usecase.ClearAnchor(ctx)
}

func (h CLIHandler) focus(ctx context.Context, segmentID int64) error {
	if _, err := h.usecase.Load(ctx); err != nil {
		return err
	}
	if segmentID == 0 {
		return nil
	}
	_, err := h.usecase.MoveTo(ctx, workflowdto.MoveInput{SegmentID: segmentID})
	return err
}

func (h CLIHandler) openAt(ctx context.Context, segmentID int64) error {
	if err := h.focus(ctx, segmentID); err != nil {
		return err
	}
	_, err := h.usecase.Open(ctx)
	return err
}

// edit applies one field change. The start signal is fired inline; its
// failure is not fatal because the save that follows sets the final status.
func (h CLIHandler) edit(ctx context.Context, field workflowdto.EditField, value string) error {
	out, err := h.usecase.Edit(ctx, workflowdto.EditInput{Field: field, Value: value})
	if err != nil {
		return err
	}
	if out.StartSegmentID != 0 {
		_ = h.usecase.Start(ctx, out.StartSegmentID)
	}
	return nil
}
