package in

import (
	"context"

	workflowdto "segdesk/internal/modules/workflow/dto"
	workflowin "segdesk/internal/modules/workflow/port/in"
)

type TUIHandler struct {
	usecase workflowin.Usecase
}

func NewTUIHandler(usecase workflowin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Load(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Load(ctx)
}

func (h TUIHandler) Reload(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Reload(ctx)
}

func (h TUIHandler) SwitchUser(ctx context.Context, userID string) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.SwitchUser(ctx, userID)
}

func (h TUIHandler) Open(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Open(ctx)
}

func (h TUIHandler) MoveTo(ctx context.Context, position int) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.MoveTo(ctx, workflowdto.MoveInput{Position: position})
}

func (h TUIHandler) Focus(ctx context.Context, segmentID int64) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.MoveTo(ctx, workflowdto.MoveInput{SegmentID: segmentID})
}

func (h TUIHandler) Advance(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Advance(ctx)
}

func (h TUIHandler) Retreat(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Retreat(ctx)
}

func (h TUIHandler) Edit(ctx context.Context, field workflowdto.EditField, value string) (workflowdto.EditOutput, error) {
	return h.usecase.Edit(ctx, workflowdto.EditInput{Field: field, Value: value})
}

func (h TUIHandler) Start(ctx context.Context, segmentID int64) error {
	return h.usecase.Start(ctx, segmentID)
}

func (h TUIHandler) Commit(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Commit(ctx)
}

func (h TUIHandler) Report(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Report(ctx)
}

func (h TUIHandler) Finish(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return h.usecase.Finish(ctx)
}

func (h TUIHandler) Workspace(ctx context.Context) workflowdto.WorkspaceOutput {
	return h.usecase.Workspace(ctx)
}
