package in

import (
	"context"

	"segdesk/internal/modules/workflow/dto"
)

// Usecase drives one reviewer's pass through their segment queue. Every
// call returns the resulting workspace, also when it fails.
type Usecase interface {
	Load(ctx context.Context) (dto.WorkspaceOutput, error)
	Reload(ctx context.Context) (dto.WorkspaceOutput, error)
	SwitchUser(ctx context.Context, userID string) (dto.WorkspaceOutput, error)
	Open(ctx context.Context) (dto.WorkspaceOutput, error)
	MoveTo(ctx context.Context, input dto.MoveInput) (dto.WorkspaceOutput, error)
	Advance(ctx context.Context) (dto.WorkspaceOutput, error)
	Retreat(ctx context.Context) (dto.WorkspaceOutput, error)
	Edit(ctx context.Context, input dto.EditInput) (dto.EditOutput, error)
	Start(ctx context.Context, segmentID int64) error
	Commit(ctx context.Context) (dto.WorkspaceOutput, error)
	Report(ctx context.Context) (dto.WorkspaceOutput, error)
	Finish(ctx context.Context) (dto.WorkspaceOutput, error)
	Workspace(ctx context.Context) dto.WorkspaceOutput
	Anchor(ctx context.Context) dto.AnchorOutput
	ClearAnchor(ctx context.Context)
}
