package usecase

import (
	"context"
	"fmt"

	"segdesk/internal/modules/workflow/domain"
	workflowdto "segdesk/internal/modules/workflow/dto"
	workflowin "segdesk/internal/modules/workflow/port/in"
	"segdesk/internal/modules/workflow/service"
	apperrors "segdesk/internal/platform/errors"
)

type Interactor struct {
	engine *service.Engine
	anchor *service.Anchor
}

func NewInteractor(engine *service.Engine, anchor *service.Anchor) workflowin.Usecase {
	return &Interactor{engine: engine, anchor: anchor}
}

func (i *Interactor) Load(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Load(ctx))
}

func (i *Interactor) Reload(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Reload(ctx))
}

func (i *Interactor) SwitchUser(ctx context.Context, userID string) (workflowdto.WorkspaceOutput, error) {
	if userID == "" {
		return toWorkspace(i.engine.State()), fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	return wrap(i.engine.SwitchUser(ctx, userID))
}

func (i *Interactor) Open(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Open(ctx))
}

func (i *Interactor) MoveTo(ctx context.Context, input workflowdto.MoveInput) (workflowdto.WorkspaceOutput, error) {
	if input.SegmentID != 0 {
		return wrap(i.engine.Focus(ctx, input.SegmentID))
	}
	if input.Position < 1 {
		return toWorkspace(i.engine.State()), fmt.Errorf("%w: position must be at least 1", apperrors.ErrInvalidInput)
	}
	return wrap(i.engine.MoveTo(ctx, input.Position))
}

func (i *Interactor) Advance(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Advance(ctx))
}

func (i *Interactor) Retreat(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Retreat(ctx))
}

func (i *Interactor) Edit(_ context.Context, input workflowdto.EditInput) (workflowdto.EditOutput, error) {
	var (
		sig service.StartSignal
		err error
	)
	switch input.Field {
	case workflowdto.FieldTranscription:
		sig, err = i.engine.SetTranscription(input.Value)
	case workflowdto.FieldEmotion:
		sig, err = i.engine.SetEmotion(input.Value)
	case workflowdto.FieldReport:
		sig, err = i.engine.SetReport(input.Value)
	default:
		err = fmt.Errorf("%w: unknown field %q", apperrors.ErrInvalidInput, input.Field)
	}
	out := workflowdto.EditOutput{Workspace: toWorkspace(i.engine.State())}
	if err != nil {
		return out, err
	}
	if sig.Fire {
		out.StartSegmentID = sig.SegmentID
	}
	return out, nil
}

func (i *Interactor) Start(ctx context.Context, segmentID int64) error {
	return i.engine.Start(ctx, segmentID)
}

func (i *Interactor) Commit(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.CommitAndAdvance(ctx))
}

func (i *Interactor) Report(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.ReportOnly(ctx))
}

func (i *Interactor) Finish(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return wrap(i.engine.Finish(ctx))
}

func (i *Interactor) Workspace(context.Context) workflowdto.WorkspaceOutput {
	return toWorkspace(i.engine.State())
}

func (i *Interactor) Anchor(ctx context.Context) workflowdto.AnchorOutput {
	id, ok := i.anchor.Load(ctx)
	return workflowdto.AnchorOutput{SegmentID: id, Set: ok}
}

func (i *Interactor) ClearAnchor(ctx context.Context) {
	i.anchor.Clear(ctx)
}

func wrap(state service.State, err error) (workflowdto.WorkspaceOutput, error) {
	return toWorkspace(state), err
}

func toWorkspace(state service.State) workflowdto.WorkspaceOutput {
	out := workflowdto.WorkspaceOutput{
		UserID:      state.UserID,
		Generation:  state.Generation,
		Segments:    make([]workflowdto.SegmentView, 0, len(state.Segments)),
		Position:    state.Position,
		WindowStart: state.Window.Start,
		WindowEnd:   state.Window.End,
		AtEnd:       state.AtEnd(),
		Finished:    state.Finished,
		Pending:     state.Pending,
		Empty:       state.QueueErr == nil && len(state.Segments) == 0,
		Detail:      toDetail(state.Detail),
		Draft: workflowdto.DraftView{
			Loaded:        state.DraftLoaded,
			Transcription: state.Draft.Transcription,
			Emotion:       state.Draft.Emotion,
			Report:        state.Draft.Report,
			CanCommit:     state.CanCommit,
			ReportEnabled: state.DraftLoaded && !state.Draft.HasTranscription(),
		},
	}
	if state.QueueErr != nil {
		out.QueueError = state.QueueErr.Error()
	}
	if state.DetailErr != nil {
		out.DetailError = state.DetailErr.Error()
	}
	for idx, seg := range state.Segments {
		pos := idx + 1
		out.Segments = append(out.Segments, toSegmentView(seg, pos, pos == state.Position, state.Window.Contains(pos)))
	}
	return out
}

func toSegmentView(seg domain.Segment, pos int, current, inWindow bool) workflowdto.SegmentView {
	view := workflowdto.SegmentView{
		Position:    pos,
		ID:          seg.ID,
		AudioID:     seg.AudioID,
		AudioName:   seg.AudioName,
		FilePath:    seg.FilePath,
		CreatedAt:   seg.CreatedAt,
		Status:      string(seg.Status),
		StatusLabel: seg.Status.Label(),
		Current:     current,
		InWindow:    inWindow,
	}
	if seg.TranscribeOption != nil {
		view.TranscribeOption = *seg.TranscribeOption
	}
	return view
}

func toDetail(d domain.SegmentDetail) workflowdto.DetailView {
	return workflowdto.DetailView{
		SegmentID:      d.SegmentID,
		AudioName:      d.AudioName,
		Username:       d.Username,
		AIText:         d.AIText,
		TranscribeText: d.TranscribeText,
		ReportText:     d.ReportText,
		Emotion:        d.Emotion,
		Status:         string(d.Status),
	}
}
