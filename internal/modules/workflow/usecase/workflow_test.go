package usecase_test

import (
	"context"
	"errors"
	"testing"

	workflowout "segdesk/internal/modules/workflow/adapter/out"
	"segdesk/internal/modules/workflow/domain"
	workflowdto "segdesk/internal/modules/workflow/dto"
	workflowin "segdesk/internal/modules/workflow/port/in"
	"segdesk/internal/modules/workflow/service"
	"segdesk/internal/modules/workflow/usecase"
	apperrors "segdesk/internal/platform/errors"
)

type stubBackend struct {
	segments []domain.Segment
	updates  int
}

func (s *stubBackend) ListSegments(context.Context, string) ([]domain.Segment, error) {
	out := make([]domain.Segment, len(s.segments))
	copy(out, s.segments)
	return out, nil
}

func (s *stubBackend) GetDetail(_ context.Context, id int64) (domain.SegmentDetail, error) {
	return domain.SegmentDetail{SegmentID: id, AIText: "suggested", Status: domain.StatusReady}, nil
}

func (s *stubBackend) UpdateSegment(_ context.Context, id int64, update domain.SegmentUpdate) error {
	s.updates++
	for i := range s.segments {
		if s.segments[i].ID == id {
			s.segments[i].Status = update.ResultStatus()
		}
	}
	return nil
}

func (s *stubBackend) StartSegment(context.Context, int64) error { return nil }

func newUsecase(segments ...domain.Segment) (workflowin.Usecase, *stubBackend) {
	backend := &stubBackend{segments: segments}
	anchor := service.NewAnchor(workflowout.NewMemoryKVStore(), nil)
	engine := service.NewEngine(backend, anchor, nil, service.EngineOptions{UserID: "u1", WindowSize: 2})
	return usecase.NewInteractor(engine, anchor), backend
}

func seg(id int64, status domain.Status) domain.Segment {
	return domain.Segment{ID: id, AudioName: "call-a", Status: status}
}

func TestWorkspaceMapsWindowAndCurrent(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(seg(1, domain.StatusDone), seg(2, domain.StatusDone), seg(3, domain.StatusReady))
	ws, err := uc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cur, ok := ws.Current()
	if !ok || cur.ID != 3 || !cur.Current || cur.StatusLabel != "Ready" {
		t.Fatalf("unexpected current %+v", cur)
	}
	visible := ws.Visible()
	if len(visible) != 2 || visible[0].ID != 2 || visible[1].ID != 3 {
		t.Fatalf("expected window [2,3], got %+v", visible)
	}
	if ws.Segments[0].InWindow || !ws.Segments[1].InWindow {
		t.Fatalf("in-window flags wrong: %+v", ws.Segments)
	}
}

func TestEmptyQueueIsFlagged(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase()
	ws, err := uc.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ws.Empty || ws.Position != 0 {
		t.Fatalf("expected empty workspace, got %+v", ws)
	}
	if _, err := uc.Open(context.Background()); !errors.Is(err, apperrors.ErrEmptyQueue) {
		t.Fatalf("expected empty queue on open, got %v", err)
	}
}

func TestEditSurfacesStartAndReportToggle(t *testing.T) {
	t.Parallel()
	uc, backend := newUsecase(seg(1, domain.StatusReady), seg(2, domain.StatusReady))
	ctx := context.Background()
	if _, err := uc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	ws, err := uc.Open(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if ws.Draft.Transcription != "suggested" || ws.Draft.ReportEnabled {
		t.Fatalf("seeded draft should disable report box, got %+v", ws.Draft)
	}

	out, err := uc.Edit(ctx, workflowdto.EditInput{Field: workflowdto.FieldTranscription, Value: ""})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if out.StartSegmentID != 1 || !out.Workspace.Draft.ReportEnabled {
		t.Fatalf("expected start signal and enabled report, got %+v", out)
	}
	if _, err := uc.Edit(ctx, workflowdto.EditInput{Field: "title", Value: "x"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected unknown field rejection, got %v", err)
	}
	if _, err := uc.Edit(ctx, workflowdto.EditInput{Field: workflowdto.FieldReport, Value: "static"}); err != nil {
		t.Fatalf("report edit: %v", err)
	}
	ws, err = uc.Report(ctx)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if ws.Position != 2 || ws.Segments[0].Status != string(domain.StatusInvalid) || backend.updates != 1 {
		t.Fatalf("unexpected workspace after report %+v", ws)
	}
}

func TestMoveToBySegmentID(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(seg(1, domain.StatusReady), seg(2, domain.StatusReady), seg(3, domain.StatusReady))
	ctx := context.Background()
	if _, err := uc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	ws, err := uc.MoveTo(ctx, workflowdto.MoveInput{SegmentID: 3})
	if err != nil || ws.Position != 3 || ws.WindowStart != 1 {
		t.Fatalf("unexpected move result pos=%d start=%d err=%v", ws.Position, ws.WindowStart, err)
	}
	if _, err := uc.MoveTo(ctx, workflowdto.MoveInput{SegmentID: 99}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := uc.MoveTo(ctx, workflowdto.MoveInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestAnchorShowAndClear(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(seg(1, domain.StatusDone), seg(2, domain.StatusReady))
	ctx := context.Background()
	if got := uc.Anchor(ctx); got.Set {
		t.Fatalf("fresh store must have no anchor, got %+v", got)
	}
	if _, err := uc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := uc.Anchor(ctx); !got.Set || got.SegmentID != 2 {
		t.Fatalf("expected anchor 2, got %+v", got)
	}
	uc.ClearAnchor(ctx)
	if got := uc.Anchor(ctx); got.Set {
		t.Fatalf("expected anchor cleared, got %+v", got)
	}
}

func TestSwitchUserRequiresID(t *testing.T) {
	t.Parallel()
	uc, _ := newUsecase(seg(1, domain.StatusReady))
	if _, err := uc.SwitchUser(context.Background(), ""); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
