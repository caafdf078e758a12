package editor

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	workflowdto "segdesk/internal/modules/workflow/dto"
	apperrors "segdesk/internal/platform/errors"
)

type fakePort struct {
	ws       workflowdto.WorkspaceOutput
	edits    []string
	moved    int
	finished int
	reported int
	editErr  error
}

func (f *fakePort) Load(context.Context) (workflowdto.WorkspaceOutput, error)   { return f.ws, nil }
func (f *fakePort) Reload(context.Context) (workflowdto.WorkspaceOutput, error) { return f.ws, nil }
func (f *fakePort) SwitchUser(context.Context, string) (workflowdto.WorkspaceOutput, error) {
	return f.ws, nil
}
func (f *fakePort) Open(context.Context) (workflowdto.WorkspaceOutput, error) { return f.ws, nil }
func (f *fakePort) MoveTo(_ context.Context, pos int) (workflowdto.WorkspaceOutput, error) {
	f.moved = pos
	return f.ws, nil
}
func (f *fakePort) Focus(context.Context, int64) (workflowdto.WorkspaceOutput, error) {
	return f.ws, nil
}
func (f *fakePort) Advance(context.Context) (workflowdto.WorkspaceOutput, error) { return f.ws, nil }
func (f *fakePort) Retreat(context.Context) (workflowdto.WorkspaceOutput, error) { return f.ws, nil }
func (f *fakePort) Edit(_ context.Context, _ workflowdto.EditField, value string) (workflowdto.EditOutput, error) {
	if f.editErr != nil {
		return workflowdto.EditOutput{}, f.editErr
	}
	f.edits = append(f.edits, value)
	ws := f.ws
	ws.Draft.Transcription = value
	out := workflowdto.EditOutput{Workspace: ws}
	if len(f.edits) == 1 {
		out.StartSegmentID = 7
	}
	return out, nil
}
func (f *fakePort) Start(context.Context, int64) error { return nil }
func (f *fakePort) Commit(context.Context) (workflowdto.WorkspaceOutput, error) {
	return f.ws, nil
}
func (f *fakePort) Report(context.Context) (workflowdto.WorkspaceOutput, error) {
	f.reported++
	return f.ws, nil
}
func (f *fakePort) Finish(context.Context) (workflowdto.WorkspaceOutput, error) {
	f.finished++
	return f.ws, nil
}
func (f *fakePort) Workspace(context.Context) workflowdto.WorkspaceOutput { return f.ws }

func loadedWorkspace(n, pos int) workflowdto.WorkspaceOutput {
	ws := workflowdto.WorkspaceOutput{UserID: "u1", Position: pos, WindowStart: 0, WindowEnd: n}
	for i := 1; i <= n; i++ {
		ws.Segments = append(ws.Segments, workflowdto.SegmentView{Position: i, ID: int64(i), Status: "ready", Current: i == pos})
	}
	ws.AtEnd = pos == n
	ws.Draft = workflowdto.DraftView{Loaded: true}
	return ws
}

func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestStaleWorkspaceIsIgnored(t *testing.T) {
	t.Parallel()
	port := &fakePort{}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpOpen, Workspace: loadedWorkspace(3, 2), Err: apperrors.ErrStaleResponse})
	if m.Workspace().Position != 0 {
		t.Fatalf("stale workspace must be dropped, got position %d", m.Workspace().Position)
	}
}

func TestFinishedWorkspacePromptsAndConfirms(t *testing.T) {
	t.Parallel()
	ws := loadedWorkspace(2, 2)
	ws.Finished = true
	port := &fakePort{ws: ws}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpCommit, Workspace: ws})
	if !m.Capturing() {
		t.Fatal("finish prompt should capture keys")
	}
	m, cmd := m.Update(runes("y"))
	drain(cmd)
	if port.finished != 1 {
		t.Fatalf("expected one finish call, got %d", port.finished)
	}
	if m.Capturing() {
		t.Fatal("prompt should close after confirming")
	}
}

func TestDigitsJumpWithinWindow(t *testing.T) {
	t.Parallel()
	ws := loadedWorkspace(5, 3)
	ws.WindowStart, ws.WindowEnd = 2, 4
	port := &fakePort{ws: ws}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpOpen, Workspace: ws})

	m, cmd := m.Update(runes("2"))
	drain(cmd)
	if port.moved != 4 {
		t.Fatalf("expected move to position 4, got %d", port.moved)
	}
	if _, cmd = m.Update(runes("3")); cmd != nil {
		t.Fatal("digit beyond the window must not move")
	}
}

func TestTypingEditsDraftInOrder(t *testing.T) {
	t.Parallel()
	ws := loadedWorkspace(2, 1)
	port := &fakePort{ws: ws}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpOpen, Workspace: ws})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Capturing() {
		t.Fatal("enter should focus the transcription box")
	}
	m, _ = m.Update(runes("h"))
	m, _ = m.Update(runes("i"))
	if len(port.edits) != 2 || port.edits[0] != "h" || port.edits[1] != "hi" {
		t.Fatalf("unexpected edits %v", port.edits)
	}
	if m.Workspace().Draft.Transcription != "hi" {
		t.Fatalf("workspace not refreshed from edit, got %+v", m.Workspace().Draft)
	}
}

func TestReportBlockedWhileTranscriptionExists(t *testing.T) {
	t.Parallel()
	ws := loadedWorkspace(2, 1)
	ws.Draft.Transcription = "hello"
	ws.Draft.Report = "noise"
	port := &fakePort{ws: ws}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpOpen, Workspace: ws})
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	drain(cmd)
	if port.reported != 0 || !m.noticeErr {
		t.Fatalf("report must be refused, reported=%d notice=%q", port.reported, m.notice)
	}
}

func TestRejectedEditRollsBackTranscriptionBox(t *testing.T) {
	t.Parallel()
	ws := loadedWorkspace(2, 1)
	ws.Draft.Transcription = "saved"
	port := &fakePort{ws: ws, editErr: apperrors.ErrMutationPending}
	m := New(port, nil)
	m, _ = m.Update(WorkspaceMsg{Op: OpOpen, Workspace: ws})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(runes("x"))
	if got := m.transcript.Value(); got != "saved" {
		t.Fatalf("box should match the draft after a rejected edit, got %q", got)
	}
	if !m.noticeErr || m.notice != "still saving, try again in a moment" {
		t.Fatalf("unexpected notice %q", m.notice)
	}
}
