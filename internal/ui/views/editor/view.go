package editor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	workflowdto "segdesk/internal/modules/workflow/dto"
	apperrors "segdesk/internal/platform/errors"
	"segdesk/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the slice of the workflow use-case the editor drives.
type Port interface {
	Load(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Reload(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	SwitchUser(ctx context.Context, userID string) (workflowdto.WorkspaceOutput, error)
	Open(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	MoveTo(ctx context.Context, position int) (workflowdto.WorkspaceOutput, error)
	Focus(ctx context.Context, segmentID int64) (workflowdto.WorkspaceOutput, error)
	Advance(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Retreat(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Edit(ctx context.Context, field workflowdto.EditField, value string) (workflowdto.EditOutput, error)
	Start(ctx context.Context, segmentID int64) error
	Commit(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Report(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Finish(ctx context.Context) (workflowdto.WorkspaceOutput, error)
	Workspace(ctx context.Context) workflowdto.WorkspaceOutput
}

// ─── messages ────────────────────────────────────────────────────────────────

type Op string

const (
	OpLoad   Op = "load"
	OpReload Op = "reload"
	OpSwitch Op = "switch"
	OpOpen   Op = "open"
	OpMove   Op = "move"
	OpCommit Op = "commit"
	OpReport Op = "report"
	OpFinish Op = "finish"
	OpEdit   Op = "edit"
)

// WorkspaceMsg carries the workspace after a port call completes.
type WorkspaceMsg struct {
	Op        Op
	Workspace workflowdto.WorkspaceOutput
	Err       error
}

// StartedMsg reports the outcome of marking a segment in progress.
type StartedMsg struct {
	SegmentID int64
	Err       error
}

// FinishedMsg is emitted after a batch was closed so other tabs can refresh.
type FinishedMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

type focus int

const (
	focusList focus = iota
	focusTranscript
	focusEmotion
	focusReport
)

const listWidth = 38

type Model struct {
	port       Port
	ws         workflowdto.WorkspaceOutput
	transcript textarea.Model
	emotion    textinput.Model
	report     textinput.Model
	spinner    spinner.Model
	focus      focus
	loading    bool
	confirm    bool
	notice     string
	noticeErr  bool
	width      int
	height     int
}

func New(port Port, emotions []string) Model {
	ta := textarea.New()
	ta.Placeholder = "Type the transcription…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0

	em := textinput.New()
	em.Placeholder = "emotion"
	em.CharLimit = 32
	em.ShowSuggestions = true
	em.SetSuggestions(emotions)

	rp := textinput.New()
	rp.Placeholder = "reason this audio cannot be transcribed"
	rp.CharLimit = 512

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:       port,
		transcript: ta,
		emotion:    em,
		report:     rp,
		spinner:    sp,
		loading:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.callCmd(OpLoad, m.port.Load), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case WorkspaceMsg:
		return m.applyWorkspace(msg)

	case StartedMsg:
		if msg.Err != nil {
			m.setNotice(fmt.Sprintf("segment %d: %v", msg.SegmentID, msg.Err), true)
			return m, nil
		}
		m.ws = m.port.Workspace(context.Background())
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateField(msg)
}

func (m Model) View() string {
	footer := m.renderFooter()
	bodyH := m.height - lipgloss.Height(footer)
	if bodyH < 3 {
		bodyH = 3
	}

	switch {
	case m.ws.QueueError != "":
		return lipgloss.JoinVertical(lipgloss.Left, m.renderBlocked(bodyH), footer)
	case m.loading && len(m.ws.Segments) == 0:
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.spinner.View()+" Loading segments…"),
			footer)
	case m.ws.Empty:
		msg := theme.Title.Render("No audio assigned to you right now.") + "\n\n" + theme.Muted.Render("r: reload")
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, msg),
			footer)
	}

	listPane := theme.Pane
	if m.focus == focusList {
		listPane = theme.PaneActive
	}
	detailPane := theme.Pane
	if m.focus != focusList {
		detailPane = theme.PaneActive
	}
	detailW := m.width - listWidth - 4
	if detailW < 20 {
		detailW = 20
	}
	left := listPane.Width(listWidth).Height(bodyH - 2).Render(m.renderQueue())
	right := detailPane.Width(detailW).Height(bodyH - 2).Render(m.renderDetail(detailW - 2))
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, left, right), footer)
}

// Capturing reports whether keystrokes belong to an input field or prompt.
// The app model leaves global keys alone while this is true.
func (m Model) Capturing() bool {
	return m.focus != focusList || m.confirm
}

func (m Model) Workspace() workflowdto.WorkspaceOutput { return m.ws }

func (m *Model) Reload() tea.Cmd {
	return m.run(OpReload, m.port.Reload)
}

func (m *Model) Goto(segmentID int64) tea.Cmd {
	return m.run(OpMove, func(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
		return m.port.Focus(ctx, segmentID)
	})
}

func (m *Model) SwitchUser(userID string) tea.Cmd {
	m.leaveField()
	return m.run(OpSwitch, func(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
		return m.port.SwitchUser(ctx, userID)
	})
}

// RequestFinish shows the finish prompt when the cursor is on the last
// segment.
func (m *Model) RequestFinish() {
	if !m.ws.AtEnd {
		m.setNotice("finish is available on the last segment", true)
		return
	}
	m.leaveField()
	m.confirm = true
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) applyWorkspace(msg WorkspaceMsg) (Model, tea.Cmd) {
	m.loading = false
	if errors.Is(msg.Err, apperrors.ErrStaleResponse) {
		return m, nil
	}
	m.ws = msg.Workspace
	if msg.Err != nil {
		m.setNotice(describe(msg.Op, msg.Err), true)
		if msg.Op == OpLoad || msg.Op == OpReload || msg.Op == OpSwitch || msg.Op == OpMove {
			return m, m.openIfNeeded()
		}
		return m, nil
	}

	var cmds []tea.Cmd
	switch msg.Op {
	case OpOpen:
		m.syncFields()
	case OpCommit:
		m.setNotice("saved", false)
	case OpReport:
		m.setNotice("reported", false)
	case OpFinish:
		m.confirm = false
		m.setNotice("batch finished", false)
		cmds = append(cmds, func() tea.Msg { return FinishedMsg{} })
	case OpSwitch:
		m.setNotice("switched to "+m.ws.UserID, false)
	}
	if m.ws.Finished && msg.Op != OpFinish {
		m.leaveField()
		m.confirm = true
	}
	if msg.Op != OpOpen {
		cmds = append(cmds, m.openIfNeeded())
	}
	return m, tea.Batch(cmds...)
}

// openIfNeeded fetches the detail of the segment under the cursor when
// the workspace does not hold one yet.
func (m *Model) openIfNeeded() tea.Cmd {
	if m.ws.QueueError != "" || m.ws.Draft.Loaded {
		return nil
	}
	if _, ok := m.ws.Current(); !ok {
		return nil
	}
	return m.run(OpOpen, m.port.Open)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()

	if m.confirm {
		switch key {
		case "y", "Y", "enter":
			m.confirm = false
			return m, m.run(OpFinish, m.port.Finish)
		case "n", "N", "esc":
			m.confirm = false
			m.setNotice("finish cancelled", false)
		}
		return m, nil
	}

	switch key {
	case "ctrl+s":
		return m, m.commit()
	case "ctrl+r":
		return m, m.submitReport()
	}

	if m.focus != focusList {
		switch key {
		case "esc":
			return m, m.leaveField()
		case "ctrl+e":
			return m, m.cycleField()
		case "enter":
			if m.focus != focusTranscript {
				return m, m.cycleField()
			}
		}
		return m.updateField(msg)
	}

	switch key {
	case "up", "k":
		return m, m.run(OpMove, m.port.Retreat)
	case "down", "j":
		return m, m.run(OpMove, m.port.Advance)
	case "enter", "i":
		if !m.ws.Draft.Loaded {
			m.setNotice("segment is still loading", true)
			return m, nil
		}
		return m, m.focusField(focusTranscript)
	case "r":
		return m, m.Reload()
	case "F":
		m.RequestFinish()
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 {
		pos := m.ws.WindowStart + n
		if pos <= m.ws.WindowEnd {
			return m, m.run(OpMove, func(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
				return m.port.MoveTo(ctx, pos)
			})
		}
	}
	return m, nil
}

func (m Model) updateField(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusTranscript:
		before := m.transcript.Value()
		m.transcript, cmd = m.transcript.Update(msg)
		if after := m.transcript.Value(); after != before {
			return m, tea.Batch(cmd, m.edit(workflowdto.FieldTranscription, after))
		}
	case focusEmotion:
		m.emotion, cmd = m.emotion.Update(msg)
	case focusReport:
		before := m.report.Value()
		m.report, cmd = m.report.Update(msg)
		if after := m.report.Value(); after != before {
			return m, tea.Batch(cmd, m.edit(workflowdto.FieldReport, after))
		}
	}
	return m, cmd
}

// edit applies a field change synchronously so keystrokes keep their order.
// A rejected change rolls the boxes back to the draft.
func (m *Model) edit(field workflowdto.EditField, value string) tea.Cmd {
	out, err := m.port.Edit(context.Background(), field, value)
	if err != nil {
		m.syncFields()
		m.setNotice(describe(OpEdit, err), true)
		return nil
	}
	m.ws = out.Workspace
	if out.StartSegmentID == 0 {
		return nil
	}
	id := out.StartSegmentID
	return func() tea.Msg {
		return StartedMsg{SegmentID: id, Err: m.port.Start(context.Background(), id)}
	}
}

// applyEmotion commits the emotion box on leaving it. Unknown values are
// rejected and the box falls back to the draft.
func (m *Model) applyEmotion() tea.Cmd {
	value := strings.TrimSpace(m.emotion.Value())
	if value == m.ws.Draft.Emotion {
		return nil
	}
	cmd := m.edit(workflowdto.FieldEmotion, value)
	m.emotion.SetValue(m.ws.Draft.Emotion)
	return cmd
}

func (m *Model) focusField(f focus) tea.Cmd {
	m.transcript.Blur()
	m.emotion.Blur()
	m.report.Blur()
	m.focus = f
	switch f {
	case focusTranscript:
		return m.transcript.Focus()
	case focusEmotion:
		return m.emotion.Focus()
	case focusReport:
		return m.report.Focus()
	}
	return nil
}

func (m *Model) leaveField() tea.Cmd {
	var cmd tea.Cmd
	if m.focus == focusEmotion {
		cmd = m.applyEmotion()
	}
	m.focusField(focusList)
	return cmd
}

func (m *Model) cycleField() tea.Cmd {
	var cmd tea.Cmd
	if m.focus == focusEmotion {
		cmd = m.applyEmotion()
	}
	next := focusTranscript
	switch m.focus {
	case focusTranscript:
		next = focusEmotion
	case focusEmotion:
		next = focusReport
		if !m.ws.Draft.ReportEnabled {
			next = focusTranscript
		}
	}
	return tea.Batch(cmd, m.focusField(next))
}

func (m *Model) commit() tea.Cmd {
	start := m.leaveField()
	if !m.ws.Draft.Loaded {
		return start
	}
	if !m.ws.Draft.CanCommit {
		m.setNotice(apperrors.ErrEmptyDraft.Error(), true)
		return start
	}
	return tea.Batch(start, m.run(OpCommit, m.port.Commit))
}

func (m *Model) submitReport() tea.Cmd {
	start := m.leaveField()
	if !m.ws.Draft.Loaded {
		return start
	}
	if !m.ws.Draft.ReportEnabled {
		m.setNotice(apperrors.ErrReportConflict.Error(), true)
		return start
	}
	if strings.TrimSpace(m.ws.Draft.Report) == "" {
		m.setNotice("type a report first", true)
		return start
	}
	return tea.Batch(start, m.run(OpReport, m.port.Report))
}

func (m *Model) syncFields() {
	m.transcript.SetValue(m.ws.Draft.Transcription)
	m.emotion.SetValue(m.ws.Draft.Emotion)
	m.report.SetValue(m.ws.Draft.Report)
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) resize() {
	w := m.width - listWidth - 8
	if w < 16 {
		w = 16
	}
	h := m.height / 3
	if h < 3 {
		h = 3
	}
	m.transcript.SetWidth(w)
	m.transcript.SetHeight(h)
	m.emotion.Width = w - 10
	m.report.Width = w - 10
}

func (m *Model) run(op Op, call func(context.Context) (workflowdto.WorkspaceOutput, error)) tea.Cmd {
	m.loading = true
	return tea.Batch(m.callCmd(op, call), m.spinner.Tick)
}

func (m Model) callCmd(op Op, call func(context.Context) (workflowdto.WorkspaceOutput, error)) tea.Cmd {
	return func() tea.Msg {
		ws, err := call(context.Background())
		return WorkspaceMsg{Op: op, Workspace: ws, Err: err}
	}
}

func describe(op Op, err error) string {
	switch {
	case errors.Is(err, apperrors.ErrMutationPending):
		return "still saving, try again in a moment"
	case errors.Is(err, apperrors.ErrEmptyQueue):
		return "no segments assigned"
	}
	return fmt.Sprintf("%s: %v", op, err)
}

func (m Model) renderBlocked(h int) string {
	msg := theme.Error.Render("Segment queue unavailable") + "\n\n" +
		m.ws.QueueError + "\n\n" +
		theme.Muted.Render("r: retry   :: palette")
	return lipgloss.Place(m.width, h, lipgloss.Center, lipgloss.Center, msg)
}

func (m Model) renderQueue() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Queue"))
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("  %d/%d", m.ws.Position, len(m.ws.Segments))) + "\n\n")
	for i, seg := range m.ws.Visible() {
		marker := "  "
		if seg.Current {
			marker = theme.Hot.Render("▸ ")
		}
		line := fmt.Sprintf("%s%d  #%d %s", marker, i+1, seg.ID, truncate(seg.AudioName, 14))
		sb.WriteString(line + "  " + theme.Status(seg.Status, seg.StatusLabel) + "\n")
	}
	if m.ws.WindowStart > 0 {
		sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("%d earlier", m.ws.WindowStart)))
	}
	if rest := len(m.ws.Segments) - m.ws.WindowEnd; rest > 0 {
		sb.WriteString("\n" + theme.Muted.Render(fmt.Sprintf("%d more", rest)))
	}
	return sb.String()
}

func (m Model) renderDetail(width int) string {
	cur, ok := m.ws.Current()
	if !ok {
		return theme.Muted.Render("No segment selected")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Segment %d", cur.ID)))
	sb.WriteString("  " + theme.Muted.Render(cur.AudioName) + "  " + theme.Status(cur.Status, cur.StatusLabel) + "\n")
	sb.WriteString(theme.Muted.Render("audio: ") + cur.FilePath + "\n")
	if cur.TranscribeOption != "" {
		sb.WriteString(theme.Muted.Render("hint:  ") + cur.TranscribeOption + "\n")
	}
	sb.WriteString("\n")

	if m.ws.DetailError != "" {
		sb.WriteString(theme.Error.Render("Could not load segment: ") + m.ws.DetailError + "\n")
		sb.WriteString(theme.Muted.Render("r: reload"))
		return sb.String()
	}
	if !m.ws.Draft.Loaded {
		sb.WriteString(m.spinner.View() + " Loading segment…")
		return sb.String()
	}
	if ai := m.ws.Detail.AIText; ai != "" {
		sb.WriteString(theme.Muted.Render("AI suggestion") + "\n")
		sb.WriteString(lipgloss.NewStyle().Width(width).Foreground(theme.Subtext0).Render(ai) + "\n\n")
	}

	sb.WriteString(label("Transcription", m.focus == focusTranscript) + "\n")
	sb.WriteString(m.transcript.View() + "\n\n")
	sb.WriteString(label("Emotion ", m.focus == focusEmotion) + m.emotion.View() + "\n")
	if m.ws.Draft.ReportEnabled {
		sb.WriteString(label("Report  ", m.focus == focusReport) + m.report.View() + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("Report   disabled while a transcription exists") + "\n")
	}
	return sb.String()
}

func (m Model) renderFooter() string {
	if m.confirm {
		return theme.Hot.Render("Finish this batch and load the next one? (y/n)")
	}
	var parts []string
	if m.loading || m.ws.Pending {
		parts = append(parts, m.spinner.View())
	}
	if m.notice != "" {
		if m.noticeErr {
			parts = append(parts, theme.Error.Render(m.notice))
		} else {
			parts = append(parts, theme.Muted.Render(m.notice))
		}
	}
	help := "↑/↓ move  1-9 jump  enter edit  ctrl+s save  ctrl+r report  r reload"
	if m.focus != focusList {
		help = "esc list  ctrl+e next field  ctrl+s save+next  ctrl+r report"
	}
	if m.ws.AtEnd {
		help += "  F finish"
	}
	parts = append(parts, theme.Muted.Render(help))
	return strings.Join(parts, "  ")
}

func label(text string, active bool) string {
	if active {
		return theme.Hot.Render(text)
	}
	return theme.Muted.Render(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
