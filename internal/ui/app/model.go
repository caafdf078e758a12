package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	journaldto "segdesk/internal/modules/journal/dto"
	workflowdto "segdesk/internal/modules/workflow/dto"
	"segdesk/internal/ui/components"
	"segdesk/internal/ui/theme"
	editorview "segdesk/internal/ui/views/editor"
	journalview "segdesk/internal/ui/views/journal"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type workflowPort interface {
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

type journalPort interface {
	List(ctx context.Context, userID string, limit int) ([]journaldto.BatchOutput, error)
	Show(ctx context.Context, id string) (journaldto.BatchDetailOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabEditor tabID = iota
	tabJournal
	tabCount
)

var tabLabels = [tabCount]string{"Editor", "Journal"}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Move    key.Binding
	Jump    key.Binding
	Edit    key.Binding
	Save    key.Binding
	Report  key.Binding
	Finish  key.Binding
	Reload  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Move:    key.NewBinding(key.WithKeys("up", "down", "k", "j"), key.WithHelp("↑/↓", "move")),
		Jump:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "jump in window")),
		Edit:    key.NewBinding(key.WithKeys("enter", "i"), key.WithHelp("enter", "edit")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save and next")),
		Report:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "report")),
		Finish:  key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "finish batch")),
		Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Move, k.Jump, k.Edit},
		{k.Save, k.Report, k.Finish, k.Reload},
		{k.Tab, k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; the editing surface lives in the editor view.
type Model struct {
	editView    editorview.Model
	journalView journalview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(workflow workflowPort, journal journalPort, userID string, emotions []string) Model {
	return Model{
		editView:    editorview.New(workflowPortBridge{p: workflow}, emotions),
		journalView: journalview.New(journalPortBridge{p: journal}, userID),
		activeTab:   tabEditor,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.editView.Init(), m.journalView.Init())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if _, isKey := msg.(tea.KeyMsg); isKey && m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case editorview.WorkspaceMsg, editorview.StartedMsg:
		var cmd tea.Cmd
		m.editView, cmd = m.editView.Update(msg)
		return m, cmd

	case editorview.FinishedMsg:
		m.status = "batch finished"
		return m, m.journalView.Refresh()

	case journalview.BatchesLoadedMsg, journalview.BatchLoadedMsg:
		var cmd tea.Cmd
		m.journalView, cmd = m.journalView.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var eCmd, jCmd tea.Cmd
		m.editView, eCmd = m.editView.Update(msg)
		m.journalView, jCmd = m.journalView.Update(msg)
		return m, tea.Batch(eCmd, jCmd)

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// Yield to the sub-view while it owns the keyboard.
		if m.subViewCapturing() {
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabEditor:
		m.editView, tabCmd = m.editView.Update(msg)
	case tabJournal:
		m.journalView, tabCmd = m.journalView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabEditor:
		return m.editView.View()
	case tabJournal:
		return m.journalView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "segdesk  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	ws := m.editView.Workspace()
	left := m.status
	if ws.UserID != "" {
		where := theme.Hot.Render("● " + ws.UserID)
		if len(ws.Segments) > 0 {
			where += theme.Muted.Render(fmt.Sprintf("  %d/%d", ws.Position, len(ws.Segments)))
		}
		left = where + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "queue:reload":
		m.activeTab = tabEditor
		m.status = "reloading queue"
		return m, m.editView.Reload()

	case "segment:goto":
		if len(parts) < 2 {
			m.status = "usage: segment:goto <id>"
			return m, nil
		}
		id, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || id <= 0 {
			m.status = "invalid segment id"
			return m, nil
		}
		m.activeTab = tabEditor
		return m, m.editView.Goto(id)

	case "batch:finish":
		m.activeTab = tabEditor
		m.editView.RequestFinish()
		return m, nil

	case "journal:refresh":
		m.activeTab = tabJournal
		return m, m.journalView.Refresh()

	case "user:switch":
		if len(parts) < 2 {
			m.status = "usage: user:switch <id>"
			return m, nil
		}
		m.activeTab = tabEditor
		m.status = "switching to " + parts[1]
		return m, tea.Batch(m.editView.SwitchUser(parts[1]), m.journalView.SetUser(parts[1]))

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewCapturing reports whether the active tab is taking free text,
// in which case global key bindings must yield.
func (m Model) subViewCapturing() bool {
	switch m.activeTab {
	case tabEditor:
		return m.editView.Capturing()
	case tabJournal:
		return m.journalView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.editView, _ = m.editView.Update(sz)
	m.journalView, _ = m.journalView.Update(sz)
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view.

type workflowPortBridge struct{ p workflowPort }

func (b workflowPortBridge) Load(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Load(ctx)
}
func (b workflowPortBridge) Reload(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Reload(ctx)
}
func (b workflowPortBridge) SwitchUser(ctx context.Context, userID string) (workflowdto.WorkspaceOutput, error) {
	return b.p.SwitchUser(ctx, userID)
}
func (b workflowPortBridge) Open(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Open(ctx)
}
func (b workflowPortBridge) MoveTo(ctx context.Context, position int) (workflowdto.WorkspaceOutput, error) {
	return b.p.MoveTo(ctx, position)
}
func (b workflowPortBridge) Focus(ctx context.Context, segmentID int64) (workflowdto.WorkspaceOutput, error) {
	return b.p.Focus(ctx, segmentID)
}
func (b workflowPortBridge) Advance(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Advance(ctx)
}
func (b workflowPortBridge) Retreat(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Retreat(ctx)
}
func (b workflowPortBridge) Edit(ctx context.Context, field workflowdto.EditField, value string) (workflowdto.EditOutput, error) {
	return b.p.Edit(ctx, field, value)
}
func (b workflowPortBridge) Start(ctx context.Context, segmentID int64) error {
	return b.p.Start(ctx, segmentID)
}
func (b workflowPortBridge) Commit(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Commit(ctx)
}
func (b workflowPortBridge) Report(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Report(ctx)
}
func (b workflowPortBridge) Finish(ctx context.Context) (workflowdto.WorkspaceOutput, error) {
	return b.p.Finish(ctx)
}
func (b workflowPortBridge) Workspace(ctx context.Context) workflowdto.WorkspaceOutput {
	return b.p.Workspace(ctx)
}

type journalPortBridge struct{ p journalPort }

func (b journalPortBridge) List(ctx context.Context, userID string, limit int) ([]journaldto.BatchOutput, error) {
	return b.p.List(ctx, userID, limit)
}
func (b journalPortBridge) Show(ctx context.Context, id string) (journaldto.BatchDetailOutput, error) {
	return b.p.Show(ctx, id)
}
