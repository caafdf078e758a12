package journal

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	journaldto "segdesk/internal/modules/journal/dto"
	"segdesk/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	List(ctx context.Context, userID string, limit int) ([]journaldto.BatchOutput, error)
	Show(ctx context.Context, id string) (journaldto.BatchDetailOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type BatchesLoadedMsg struct {
	Batches []journaldto.BatchOutput
	Err     error
}

type BatchLoadedMsg struct {
	Detail journaldto.BatchDetailOutput
	Err    error
}

// ─── list item ───────────────────────────────────────────────────────────────

type batchItem struct {
	batch journaldto.BatchOutput
}

func (i batchItem) Title() string {
	return fmt.Sprintf("%s  %d/%d done", i.batch.FinishedAt.Local().Format("2006-01-02 15:04"), i.batch.Done, i.batch.Total)
}

func (i batchItem) Description() string {
	return fmt.Sprintf("%s  %d invalid  %s", i.batch.UserID, i.batch.Invalid, humanize.Time(i.batch.FinishedAt))
}

func (i batchItem) FilterValue() string { return i.batch.UserID + " " + i.batch.ID }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	userID   string
	list     list.Model
	preview  viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	loading  bool
	err      error
	width    int
	height   int
}

func New(port Port, userID string) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Finished batches"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(glamour.WithStylePath("dark"), glamour.WithWordWrap(0))

	return Model{
		port:     port,
		userID:   userID,
		list:     l,
		preview:  viewport.New(0, 0),
		spinner:  sp,
		renderer: r,
		loading:  true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadBatchesCmd(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case BatchesLoadedMsg:
		m.loading = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		items := make([]list.Item, len(msg.Batches))
		for i, b := range msg.Batches {
			items[i] = batchItem{batch: b}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Batches) > 0 {
			cmds = append(cmds, m.loadBatchCmd(msg.Batches[0].ID))
		} else {
			m.preview.SetContent(theme.Muted.Render("No finished batches yet"))
		}

	case BatchLoadedMsg:
		if msg.Err != nil {
			m.preview.SetContent(theme.Error.Render("Error: " + msg.Err.Error()))
		} else {
			m.preview.SetContent(m.renderBody(msg.Detail.Body))
			m.preview.GotoTop()
		}

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(batchItem); ok {
				cmds = append(cmds, m.loadBatchCmd(item.batch.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading journal…")
	}
	if m.err != nil {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			theme.Error.Render("Journal unavailable: ")+m.err.Error())
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := theme.Pane.
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Refresh reloads the batch list, typically after a batch was finished.
func (m *Model) Refresh() tea.Cmd {
	m.loading = true
	return tea.Batch(m.loadBatchesCmd(), m.spinner.Tick)
}

// SetUser scopes the list to another reviewer.
func (m *Model) SetUser(userID string) tea.Cmd {
	m.userID = userID
	return m.Refresh()
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(m.preview.Width),
	); err == nil {
		m.renderer = r
	}
}

func (m Model) renderBody(body string) string {
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(body); err == nil {
			return rendered
		}
	}
	return body
}

func (m Model) loadBatchesCmd() tea.Cmd {
	userID := m.userID
	return func() tea.Msg {
		batches, err := m.port.List(context.Background(), userID, 0)
		return BatchesLoadedMsg{Batches: batches, Err: err}
	}
}

func (m Model) loadBatchCmd(id string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.port.Show(context.Background(), id)
		return BatchLoadedMsg{Detail: detail, Err: err}
	}
}
