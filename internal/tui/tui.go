// Package tui is the interactive browser for one ranking: a filterable
// author list beside a preview of the selected author's score breakdown
// and messages.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Data is what the browser shows: one ranked result and, when the
// transcript is still readable, its lines for the message preview.
type Data struct {
	Title   string
	Rows    []analyze.Row // ranked
	Lines   []string      // nil = breakdown only
	Window  analyze.Window
	Lexicon *lexicon.Lexicon
}

// layout holds the panel sizes for a terminal size.
type layout struct {
	listW, previewW, panelH int
}

func newLayout(width, height int) layout {
	l := layout{listW: 40, previewW: 60, panelH: 20}
	if width > 0 {
		// each panel loses two columns to its border
		l.listW = max(20, width*2/5-2)
		l.previewW = max(20, width-l.listW-4)
	}
	if height > 0 {
		// filter row, status row, two borders
		l.panelH = max(5, height-4)
	}
	return l
}

type mouseRegion int

const (
	regionNone mouseRegion = iota
	regionList
	regionPreview
)

// hit maps a terminal cell to a panel, and for the list to an item index.
func (l layout) hit(x, y, listOffset int) (mouseRegion, int) {
	row := y - 2 // filter row and top border
	if row < 0 || row >= l.panelH {
		return regionNone, -1
	}
	switch {
	case x >= 1 && x <= l.listW:
		return regionList, listOffset + row/linesPerItem
	case x >= l.listW+3:
		return regionPreview, -1
	}
	return regionNone, -1
}

type model struct {
	data    Data
	query   string
	results []analyze.Row // rows matching the filter

	cursor     int
	listOffset int
	hitOnly    bool

	filter     textinput.Model
	preview    viewport.Model
	previewKey string // author id + mode shown in preview
	help       help.Model

	layout   layout
	ready    bool
	quitting bool
	selected *analyze.Row
}

func initialModel(data Data) model {
	ti := textinput.New()
	ti.Placeholder = "nickname or id"
	ti.Prompt = "filter> "
	ti.PromptStyle = styleFilterPrompt
	ti.TextStyle = styleFilterText
	ti.CharLimit = 64
	ti.Focus()

	return model{
		data:    data,
		results: data.Rows,
		filter:  ti,
		preview: viewport.New(0, 0),
		help:    help.New(),
		layout:  newLayout(0, 0),
	}
}

// Run starts the browser and blocks until it exits. If the user selects an
// author, the author id is copied to the clipboard.
func Run(data Data) error {
	final, err := tea.NewProgram(initialModel(data), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	if err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	if m := final.(model); m.selected != nil {
		copyAuthorID(*m.selected)
	}
	return nil
}

// copyAuthorID puts the id on the clipboard, or prints it when no clipboard
// is available.
func copyAuthorID(r analyze.Row) {
	if err := clipboard.WriteAll(r.AuthorID); err != nil {
		fmt.Println(r.AuthorID)
		return
	}
	fmt.Fprintf(os.Stderr, "Copied to clipboard: %s (%s)\n", r.AuthorID, r.Nickname)
}

// filterRows keeps rows whose nickname contains q (case-insensitive) or
// whose author id starts with q. Rank order is preserved.
func filterRows(rows []analyze.Row, q string) []analyze.Row {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return rows
	}
	var out []analyze.Row
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Nickname), q) || strings.HasPrefix(r.AuthorID, q) {
			out = append(out, r)
		}
	}
	return out
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = newLayout(msg.Width, msg.Height)
		m.preview = viewport.New(m.layout.previewW, m.layout.panelH)
		m.help.Width = msg.Width
		m.previewKey = ""
		m.ready = true
		return m, m.loadCurrentPreview()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case previewRenderedMsg:
		if msg.key == m.previewKey || msg.key != m.wantPreviewKey() {
			return m, nil // duplicate or stale
		}
		m.preview.SetContent(msg.content)
		// keep the breakdown in view unless the first hit is below the fold
		if msg.hitLine >= m.layout.panelH {
			m.preview.SetYOffset(msg.hitLine - 1)
		} else {
			m.preview.GotoTop()
		}
		m.previewKey = msg.key
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	half := m.layout.panelH / 2

	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Copy):
		if m.cursor >= len(m.results) {
			return m, nil
		}
		r := m.results[m.cursor]
		m.selected = &r
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		return m, m.moveTo(m.cursor - 1)

	case key.Matches(msg, keys.Down):
		return m, m.moveTo(m.cursor + 1)

	case key.Matches(msg, keys.ScrollUp):
		m.preview.LineUp(half)
		return m, nil

	case key.Matches(msg, keys.Scroll):
		m.preview.LineDown(half)
		return m, nil

	case key.Matches(msg, keys.PageUp):
		m.preview.LineUp(m.layout.panelH)
		return m, nil

	case key.Matches(msg, keys.PageDown):
		m.preview.LineDown(m.layout.panelH)
		return m, nil

	case key.Matches(msg, keys.HitOnly):
		m.hitOnly = !m.hitOnly
		return m, m.loadCurrentPreview()

	case key.Matches(msg, keys.Clear):
		m.filter.SetValue("")
		m.applyFilter("")
		return m, m.loadCurrentPreview()
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if q := m.filter.Value(); q != m.query {
		m.applyFilter(q)
		return m, tea.Batch(cmd, m.loadCurrentPreview())
	}
	return m, cmd
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.ready || len(m.results) == 0 {
		return m, nil
	}
	region, item := m.layout.hit(msg.X, msg.Y, m.listOffset)

	switch region {
	case regionList:
		switch {
		case msg.Button == tea.MouseButtonWheelUp:
			m.listOffset = max(0, m.listOffset-1)
		case msg.Button == tea.MouseButtonWheelDown:
			last := max(0, len(m.results)-m.layout.panelH/linesPerItem)
			m.listOffset = min(last, m.listOffset+1)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
			return m, m.moveTo(item)
		}
	case regionPreview:
		if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// moveTo selects result i and loads its preview.
func (m *model) moveTo(i int) tea.Cmd {
	if i < 0 || i >= len(m.results) || i == m.cursor {
		return nil
	}
	m.cursor = i
	m.adjustListScroll(m.layout.panelH)
	return m.loadCurrentPreview()
}

func (m *model) applyFilter(q string) {
	m.query = q
	m.results = filterRows(m.data.Rows, q)
	m.cursor = 0
	m.listOffset = 0
	if len(m.results) == 0 {
		m.preview.SetContent("")
		m.previewKey = ""
	}
}

func (m model) View() string {
	if m.quitting || !m.ready {
		return ""
	}
	l := m.layout

	top := m.filter.View()
	if m.data.Title != "" {
		top += "  " + styleTitle.Render(m.data.Title)
	}

	list := styleListFrame.Width(l.listW).Height(l.panelH).Render(m.renderList(l.listW, l.panelH))

	m.preview.Width = l.previewW
	m.preview.Height = l.panelH
	preview := stylePreviewFrame.Width(l.previewW).Height(l.panelH).Render(m.preview.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		lipgloss.JoinHorizontal(lipgloss.Top, list, preview),
		m.statusLine(),
	)
}

func (m model) statusLine() string {
	count := fmt.Sprintf("%d/%d authors", len(m.results), len(m.data.Rows))
	if m.hitOnly {
		count += " · hits only"
	}
	return styleStatus.Render(styleDetail.Render(count) + "  " + m.help.ShortHelpView(keys.ShortHelp()))
}

func (m model) wantPreviewKey() string {
	if m.cursor >= len(m.results) {
		return ""
	}
	return previewCacheKey(m.results[m.cursor].AuthorID, m.hitOnly)
}

func (m model) loadCurrentPreview() tea.Cmd {
	want := m.wantPreviewKey()
	if want == "" || want == m.previewKey {
		return nil
	}
	return loadPreviewCmd(m.data, m.results[m.cursor], m.hitOnly, m.layout.previewW)
}

func previewCacheKey(authorID string, hitOnly bool) string {
	return fmt.Sprintf("%s:%t", authorID, hitOnly)
}
