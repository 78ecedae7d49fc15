package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// linesPerItem is the number of terminal lines each author occupies.
const linesPerItem = 2

// renderList renders the left panel: the filtered ranking with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		msg := "No matches"
		if len(m.data.Rows) == 0 {
			msg = "No author passed the threshold"
		}
		return styleEmpty.
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render(msg)
	}

	end := min(len(m.results), m.listOffset+height/linesPerItem)
	lines := make([]string, 0, height)
	for i := m.listOffset; i < end; i++ {
		lines = append(lines, formatRowLine(m.results[i], width, i == m.cursor)...)
	}
	blank := strings.Repeat(" ", width)
	for len(lines) < height {
		lines = append(lines, blank)
	}
	return strings.Join(lines, "\n")
}

// formatRowLine formats one ranked author as two lines:
//
//	line 1: [>] #rank  nickname  index
//	line 2:    id · top keyword · messages (dimmed)
func formatRowLine(r analyze.Row, width int, selected bool) []string {
	rank := styleRank.Render(fmt.Sprintf("#%-3d", r.Rank))
	index := render.FormatIndex(r.Index)

	nick := strings.ReplaceAll(r.Nickname, "\n", " ")
	if nick == "" {
		nick = r.AuthorID
	}
	// prefix (2) + rank (4) + spaces (2) + index
	nickMax := max(0, width-2-4-2-len(index))
	nick = runewidth.FillRight(runewidth.Truncate(nick, nickMax, "…"), nickMax)

	line1 := fmt.Sprintf("%s %s %s", rank, nick, styleIndex.Render(index))
	if selected {
		line1 = styleCursor.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := fmt.Sprintf("%s · %s · %d msgs", r.AuthorID, styleKeyword.Render(r.TopKeyword), r.Messages)
	detailMax := max(0, width-4)
	if lipgloss.Width(detail) > detailMax {
		detail = fmt.Sprintf("%s · %d msgs", r.AuthorID, r.Messages)
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + styleDetail.Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := max(1, listHeight/linesPerItem)
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
