package tui

import (
	"strings"
	"testing"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(t *testing.T) Data {
	t.Helper()
	w, err := analyze.ParseWindow("2025-03-01", "2025-04-01")
	require.NoError(t, err)
	return Data{
		Title: "group.txt",
		Rows: []analyze.Row{
			{Rank: 1, Nickname: "Alice", AuthorID: "111", Index: 90.91, Score: 10, Messages: 11, TopKeyword: "冲",
				Hits: []analyze.KeywordHit{{Word: "冲", Count: 2}}},
			{Rank: 2, Nickname: "鲍勃", AuthorID: "222", Index: 9.09, Score: 1, Messages: 11, TopKeyword: "恋爱",
				Hits: []analyze.KeywordHit{{Word: "恋爱", Count: 1}}},
		},
		Lines: parse.SplitLines("2025-03-01 10:00:00 Alice(111)\n冲冲\n2025-03-02 10:00:00 鲍勃(222)\n恋爱\n"),
		Window:  w,
		Lexicon: lexicon.Merge(lexicon.NewTier("low", 1, "恋爱"), lexicon.NewTier("high", 5, "冲")),
	}
}

func sized(t *testing.T, m model) model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(model)
}

func TestFilterRows(t *testing.T) {
	rows := testData(t).Rows
	assert.Len(t, filterRows(rows, ""), 2)
	assert.Equal(t, "111", filterRows(rows, "ALI")[0].AuthorID)
	assert.Equal(t, "222", filterRows(rows, "鲍")[0].AuthorID)
	assert.Equal(t, "222", filterRows(rows, "22")[0].AuthorID)
	assert.Empty(t, filterRows(rows, "333"))
}

func TestModel_NavigateAndSelect(t *testing.T) {
	m := sized(t, initialModel(testData(t)))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor)
	assert.NotNil(t, cmd, "moving loads a preview")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(model)
	assert.Equal(t, 1, m.cursor, "cursor stops at the last row")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	require.NotNil(t, m.selected)
	assert.Equal(t, "222", m.selected.AuthorID)
	assert.True(t, m.quitting)
	assert.NotNil(t, cmd)
}

func TestModel_Filter(t *testing.T) {
	m := sized(t, initialModel(testData(t)))

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bob")})
	m = next.(model)
	assert.Empty(t, m.results)
	assert.Contains(t, m.View(), "No matches")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(model)
	assert.Len(t, m.results, 2)
	assert.Equal(t, "", m.filter.Value())

	// Enter with nothing to select keeps the browser open
	m.results = nil
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, next.(model).selected)
}

func TestModel_PreviewStaleIgnored(t *testing.T) {
	m := sized(t, initialModel(testData(t)))

	next, _ := m.Update(previewRenderedMsg{key: previewCacheKey("222", false), content: "stale"})
	m = next.(model)
	assert.Empty(t, m.previewKey)

	next, _ = m.Update(previewRenderedMsg{key: previewCacheKey("111", false), content: "fresh"})
	m = next.(model)
	assert.Equal(t, previewCacheKey("111", false), m.previewKey)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(model)
	assert.True(t, m.hitOnly)
	assert.NotNil(t, cmd, "toggling reloads the preview")
}

func TestLoadPreviewCmd(t *testing.T) {
	data := testData(t)
	msg := loadPreviewCmd(data, data.Rows[0], false, 60)().(previewRenderedMsg)

	assert.Equal(t, previewCacheKey("111", false), msg.key)
	assert.Contains(t, msg.content, "(111)")
	assert.Contains(t, msg.content, "冲 ×2 (w5) = 10")
	assert.NotContains(t, msg.content, "恋爱\n")
	lines := strings.Split(msg.content, "\n")
	require.Greater(t, msg.hitLine, 0)
	assert.Contains(t, lines[msg.hitLine], "Alice")

	data.Lines = nil
	msg = loadPreviewCmd(data, data.Rows[1], false, 60)().(previewRenderedMsg)
	assert.Contains(t, msg.content, "transcript not loaded")
	assert.Equal(t, -1, msg.hitLine)
}

func TestFormatRowLine(t *testing.T) {
	r := analyze.Row{Rank: 3, Nickname: strings.Repeat("很长", 20), AuthorID: "42", Index: 123.4, Messages: 12, TopKeyword: "冲"}
	lines := formatRowLine(r, 40, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "123.40")
	assert.Contains(t, lines[0], "…")
	assert.Contains(t, lines[1], "42")
	assert.LessOrEqual(t, runewidth.StringWidth(stripANSI(lines[0])), 40)
}

func stripANSI(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' {
			for i < len(s) && s[i] != 'm' {
				i++
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
