package tui

import (
	"fmt"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	tea "github.com/charmbracelet/bubbletea"
)

// previewRenderedMsg is sent when an async preview render completes.
type previewRenderedMsg struct {
	key     string
	content string
	hitLine int
}

// breakdown describes how an author's score is made up, one line per
// matched keyword.
func breakdown(r analyze.Row, lex *lexicon.Lexicon) []string {
	nick := r.Nickname
	if nick == "" {
		nick = "(no nickname)"
	}
	lines := []string{
		styleTitle.Render(fmt.Sprintf("#%d %s (%s)", r.Rank, nick, r.AuthorID)),
		fmt.Sprintf("index %s  score %d  messages %d  top %s",
			render.FormatIndex(r.Index), r.Score, r.Messages, styleKeyword.Render(r.TopKeyword)),
	}
	for _, h := range r.Hits {
		w, ok := lex.Weight(h.Word)
		if !ok || w <= 0 {
			lines = append(lines, fmt.Sprintf("  %s ×%d", h.Word, h.Count))
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s ×%d (w%d) = %d", h.Word, h.Count, w, h.Count*w))
	}
	return append(lines, "")
}

// loadPreviewCmd returns a tea.Cmd that renders the author preview async.
func loadPreviewCmd(data Data, r analyze.Row, hitOnly bool, width int) tea.Cmd {
	key := previewCacheKey(r.AuthorID, hitOnly)
	return func() tea.Msg {
		head := breakdown(r, data.Lexicon)
		if data.Lines == nil {
			head = append(head, "(transcript not loaded)")
			return previewRenderedMsg{key: key, content: strings.Join(head, "\n"), hitLine: -1}
		}
		body, hitLine := render.RenderAuthor(data.Lines, r.AuthorID, render.Options{
			Window:  data.Window,
			Lexicon: data.Lexicon,
			Context: -1,
			Width:   width,
			HitOnly: hitOnly,
		})
		if hitLine >= 0 {
			hitLine += len(head)
		}
		return previewRenderedMsg{
			key:     key,
			content: strings.Join(head, "\n") + "\n" + body,
			hitLine: hitLine,
		}
	}
}
