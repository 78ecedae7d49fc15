package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/mattn/go-runewidth"
)

const (
	minNickWidth = 8
	maxNickWidth = 24
	barRune      = "█"
)

// FormatIndex prints an affinity index with its two decimals.
func FormatIndex(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func nickname(r analyze.Row) string {
	if r.Nickname == "" {
		return "(" + r.AuthorID + ")"
	}
	return r.Nickname
}

func cell(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// Table lays out ranked rows as aligned columns. Nicknames are truncated so
// a line fits in width (0 = no limit).
func Table(rows []analyze.Row, width int) string {
	headers := []string{"#", "Nickname", "Index", "Top keyword", "Score", "Msgs", "Author ID"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		c := []string{
			strconv.Itoa(r.Rank),
			nickname(r),
			FormatIndex(r.Index),
			r.TopKeyword,
			strconv.Itoa(r.Score),
			strconv.Itoa(r.Messages),
			r.AuthorID,
		}
		for i, s := range c {
			if w := runewidth.StringWidth(s); w > widths[i] {
				widths[i] = w
			}
		}
		cells = append(cells, c)
	}

	if widths[1] > maxNickWidth {
		widths[1] = maxNickWidth
	}
	if width > 0 {
		total := len(headers) - 1 // column gaps
		for _, w := range widths {
			total += w
		}
		if over := total - width; over > 0 {
			widths[1] = max(minNickWidth, widths[1]-over)
		}
	}

	var b strings.Builder
	writeRow := func(c []string) {
		parts := make([]string, len(c))
		for i, s := range c {
			parts[i] = cell(s, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, " "), " "))
		b.WriteString("\n")
	}
	writeRow(headers)
	for _, c := range cells {
		writeRow(c)
	}
	return b.String()
}

// TopChart draws a horizontal bar per row for the first n rows, scaled to
// the largest index shown.
func TopChart(rows []analyze.Row, n, width int) string {
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	if len(rows) == 0 {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	labelW := 0
	peak := 0.0
	for _, r := range rows {
		labelW = max(labelW, runewidth.StringWidth(nickname(r)))
		peak = max(peak, r.Index)
	}
	labelW = min(labelW, 16)

	// label, space, bar, space, value
	barW := width - labelW - 2 - 10
	if barW < 10 {
		barW = 10
	}

	var b strings.Builder
	for _, r := range rows {
		bar := 0
		if peak > 0 {
			bar = int(r.Index / peak * float64(barW))
		}
		if bar == 0 && r.Index > 0 {
			bar = 1
		}
		fmt.Fprintf(&b, "%s %s %s\n", cell(nickname(r), labelW), strings.Repeat(barRune, bar), FormatIndex(r.Index))
	}
	return b.String()
}

// TSV writes rows tab-separated with a header line, for pipes.
func TSV(w io.Writer, rows []analyze.Row) error {
	clean := strings.NewReplacer("\t", " ", "\n", " ")
	if _, err := fmt.Fprintln(w, "rank\tnickname\tauthor_id\tindex\tscore\tmessages\ttop_keyword"); err != nil {
		return err
	}
	for _, r := range rows {
		_, err := fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Rank, clean.Replace(r.Nickname), r.AuthorID, FormatIndex(r.Index),
			r.Score, r.Messages, clean.Replace(r.TopKeyword))
		if err != nil {
			return err
		}
	}
	return nil
}
