package render

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	"github.com/mattn/go-runewidth"
)

const (
	colorReset   = "\033[0m"
	colorAuthor  = "\033[1;34m" // bold blue
	colorDim     = "\033[2m"
	colorHit     = "\033[43m"   // yellow background
	colorBoldRed = "\033[1;31m" // bold red for keyword highlights
)

type Options struct {
	Window  analyze.Window
	Lexicon *lexicon.Lexicon
	Context int  // records to show (0 = 50, <0 = all)
	Width   int  // wrap width (0 = no wrap)
	HitOnly bool // skip records without a keyword
}

// highlighter marks lexicon words in text. At each position the longest
// matching word wins, so overlapping words never nest escape codes.
type highlighter struct {
	words []string // longest first
}

func newHighlighter(lex *lexicon.Lexicon) highlighter {
	var words []string
	for _, e := range lex.Entries() {
		words = append(words, e.Word)
	}
	sort.SliceStable(words, func(i, j int) bool { return len(words[i]) > len(words[j]) })
	return highlighter{words: words}
}

func (h highlighter) match(text string) string {
	for _, w := range h.words {
		if strings.HasPrefix(text, w) {
			return w
		}
	}
	return ""
}

// has reports whether any lexicon word occurs in text.
func (h highlighter) has(text string) bool {
	for _, w := range h.words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// highlightKeywords wraps lexicon matches in bold red ANSI codes. Matching
// is case-sensitive, like scoring.
func (h highlighter) highlightKeywords(text string) string {
	if len(h.words) == 0 || !h.has(text) {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if w := h.match(text[i:]); w != "" {
			b.WriteString(colorBoldRed + w + colorReset)
			i += len(w)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// wrapLine breaks a single line into multiple lines that fit within maxWidth
// visible columns, correctly skipping ANSI escape sequences when measuring width.
func wrapLine(line string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{line}
	}

	var result []string
	var cur strings.Builder
	visW := 0

	i := 0
	for i < len(line) {
		// ESC[ ... m
		if i+1 < len(line) && line[i] == '\033' && line[i+1] == '[' {
			j := i + 2
			for j < len(line) && line[j] != 'm' {
				j++
			}
			if j < len(line) {
				j++
			}
			cur.WriteString(line[i:j])
			i = j
			continue
		}

		r, size := utf8.DecodeRuneInString(line[i:])
		rw := runewidth.RuneWidth(r)

		if visW+rw > maxWidth {
			result = append(result, cur.String())
			cur.Reset()
			visW = 0
		}

		cur.WriteRune(r)
		visW += rw
		i += size
	}

	if cur.Len() > 0 {
		result = append(result, cur.String())
	}

	if len(result) == 0 {
		return []string{""}
	}
	return result
}

// AuthorRecords returns the in-window records of one author, in transcript
// order. These are exactly the records whose body lines the analyzer scores.
func AuthorRecords(lines []string, authorID string, window analyze.Window) []parse.Record {
	var out []parse.Record
	for _, rec := range parse.Records(lines) {
		if rec.AuthorID == authorID && window.Contains(rec.Time) {
			out = append(out, rec)
		}
	}
	return out
}

// RenderAuthor renders an author's in-window messages with lexicon words
// highlighted. It returns the content and the 0-based output line of the
// first record containing a keyword (-1 if none).
func RenderAuthor(lines []string, authorID string, opts Options) (string, int) {
	limit := opts.Context
	if limit == 0 {
		limit = 50
	}

	hl := newHighlighter(opts.Lexicon)
	records := AuthorRecords(lines, authorID, opts.Window)
	if len(records) == 0 {
		return fmt.Sprintf("(no messages from %s in %s)\n", authorID, opts.Window), -1
	}

	var b strings.Builder
	hitLine := -1
	lineCount := 0

	writeLine := func(s string) {
		for _, wl := range wrapLine(s, opts.Width) {
			b.WriteString(wl)
			b.WriteString("\n")
			lineCount++
		}
	}

	last := records[len(records)-1]
	writeLine(fmt.Sprintf("%s--- %s (%s) %d messages in %s ---%s",
		colorDim, last.Nickname, authorID, len(records), opts.Window, colorReset))

	shown := 0
	for _, rec := range records {
		if limit > 0 && shown >= limit {
			break
		}
		body := strings.Join(rec.Body, "\n")
		isHit := hl.has(body)
		if opts.HitOnly && !isHit {
			continue
		}
		shown++

		if isHit && hitLine < 0 {
			hitLine = lineCount
		}
		stamp := rec.Time.Format(parse.TimeLayout)
		if isHit {
			writeLine(fmt.Sprintf("%s>> %s %s <<%s %sline %d%s", colorHit, stamp, rec.Nickname, colorReset, colorDim, rec.Line, colorReset))
		} else {
			writeLine(fmt.Sprintf("%s%s%s %s %sline %d%s", colorAuthor, stamp, colorReset, rec.Nickname, colorDim, rec.Line, colorReset))
		}
		for _, l := range rec.Body {
			writeLine("  " + hl.highlightKeywords(l))
		}
		writeLine("")
	}

	if rest := len(records) - shown; rest > 0 && !opts.HitOnly {
		writeLine(fmt.Sprintf("%s... (%d more messages) ...%s", colorDim, rest, colorReset))
	}
	return b.String(), hitLine
}
