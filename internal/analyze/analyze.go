// Package analyze computes per-author affinity indexes from a chat export.
//
// The transcript is scanned once, top to bottom. Header lines move a small
// state machine between Idle and Tracking(author); body lines are scored
// against the lexicon only while an author is tracked.
package analyze

import (
	"strconv"
	"strings"
	"time"

	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
)

const (
	// MinMessages is the exclusive lower bound on an author's message count
	// for the author to be reported.
	MinMessages = 10

	// NoKeyword is reported as the top keyword of an author without hits.
	NoKeyword = "none"

	DefaultProgressEvery = 5000
)

// Window is the half-open interval [Start, End) of accepted header times.
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow builds a window from two calendar dates, each taken at midnight.
func NewWindow(start, end time.Time) Window {
	return Window{Start: midnight(start), End: midnight(end)}
}

// ParseWindow builds a window from two YYYY-MM-DD dates.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.ParseInLocation(time.DateOnly, start, time.UTC)
	if err != nil {
		return Window{}, err
	}
	e, err := time.ParseInLocation(time.DateOnly, end, time.UTC)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls in [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

func (w Window) String() string {
	return w.Start.Format(time.DateOnly) + ".." + w.End.Format(time.DateOnly)
}

// KeywordHit is how often one keyword matched an author's messages.
type KeywordHit struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Row is one reported author.
type Row struct {
	Rank       int          `json:"rank"`
	Nickname   string       `json:"nickname"`
	AuthorID   string       `json:"author_id"`
	Index      float64      `json:"index"`
	Score      int          `json:"score"`
	Messages   int          `json:"messages"`
	TopKeyword string       `json:"top_keyword"`
	Hits       []KeywordHit `json:"hits,omitempty"` // in first-hit order
	FirstLine  int          `json:"first_line"`     // header line of the first in-window message
}

// ProgressFunc receives the number of processed lines and the total.
type ProgressFunc func(done, total int)

type Options struct {
	Progress      ProgressFunc
	ProgressEvery int // lines between Progress calls, DefaultProgressEvery if <= 0
}

type accumulator struct {
	nickname  string
	messages  int
	score     int
	hits      []KeywordHit
	hitPos    map[string]int
	firstLine int
}

func (a *accumulator) add(word string, count, weight int) {
	a.score += count * weight
	if i, ok := a.hitPos[word]; ok {
		a.hits[i].Count += count
		return
	}
	a.hitPos[word] = len(a.hits)
	a.hits = append(a.hits, KeywordHit{Word: word, Count: count})
}

func (a *accumulator) topKeyword() string {
	top := NoKeyword
	best := 0
	for _, h := range a.hits {
		if h.Count > best {
			top, best = h.Word, h.Count
		}
	}
	return top
}

// Analyze scores text against lex within window and returns the authors
// that pass the reporting threshold, in order of first appearance. Rows are
// unranked; see package rank. Malformed input never aborts the scan.
func Analyze(text string, window Window, lex *lexicon.Lexicon, opts Options) []Row {
	return AnalyzeLines(parse.SplitLines(text), window, lex, opts)
}

// AnalyzeLines is Analyze over pre-split, trimmed lines.
func AnalyzeLines(lines []string, window Window, lex *lexicon.Lexicon, opts Options) []Row {
	every := opts.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}

	authors := make(map[string]*accumulator)
	var order []string
	entries := lex.Entries()
	var st state

	for i, line := range lines {
		if opts.Progress != nil && i%every == 0 {
			opts.Progress(i, len(lines))
		}

		h, status := parse.ParseHeader(line)
		switch status {
		case parse.HeaderOK:
			if !window.Contains(h.Time) {
				st = st.leave()
				continue
			}
			st = st.track(h.AuthorID)
			acc, ok := authors[h.AuthorID]
			if !ok {
				acc = &accumulator{hitPos: make(map[string]int), firstLine: i + 1}
				authors[h.AuthorID] = acc
				order = append(order, h.AuthorID)
			}
			acc.nickname = h.Nickname
			acc.messages++

		case parse.BadTimestamp:
			// no transition

		default:
			if parse.IsSeparator(line) {
				continue
			}
			id, ok := st.author()
			if !ok {
				continue
			}
			acc := authors[id]
			for _, e := range entries {
				if n := strings.Count(line, e.Word); n > 0 {
					acc.add(e.Word, n, e.Weight)
				}
			}
		}
	}
	if opts.Progress != nil {
		opts.Progress(len(lines), len(lines))
	}

	var rows []Row
	for _, id := range order {
		acc := authors[id]
		if acc.score <= 0 || acc.messages <= MinMessages {
			continue
		}
		rows = append(rows, Row{
			Nickname:   acc.nickname,
			AuthorID:   id,
			Index:      AffinityIndex(acc.score, acc.messages),
			Score:      acc.score,
			Messages:   acc.messages,
			TopKeyword: acc.topKeyword(),
			Hits:       acc.hits,
			FirstLine:  acc.firstLine,
		})
	}
	return rows
}

// AffinityIndex is score per message times 100, rounded to two decimals.
// Rounding is done on the exact binary value, so ties go to even
// (1/32*100 = 3.125 becomes 3.12).
func AffinityIndex(score, messages int) float64 {
	if messages <= 0 {
		return 0
	}
	x := float64(score) / float64(messages) * 100
	v, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	return v
}
