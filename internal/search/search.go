package search

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/index"
)

// Result is one archived row together with the run it came from.
type Result struct {
	RunID     int64
	FilePath  string
	StartDate string
	EndDate   string
	CreatedAt string
	Row       analyze.Row
	Snippet   string // nickname with the match marked
}

type Options struct {
	Query string // nickname substring or exact author id
	Since string // "" = no filter, e.g. "2025-01-01"
	Limit int
}

// markMatch wraps the first case-insensitive occurrence of query in text.
// Candidates are compared rune by rune, so markers never split a rune even
// when case folding changes its byte length.
func markMatch(text, query string) string {
	if query == "" {
		return text
	}
	n := utf8.RuneCountInString(query)
	for i := range text {
		end := i
		for k := 0; k < n && end < len(text); k++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		if strings.EqualFold(text[i:end], query) {
			return text[:i] + ">>>" + text[i:end] + "<<<" + text[end:]
		}
		if end == len(text) {
			break
		}
	}
	return text
}

// escapeLike escapes LIKE wildcards so the query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Search finds archived rows whose nickname contains the query or whose
// author id equals it. Runs are visited newest first and each author is
// reported once per transcript, from its newest run.
func Search(db *index.DB, opts Options) ([]Result, error) {
	q := strings.TrimSpace(opts.Query)
	if q == "" {
		return nil, fmt.Errorf("empty query")
	}
	if opts.Limit <= 0 {
		opts.Limit = 100
	}

	var conditions []string
	var args []interface{}

	// LIKE keeps CJK nicknames searchable without a tokenizer
	conditions = append(conditions, `(x.nickname LIKE ? ESCAPE '\' OR x.author_id = ?)`)
	args = append(args, "%"+escapeLike(q)+"%", q)

	if opts.Since != "" {
		conditions = append(conditions, "r.created_at >= ?")
		args = append(args, opts.Since)
	}

	where := strings.Join(conditions, " AND ")

	query := fmt.Sprintf(`
		SELECT
			%s,
			r.id,
			r.file_path,
			r.start_date,
			r.end_date,
			r.created_at
		FROM results x
		JOIN runs r ON x.run_id = r.id
		WHERE %s
		ORDER BY r.id DESC, x.rank
		LIMIT ?
	`, index.RowColumns("x"), where)

	// fetch extra rows so dedup still fills the limit
	args = append(args, opts.Limit*3)

	rows, err := db.Raw().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var results []Result
	for rows.Next() {
		var res Result
		row, err := index.ScanRow(rows, &res.RunID, &res.FilePath, &res.StartDate, &res.EndDate, &res.CreatedAt)
		if err != nil {
			return nil, err
		}
		key := res.FilePath + "\x00" + row.AuthorID
		if seen[key] {
			continue
		}
		seen[key] = true
		res.Row = row
		res.Snippet = markMatch(row.Nickname, q)
		results = append(results, res)
		if len(results) >= opts.Limit {
			break
		}
	}
	return results, rows.Err()
}
