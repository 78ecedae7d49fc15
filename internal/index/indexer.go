package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	"github.com/Zuo-Peng/chat-affinity/internal/rank"
	"github.com/Zuo-Peng/chat-affinity/internal/scan"
	"github.com/Zuo-Peng/chat-affinity/internal/textenc"
)

type Stats struct {
	Scanned  int
	Analyzed int
	Cached   int
	Empty    int
	Pruned   int
	Errors   int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d analyzed=%d cached=%d empty=%d pruned=%d errors=%d",
		s.Scanned, s.Analyzed, s.Cached, s.Empty, s.Pruned, s.Errors)
}

type Options struct {
	Window        analyze.Window
	Lexicon       *lexicon.Lexicon
	NoCache       bool // always recompute, still archive the result
	Progress      analyze.ProgressFunc
	ProgressEvery int
	Log           *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.Default()
}

// Result is one analyzed (or cache-served) transcript.
type Result struct {
	Run    Run
	Rows   []analyze.Row // ranked
	Cached bool
}

// AnalyzeFile ranks the authors of one transcript. A stored run with the
// same file version, window and lexicon is returned as is unless
// opts.NoCache is set; otherwise the file is decoded, analyzed and archived.
// db may be nil, in which case nothing is cached or stored.
func AnalyzeFile(db *DB, path string, opts Options) (*Result, error) {
	fi, err := scan.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	key := RunKey{
		FilePath:  fi.Path,
		Mtime:     fi.Mtime,
		Size:      fi.Size,
		StartDate: opts.Window.Start.Format(time.DateOnly),
		EndDate:   opts.Window.End.Format(time.DateOnly),
		LexiconFP: opts.Lexicon.Fingerprint(),
	}

	if db != nil && !opts.NoCache {
		run, err := db.FindRun(key)
		if err != nil {
			return nil, fmt.Errorf("find run: %w", err)
		}
		if run != nil {
			rows, err := db.GetRows(run.ID)
			if err != nil {
				return nil, fmt.Errorf("load run %d: %w", run.ID, err)
			}
			opts.logger().Debug("served from archive", "file", fi.Path, "run", run.ID)
			return &Result{Run: *run, Rows: rows, Cached: true}, nil
		}
	}

	text, charset, err := textenc.ReadFile(fi.Path)
	if err != nil {
		return nil, err
	}
	lines := parse.SplitLines(text)
	rows := rank.Rank(analyze.AnalyzeLines(lines, opts.Window, opts.Lexicon, analyze.Options{
		Progress:      opts.Progress,
		ProgressEvery: opts.ProgressEvery,
	}))

	run := Run{
		RunKey:    key,
		Charset:   charset,
		LineCount: len(lines),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		RowCount:  len(rows),
	}
	if db != nil {
		if _, err := db.SaveRun(&run, rows); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}
	opts.logger().Debug("analyzed", "file", fi.Path, "charset", charset, "lines", len(lines), "rows", len(rows))
	return &Result{Run: run, Rows: rows}, nil
}

// AnalyzeAll analyzes every export under root, each file on its own, and
// prunes archived runs whose files have disappeared.
func AnalyzeAll(db *DB, root string, opts Options) ([]*Result, Stats, error) {
	var stats Stats

	files, err := scan.ScanRoot(root)
	if err != nil {
		return nil, stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	var results []*Result
	for _, fi := range files {
		res, err := AnalyzeFile(db, fi.Path, opts)
		if err != nil {
			stats.Errors++
			opts.logger().Warn("analyze failed", "file", fi.Path, "error", err)
			continue
		}
		switch {
		case res.Cached:
			stats.Cached++
		default:
			stats.Analyzed++
		}
		if len(res.Rows) == 0 {
			stats.Empty++
		}
		results = append(results, res)
	}

	if db != nil {
		pruned, err := db.PruneMissing()
		if err != nil {
			return results, stats, fmt.Errorf("prune: %w", err)
		}
		stats.Pruned = pruned
	}
	return results, stats, nil
}
