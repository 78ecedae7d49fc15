package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/index"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/rank"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	"github.com/Zuo-Peng/chat-affinity/internal/tui"
	"github.com/spf13/cobra"
)

const noMatches = "No author passed the threshold (score > 0 and more than 10 messages in the window)."

// defaultChart is how many authors the --plain bar chart shows.
const defaultChart = 10

func analyzeCmd() *cobra.Command {
	var wf windowFlags
	var lf lexiconFlags
	var noCache, noArchive, plain bool
	var limit, chart int

	cmd := &cobra.Command{
		Use:   "analyze <export.txt>",
		Short: "Rank the authors of one chat export by affinity index",
		Long: `Decode a chat export (UTF-8, GB18030 or Big5), score every author's in-window
messages against the keyword lexicon and print the ranking.

Output is an interactive browser when stdout is a terminal, an aligned table
followed by a top-10 bar chart with --plain, and TSV when piped:
  rank, nickname, author_id, index, score, messages, top_keyword

Results are archived; an unchanged file with the same window and lexicon is
served from the archive unless --no-cache is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			window, err := wf.window(cfg)
			if err != nil {
				return err
			}
			lex, err := lf.build(cfg)
			if err != nil {
				return err
			}

			var db *index.DB
			if !noArchive {
				db, err = index.OpenDB(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()
			}

			opts := index.Options{
				Window:        window,
				Lexicon:       lex,
				NoCache:       noCache,
				ProgressEvery: cfg.ProgressEvery,
				Log:           slog.Default(),
			}
			stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
			var bar *progressBar
			if isTerminal(stderr) {
				bar = newProgressBar(stderr, filepath.Base(args[0]))
				opts.Progress = bar.update
			}

			res, err := index.AnalyzeFile(db, args[0], opts)
			if bar != nil {
				bar.finish()
			}
			if err != nil {
				return err
			}
			printRunBanner(stderr, res, window)

			if len(res.Rows) == 0 {
				fmt.Fprintln(stderr, noMatches)
				return nil
			}
			return showRows(stdout, res.Run.FilePath, rank.Top(res.Rows, limit), window, lex, plain, chart)
		},
	}

	wf.register(cmd)
	lf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute even if an archived run matches")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not read or write the run archive")
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a table instead of the interactive browser")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the top N authors (0 = all)")
	cmd.Flags().IntVar(&chart, "chart", defaultChart, "With --plain, bar chart of the top N by index (0 = none)")

	return cmd
}

func printRunBanner(w io.Writer, res *index.Result, window analyze.Window) {
	src := "analyzed"
	if res.Cached {
		src = "archived"
	}
	run := res.Run
	if run.ID > 0 {
		src = fmt.Sprintf("%s, run #%d", src, run.ID)
	}
	charset := run.Charset
	if charset == "" {
		charset = "?"
	}
	fmt.Fprintf(w, "%s: %d lines, %s, window %s, %d authors (%s)\n",
		filepath.Base(run.FilePath), run.LineCount, charset, window, len(res.Rows), src)
}

// showRows presents ranked rows on out: a table with --plain, TSV when out
// is not a terminal, the browser otherwise.
func showRows(out io.Writer, path string, rows []analyze.Row, window analyze.Window, lex *lexicon.Lexicon, plain bool, chart int) error {
	if plain {
		printPlain(out, rows, termWidth(out), chart)
		return nil
	}
	if !isTerminal(out) {
		return render.TSV(out, rows)
	}
	return tui.Run(tui.Data{
		Title:   fmt.Sprintf("%s  %s", filepath.Base(path), window),
		Rows:    rows,
		Lines:   readLines(path),
		Window:  window,
		Lexicon: lex,
	})
}

func printPlain(out io.Writer, rows []analyze.Row, width, chart int) {
	fmt.Fprint(out, render.Table(rows, width))
	if chart > 0 {
		fmt.Fprintf(out, "\nTop %d by index\n", min(chart, len(rows)))
		fmt.Fprint(out, render.TopChart(rows, chart, width))
	}
}
