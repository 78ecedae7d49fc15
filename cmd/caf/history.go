package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/index"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/rank"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(os.Stderr, "No archived runs (run 'caf analyze' first).")
				return nil
			}

			for _, r := range runs {
				missing := ""
				if _, err := os.Stat(r.FilePath); err != nil {
					missing = " (file missing)"
				}
				fmt.Printf("%5d  %s  %s..%s  %4d authors  %-8s %s%s\n",
					r.ID, r.CreatedAt, r.StartDate, r.EndDate, r.RowCount, r.Charset, r.FilePath, missing)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Runs to list (0 = all)")

	return cmd
}

func showCmd() *cobra.Command {
	var lf lexiconFlags
	var plain bool
	var limit, chart int

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the ranking of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("run id %q: not a number", args[0])
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			run, err := db.GetRun(id)
			if err != nil {
				return err
			}
			rows, err := db.GetRows(id)
			if err != nil {
				return fmt.Errorf("load rows: %w", err)
			}

			window, err := analyze.ParseWindow(run.StartDate, run.EndDate)
			if err != nil {
				return fmt.Errorf("run %d window: %w", id, err)
			}

			fmt.Fprintf(os.Stderr, "run #%d: %s, window %s, %s, %d authors\n",
				run.ID, filepath.Base(run.FilePath), window, run.CreatedAt, len(rows))
			if len(rows) == 0 {
				fmt.Fprintln(os.Stderr, noMatches)
				return nil
			}

			// highlight with the current lexicon only if it is the one the run used
			lex, err := lf.build(cfg)
			if err != nil {
				return err
			}
			if lex.Fingerprint() != run.LexiconFP {
				slog.Info("lexicon changed since this run, keyword weights not shown", "run", run.ID)
				lex = hitWords(rows)
			}
			return showRows(cmd.OutOrStdout(), run.FilePath, rank.Top(rows, limit), window, lex, plain, chart)
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "Print a table instead of the interactive browser")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the top N authors (0 = all)")
	cmd.Flags().IntVar(&chart, "chart", defaultChart, "With --plain, bar chart of the top N by index (0 = none)")

	return cmd
}

// hitWords rebuilds a highlight-only lexicon from archived hits. Weights
// are unknown, so every word gets weight 0.
func hitWords(rows []analyze.Row) *lexicon.Lexicon {
	lex := lexicon.New()
	for _, r := range rows {
		for _, h := range r.Hits {
			lex.Set(h.Word, 0)
		}
	}
	return lex
}
