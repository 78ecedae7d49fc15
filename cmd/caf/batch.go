package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/chat-affinity/internal/index"
	"github.com/Zuo-Peng/chat-affinity/internal/rank"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	"github.com/spf13/cobra"
)

func batchCmd() *cobra.Command {
	var wf windowFlags
	var lf lexiconFlags
	var noCache bool
	var top int

	cmd := &cobra.Command{
		Use:   "batch [dir]",
		Short: "Analyze every export under a directory, each file on its own",
		Long: `Analyze every *.txt export under dir (default: export_root from the config).
Files are never merged: each gets its own ranking and archived run. Runs
whose files have disappeared are pruned from the archive.`,
		Args: cobra.MaximumNArgs(1),
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

			root := cfg.ExportRoot
			if len(args) == 1 {
				root = args[0]
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning %s (window %s)...\n", root, window)

			results, stats, err := index.AnalyzeAll(db, root, index.Options{
				Window:        window,
				Lexicon:       lex,
				NoCache:       noCache,
				ProgressEvery: cfg.ProgressEvery,
				Log:           slog.Default(),
			})
			if err != nil {
				return fmt.Errorf("batch: %w", err)
			}

			width := termWidth(os.Stdout)
			for _, res := range results {
				fmt.Printf("== %s (%d authors, run #%d)\n", filepath.Base(res.Run.FilePath), len(res.Rows), res.Run.ID)
				if len(res.Rows) == 0 {
					fmt.Println("  (no author passed the threshold)")
					fmt.Println()
					continue
				}
				fmt.Print(render.Table(rank.Top(res.Rows, top), width))
				fmt.Println()
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}

	wf.register(cmd)
	lf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Recompute even if an archived run matches")
	cmd.Flags().IntVar(&top, "top", 5, "Authors to print per file (0 = all)")

	return cmd
}
