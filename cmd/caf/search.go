package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zuo-Peng/chat-affinity/internal/index"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	"github.com/Zuo-Peng/chat-affinity/internal/search"
	"github.com/spf13/cobra"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var since string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <nickname|author-id>",
		Short: "Find authors across archived runs",
		Long: `Search archived rankings by nickname substring or exact author id.
Each author is reported once per export, from its newest run. Output is TSV:
  runId, createdAt, file, rank, authorId, nickname, index, topKeyword`,
		Args: cobra.ExactArgs(1),
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

			results, err := search.Search(db, search.Options{
				Query: args[0],
				Since: since,
				Limit: limit,
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			color := isTerminal(os.Stdout)
			for _, r := range results {
				nick := strings.ReplaceAll(r.Snippet, "\t", " ")
				created := r.CreatedAt
				if color {
					nick = colorizeSnippet(nick)
					created = sColorDim + created + sColorReset
				} else {
					nick = strings.NewReplacer(">>>", "", "<<<", "").Replace(nick)
				}
				// first field stays plain for 'caf show {1}'
				fmt.Printf("%d\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
					r.RunID,
					created,
					filepath.Base(r.FilePath),
					r.Row.Rank,
					r.Row.AuthorID,
					nick,
					render.FormatIndex(r.Row.Index),
					r.Row.TopKeyword,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only runs created since date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
