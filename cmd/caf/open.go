package main

import (
	"github.com/Zuo-Peng/chat-affinity/internal/open"
	"github.com/spf13/cobra"
)

func openCmd() *cobra.Command {
	var wf windowFlags
	var author string

	cmd := &cobra.Command{
		Use:   "open <export.txt> --author <id>",
		Short: "Open the export in $EDITOR at the author's first in-window message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			window, err := wf.window(cfg)
			if err != nil {
				return err
			}
			return open.OpenAuthor(args[0], author, window)
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&author, "author", "", "Author id to jump to")
	cmd.MarkFlagRequired("author")

	return cmd
}
