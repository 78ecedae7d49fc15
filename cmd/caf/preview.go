package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	"github.com/Zuo-Peng/chat-affinity/internal/render"
	"github.com/Zuo-Peng/chat-affinity/internal/textenc"
	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var wf windowFlags
	var lf lexiconFlags
	var author string
	var context int
	var hitsOnly bool

	cmd := &cobra.Command{
		Use:   "preview <export.txt> --author <id>",
		Short: "Show an author's in-window messages with keywords highlighted",
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
			lex, err := lf.build(cfg)
			if err != nil {
				return err
			}

			text, _, err := textenc.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, _ := render.RenderAuthor(parse.SplitLines(text), author, render.Options{
				Window:  window,
				Lexicon: lex,
				Context: context,
				Width:   termWidth(os.Stdout),
				HitOnly: hitsOnly,
			})
			fmt.Print(out)
			return nil
		},
	}

	wf.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVar(&author, "author", "", "Author id (the number in parentheses)")
	cmd.Flags().IntVar(&context, "context", 50, "Messages to show (-1 = all)")
	cmd.Flags().BoolVar(&hitsOnly, "hits", false, "Only messages containing a keyword")
	cmd.MarkFlagRequired("author")

	return cmd
}
