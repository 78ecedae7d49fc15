package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func lexiconCmd() *cobra.Command {
	var lf lexiconFlags
	var listPresets bool

	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Print the effective keyword lexicon",
		Long: `Print the merged word -> weight mapping that analyze would use with the same
--preset and --tier flags, followed by its fingerprint. With --presets, list the
dimensions available in presets_csv instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if listPresets {
				presets, err := cfg.Presets()
				if err != nil {
					return err
				}
				if len(presets) == 0 {
					fmt.Fprintln(os.Stderr, "No presets (set presets_csv in the config).")
					return nil
				}
				for _, p := range presets {
					fmt.Printf("%s\tlow %d: %s\tmid %d: %s\thigh %d: %s\n", p.Dimension,
						p.LowWeight, strings.Join(p.LowWords, ","),
						p.MidWeight, strings.Join(p.MidWords, ","),
						p.HighWeight, strings.Join(p.HighWords, ","))
				}
				return nil
			}

			lex, err := lf.build(cfg)
			if err != nil {
				return err
			}
			for _, e := range lex.Entries() {
				fmt.Printf("%s\t%d\n", e.Word, e.Weight)
			}
			fmt.Fprintf(os.Stderr, "%d words, fingerprint %s\n", lex.Len(), lex.Fingerprint())
			return nil
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&listPresets, "presets", false, "List the dimensions of presets_csv")

	return cmd
}
