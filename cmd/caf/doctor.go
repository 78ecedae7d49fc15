package main

import (
	"fmt"
	"os"

	"github.com/Zuo-Peng/chat-affinity/internal/config"
	"github.com/Zuo-Peng/chat-affinity/internal/index"
	"github.com/Zuo-Peng/chat-affinity/internal/scan"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, export root, lexicon and archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, _ := os.UserHomeDir()
			fmt.Println("=== Config ===")
			cfgPath := config.Path(home)
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Printf("  File: %s (not found, using defaults)\n", cfgPath)
			} else {
				fmt.Printf("  File: %s (OK)\n", cfgPath)
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			fmt.Printf("  Window: %s .. %s\n", cfg.StartDate, cfg.EndDate)

			lex, err := (lexiconFlags{}).build(cfg)
			if err != nil {
				fmt.Printf("  Lexicon error: %v\n", err)
			} else {
				fmt.Printf("  Lexicon: %d words in %d tiers (fingerprint %s)\n", lex.Len(), len(cfg.Tiers), lex.Fingerprint())
			}
			if cfg.PresetsCSV != "" {
				presets, err := cfg.Presets()
				if err != nil {
					fmt.Printf("  Presets: %v\n", err)
				} else {
					fmt.Printf("  Presets: %d dimensions in %s\n", len(presets), cfg.PresetsCSV)
				}
			}

			fmt.Println("\n=== Export root ===")
			checkDir("Root", cfg.ExportRoot)
			files, err := scan.ScanRoot(cfg.ExportRoot)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Exports (*.txt): %d\n", len(files))
			}

			fmt.Println("\n=== Archive ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'caf analyze' or 'caf batch' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			runCount, err := db.RunCount()
			if err != nil {
				return fmt.Errorf("count runs: %w", err)
			}
			rowCount, err := db.RowCount()
			if err != nil {
				return fmt.Errorf("count rows: %w", err)
			}
			fmt.Printf("  Runs: %d\n", runCount)
			fmt.Printf("  Rows: %d\n", rowCount)

			var orphans int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM results WHERE run_id NOT IN (SELECT id FROM runs)").Scan(&orphans)
			if err != nil {
				fmt.Printf("  Integrity error: %v\n", err)
			} else if orphans > 0 {
				fmt.Printf("  Status: %d orphaned rows\n", orphans)
			} else {
				fmt.Println("  Status: OK")
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkDir(name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Printf("  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Printf("  %s: %s (OK)\n", name, path)
	}
}
