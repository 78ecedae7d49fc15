package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/config"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/Zuo-Peng/chat-affinity/internal/logging"
	"github.com/Zuo-Peng/chat-affinity/internal/parse"
	"github.com/Zuo-Peng/chat-affinity/internal/textenc"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var logLevel string

// loadConfig reads the config and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	slog.SetDefault(logging.New(level, os.Stderr))
	return cfg, nil
}

type windowFlags struct {
	start, end string
}

func (f *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Window start date, inclusive (YYYY-MM-DD, default from config)")
	cmd.Flags().StringVar(&f.end, "end", "", "Window end date, exclusive (YYYY-MM-DD, default from config)")
}

func (f windowFlags) window(cfg *config.Config) (analyze.Window, error) {
	start, end := cfg.StartDate, cfg.EndDate
	if f.start != "" {
		start = f.start
	}
	if f.end != "" {
		end = f.end
	}
	w, err := analyze.ParseWindow(start, end)
	if err != nil {
		return w, fmt.Errorf("window: %w", err)
	}
	if !w.End.After(w.Start) {
		return w, fmt.Errorf("window: end %s must be after start %s", end, start)
	}
	return w, nil
}

type lexiconFlags struct {
	tiers  []string
	preset string
}

func (f *lexiconFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.tiers, "tier", nil, "Extra tier name:weight:word1,word2 (repeatable, later tiers win)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "Use a dimension from presets_csv instead of the configured tiers")
}

// build merges the configured tiers (or a preset's) with the --tier flags.
func (f lexiconFlags) build(cfg *config.Config) (*lexicon.Lexicon, error) {
	tiers := cfg.LexiconTiers()
	if f.preset != "" {
		presets, err := cfg.Presets()
		if err != nil {
			return nil, err
		}
		p, ok := lexicon.FindPreset(presets, f.preset)
		if !ok {
			return nil, fmt.Errorf("preset %q not found (presets_csv = %q)", f.preset, cfg.PresetsCSV)
		}
		tiers = p.Tiers()
	}
	for _, spec := range f.tiers {
		t, err := lexicon.ParseTierSpec(spec)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	lex := lexicon.Merge(tiers...)
	if lex.Len() == 0 {
		slog.Warn("lexicon is empty, every score will be zero")
	}
	return lex, nil
}

// readLines decodes a transcript for previews. Failures are logged, not
// returned: previews are optional.
func readLines(path string) []string {
	text, _, err := textenc.ReadFile(path)
	if err != nil {
		slog.Warn("transcript not readable", "file", path, "error", err)
		return nil
	}
	return parse.SplitLines(text)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termWidth is the width of w, or 0 when w is not a terminal.
func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// progressBar draws analysis progress on one terminal line.
type progressBar struct {
	w     io.Writer
	label string
	bar   progress.Model
}

func newProgressBar(w io.Writer, label string) *progressBar {
	return &progressBar{
		w:     w,
		label: label,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

func (p *progressBar) update(done, total int) {
	if total == 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s %s %d/%d lines", p.label, p.bar.ViewAs(float64(done)/float64(total)), done, total)
}

func (p *progressBar) finish() {
	fmt.Fprint(p.w, "\r\033[K")
}
