package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Zuo-Peng/chat-affinity/internal/analyze"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
)

type TierConfig struct {
	Name   string `toml:"name"`
	Weight int    `toml:"weight"`
	Words  string `toml:"words"` // comma or newline separated
}

type Config struct {
	ExportRoot    string       `toml:"export_root"`
	DBPath        string       `toml:"db_path"`
	StartDate     string       `toml:"start_date"`
	EndDate       string       `toml:"end_date"`
	ProgressEvery int          `toml:"progress_every"`
	PresetsCSV    string       `toml:"presets_csv"`
	LogLevel      string       `toml:"log_level"`
	Tiers         []TierConfig `toml:"tier"`
}

// Path returns the config file location, honoring CAF_CONFIG.
func Path(home string) string {
	if p := os.Getenv("CAF_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home, ".config", "caf", "config.toml")
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(Path(home), home)
}

// LoadFrom reads cfgPath over the defaults. A missing file is not an error.
func LoadFrom(cfgPath, home string) (*Config, error) {
	cfg := Defaults(home)

	if _, err := os.Stat(cfgPath); err == nil {
		// a file that declares tiers replaces the default ones
		cfg.Tiers = nil
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		if len(cfg.Tiers) == 0 {
			cfg.Tiers = defaultTierConfigs()
		}
	}

	// expand ~ in paths
	cfg.ExportRoot = expandHome(cfg.ExportRoot, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.PresetsCSV = expandHome(cfg.PresetsCSV, home)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cfgPath, err)
	}
	return cfg, nil
}

func Defaults(home string) *Config {
	return &Config{
		ExportRoot:    filepath.Join(home, "Documents", "QQ Exports"),
		DBPath:        filepath.Join(home, ".config", "caf", "caf.db"),
		StartDate:     "2025-01-01",
		EndDate:       "2026-01-01",
		ProgressEvery: analyze.DefaultProgressEvery,
		LogLevel:      "info",
		Tiers:         defaultTierConfigs(),
	}
}

func defaultTierConfigs() []TierConfig {
	var out []TierConfig
	for _, t := range lexicon.DefaultTiers() {
		words := ""
		for i, w := range t.Words {
			if i > 0 {
				words += ", "
			}
			words += w
		}
		out = append(out, TierConfig{Name: t.Name, Weight: t.Weight, Words: words})
	}
	return out
}

func (c *Config) Validate() error {
	start, err := time.Parse(time.DateOnly, c.StartDate)
	if err != nil {
		return fmt.Errorf("start_date %q: want YYYY-MM-DD", c.StartDate)
	}
	end, err := time.Parse(time.DateOnly, c.EndDate)
	if err != nil {
		return fmt.Errorf("end_date %q: want YYYY-MM-DD", c.EndDate)
	}
	if !end.After(start) {
		return fmt.Errorf("end_date %s must be after start_date %s", c.EndDate, c.StartDate)
	}
	for _, t := range c.Tiers {
		if t.Weight <= 0 {
			return fmt.Errorf("tier %q: weight must be positive", t.Name)
		}
	}
	return nil
}

// Window returns the configured analysis window.
func (c *Config) Window() (analyze.Window, error) {
	return analyze.ParseWindow(c.StartDate, c.EndDate)
}

// LexiconTiers converts the configured tiers.
func (c *Config) LexiconTiers() []lexicon.Tier {
	tiers := make([]lexicon.Tier, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		tiers = append(tiers, lexicon.NewTier(t.Name, t.Weight, t.Words))
	}
	return tiers
}

// Presets loads the dimension presets table, if one is configured.
func (c *Config) Presets() ([]lexicon.Preset, error) {
	if c.PresetsCSV == "" {
		return nil, nil
	}
	f, err := os.Open(c.PresetsCSV)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()
	return lexicon.LoadPresetsCSV(f)
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
