package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zuo-Peng/chat-affinity/internal/config"
	"github.com/Zuo-Peng/chat-affinity/internal/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowFlags(t *testing.T) {
	cfg := config.Defaults(t.TempDir())

	w, err := (windowFlags{}).window(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01..2026-01-01", w.String())

	w, err = (windowFlags{start: "2025-03-01"}).window(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01..2026-01-01", w.String())

	_, err = (windowFlags{start: "2025-03-01", end: "2025-03-01"}).window(cfg)
	assert.ErrorContains(t, err, "must be after")

	_, err = (windowFlags{end: "March"}).window(cfg)
	assert.Error(t, err)
}

func TestLexiconFlags_Build(t *testing.T) {
	home := t.TempDir()
	cfg := config.Defaults(home)

	lex, err := (lexiconFlags{}).build(cfg)
	require.NoError(t, err)
	assert.Equal(t, lexicon.Merge(lexicon.DefaultTiers()...).Fingerprint(), lex.Fingerprint())

	// --tier entries are merged last and win
	lex, err = (lexiconFlags{tiers: []string{"boost:9:冲,新词"}}).build(cfg)
	require.NoError(t, err)
	w, ok := lex.Weight("冲")
	require.True(t, ok)
	assert.Equal(t, 9, w)
	_, ok = lex.Weight("新词")
	assert.True(t, ok)

	_, err = (lexiconFlags{tiers: []string{"bad"}}).build(cfg)
	assert.Error(t, err)
}

func TestLexiconFlags_Preset(t *testing.T) {
	home := t.TempDir()
	csvPath := filepath.Join(home, "presets.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"dimension,low_weight,mid_weight,high_weight,low_words,mid_words,high_words\n"+
			"game,1,2,4,玩;打,上分,五杀\n"), 0o644))
	cfg := config.Defaults(home)
	cfg.PresetsCSV = csvPath

	lex, err := (lexiconFlags{preset: "game"}).build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, lex.Len())
	w, _ := lex.Weight("五杀")
	assert.Equal(t, 4, w)
	_, ok := lex.Weight("恋爱")
	assert.False(t, ok, "a preset replaces the configured tiers")

	_, err = (lexiconFlags{preset: "missing"}).build(cfg)
	assert.ErrorContains(t, err, "not found")
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newProgressBar(&buf, "group.txt")
	bar.update(0, 0)
	assert.Empty(t, buf.String())

	bar.update(50, 100)
	assert.True(t, strings.HasPrefix(buf.String(), "\rgroup.txt "))
	assert.Contains(t, buf.String(), "50/100 lines")

	buf.Reset()
	bar.finish()
	assert.Equal(t, "\r\033[K", buf.String())
}
