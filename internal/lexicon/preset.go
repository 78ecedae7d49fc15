package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Preset is one analysis dimension: three weighted word tiers under a name.
type Preset struct {
	Dimension  string
	LowWeight  int
	MidWeight  int
	HighWeight int
	LowWords   []string
	MidWords   []string
	HighWords  []string
}

// Tiers returns the preset as low, mid, high tiers in merge order.
func (p Preset) Tiers() []Tier {
	return []Tier{
		{Name: "low", Weight: p.LowWeight, Words: p.LowWords},
		{Name: "mid", Weight: p.MidWeight, Words: p.MidWords},
		{Name: "high", Weight: p.HighWeight, Words: p.HighWords},
	}
}

var presetColumns = []string{
	"dimension", "low_weight", "mid_weight", "high_weight", "low_words", "mid_words", "high_words",
}

var cellSeparators = strings.NewReplacer(";", ",", "；", ",")

// LoadPresetsCSV reads presets from a CSV table whose header names the
// preset columns (any order). Word cells accept the ParseWords separators
// and semicolons.
func LoadPresetsCSV(r io.Reader) ([]Preset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preset header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, name := range presetColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("preset csv: missing column %q", name)
		}
	}

	var presets []Preset
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read preset row %d: %w", line, err)
		}
		cell := func(name string) string {
			if i := col[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		p := Preset{Dimension: cell("dimension")}
		if p.Dimension == "" {
			continue
		}
		weights := []*int{&p.LowWeight, &p.MidWeight, &p.HighWeight}
		for i, name := range []string{"low_weight", "mid_weight", "high_weight"} {
			v, err := strconv.Atoi(cell(name))
			if err != nil || v <= 0 {
				return nil, fmt.Errorf("preset row %d (%s): invalid %s %q", line, p.Dimension, name, cell(name))
			}
			*weights[i] = v
		}
		p.LowWords = ParseWords(cellSeparators.Replace(cell("low_words")))
		p.MidWords = ParseWords(cellSeparators.Replace(cell("mid_words")))
		p.HighWords = ParseWords(cellSeparators.Replace(cell("high_words")))
		presets = append(presets, p)
	}
	return presets, nil
}

// FindPreset returns the preset with the given dimension name.
func FindPreset(presets []Preset, dimension string) (Preset, bool) {
	for _, p := range presets {
		if p.Dimension == dimension {
			return p, true
		}
	}
	return Preset{}, false
}

// ParseTierSpec parses "name:weight:word1,word2" as given on the command line.
func ParseTierSpec(spec string) (Tier, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return Tier{}, fmt.Errorf("tier %q: want name:weight:words", spec)
	}
	weight, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || weight <= 0 {
		return Tier{}, fmt.Errorf("tier %q: weight must be a positive integer", spec)
	}
	return NewTier(strings.TrimSpace(parts[0]), weight, parts[2]), nil
}
