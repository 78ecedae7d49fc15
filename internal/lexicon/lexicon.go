package lexicon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Entry is one scored keyword.
type Entry struct {
	Word   string
	Weight int
}

// Tier is a named keyword group sharing a single weight.
type Tier struct {
	Name   string
	Weight int
	Words  []string
}

// NewTier builds a tier from free text (words separated by commas or newlines).
func NewTier(name string, weight int, text string) Tier {
	return Tier{Name: name, Weight: weight, Words: ParseWords(text)}
}

// Lexicon is the merged word -> weight mapping. Iteration follows first
// insertion order; a later Set for an existing word only replaces its weight.
type Lexicon struct {
	entries []Entry
	pos     map[string]int
}

func New() *Lexicon {
	return &Lexicon{pos: make(map[string]int)}
}

// Merge folds tiers into one lexicon. Later tiers overwrite the weight of a
// word already present.
func Merge(tiers ...Tier) *Lexicon {
	lex := New()
	for _, t := range tiers {
		for _, w := range t.Words {
			lex.Set(w, t.Weight)
		}
	}
	return lex
}

// Set adds word or replaces its weight. Empty words are ignored.
func (l *Lexicon) Set(word string, weight int) {
	if word == "" {
		return
	}
	if i, ok := l.pos[word]; ok {
		l.entries[i].Weight = weight
		return
	}
	l.pos[word] = len(l.entries)
	l.entries = append(l.entries, Entry{Word: word, Weight: weight})
}

// Weight returns the weight of word and whether it is present.
func (l *Lexicon) Weight(word string) (int, bool) {
	if l == nil {
		return 0, false
	}
	i, ok := l.pos[word]
	if !ok {
		return 0, false
	}
	return l.entries[i].Weight, true
}

// Entries returns the entries in insertion order. The slice must not be modified.
func (l *Lexicon) Entries() []Entry {
	if l == nil {
		return nil
	}
	return l.entries
}

func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Fingerprint identifies the effective word -> weight mapping regardless of
// insertion order.
func (l *Lexicon) Fingerprint() string {
	sorted := make([]Entry, len(l.Entries()))
	copy(sorted, l.Entries())
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Word < sorted[j].Word })

	h := sha256.New()
	for _, e := range sorted {
		fmt.Fprintf(h, "%s\x00%d\n", e.Word, e.Weight)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

var wordSeparators = strings.NewReplacer("\r\n", ",", "\n", ",", "，", ",")

// ParseWords splits free text on ASCII commas, full-width commas and
// newlines, trimming blanks and dropping empty words.
func ParseWords(text string) []string {
	if text == "" {
		return nil
	}
	var words []string
	for _, w := range strings.Split(wordSeparators.Replace(text), ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// DefaultTiers returns the stock three-tier vocabulary.
func DefaultTiers() []Tier {
	return []Tier{
		NewTier("low", 1, "小姐姐, 妹子, 恋爱, 对象, 结婚"),
		NewTier("mid", 3, "腿, 胸, 白, 颜, 身材, 黑丝, 照"),
		NewTier("high", 5, "冲, 涩, 烧, 硬, 导, 舔, 资源, 本子"),
	}
}
