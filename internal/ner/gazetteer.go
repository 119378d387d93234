package ner

import (
	"context"
	"regexp"
	"sort"

	"cardscan-go/internal/types"
)

// DefaultGazetteer is the phrase table used in mock mode.
var DefaultGazetteer = map[string]string{
	"New York":      "GPE",
	"San Francisco": "GPE",
	"London":        "GPE",
	"Berlin":        "GPE",
	"Paris":         "GPE",
	"Tokyo":         "GPE",
	"Sydney":        "GPE",
	"Toronto":       "GPE",
	"Mumbai":        "GPE",
	"Bangalore":     "GPE",
	"Singapore":     "GPE",
}

// Gazetteer labels exact whole-word phrase occurrences. It stands in for a
// statistical model when none is installed.
type Gazetteer struct {
	entries []gazEntry
}

type gazEntry struct {
	label string
	re    *regexp.Regexp
}

func NewGazetteer(phrases map[string]string) *Gazetteer {
	if phrases == nil {
		phrases = DefaultGazetteer
	}
	keys := make([]string, 0, len(phrases))
	for k := range phrases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	g := &Gazetteer{}
	for _, k := range keys {
		g.entries = append(g.entries, gazEntry{
			label: phrases[k],
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
		})
	}
	return g
}

// Recognize returns spans in document order; ties keep phrase order.
func (g *Gazetteer) Recognize(_ context.Context, text string) ([]types.EntitySpan, error) {
	type hit struct {
		pos  int
		span types.EntitySpan
	}
	var hits []hit
	for _, e := range g.entries {
		for _, loc := range e.re.FindAllStringIndex(text, -1) {
			hits = append(hits, hit{loc[0], types.EntitySpan{Label: e.label, Text: text[loc[0]:loc[1]]}})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]types.EntitySpan, len(hits))
	for i, h := range hits {
		out[i] = h.span
	}
	return out, nil
}

func (g *Gazetteer) Close() error { return nil }
