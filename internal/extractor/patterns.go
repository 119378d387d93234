package extractor

import (
	"regexp"
	"strings"

	"cardscan-go/internal/types"
)

// FieldPattern pairs a field with the expression that proposes it. When the
// expression has a capture group, the first group is the proposed value.
type FieldPattern struct {
	Field   types.FieldKey
	Pattern *regexp.Regexp
}

var streetTypes = []string{
	"Street", "St", "Avenue", "Ave", "Road", "Rd", "Boulevard", "Blvd",
	"Lane", "Ln", "Drive", "Dr",
}

// CompanySuffixes are the organizational keywords that mark a company line.
var CompanySuffixes = []string{
	"Inc", "Ltd", "Limited", "Corporation", "Corp", "LLC", "LLP", "PLC",
	"GmbH", "Pvt", "Company", "Co", "Enterprises", "Group",
	"Technologies", "Solutions", "Labs",
}

// DefaultPatterns is evaluated in this order. Every field gets its own first
// match; nothing short-circuits.
var DefaultPatterns = []FieldPattern{
	{types.FieldPhone, regexp.MustCompile(`\+?\d[\d -]{7,12}\d`)},
	{types.FieldEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}\b`)},
	{types.FieldAddress, regexp.MustCompile(
		`\b\d+(?:[ \t]+[A-Za-z0-9'.#-]+)*?[ \t]+(?i:` + alternation(streetTypes) + `)\b\.?`)},
	{types.FieldName, regexp.MustCompile(`\b[A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*\b`)},
	{types.FieldCompany, companyPattern(CompanySuffixes)},
}

// companyPattern captures a same-line word run ending in suffixes. A suffix
// must stand alone: preceded by line start, blank or comma and followed by
// blank, comma or line end, so "globex.co" and "Co-Founder" do not match.
func companyPattern(suffixes []string) *regexp.Regexp {
	sfx := `(?:` + alternation(suffixes) + `)\.?`
	return regexp.MustCompile(`(?im)(?:^|[ \t,])((?:[A-Za-z0-9&'.-]+,?[ \t]+)*?` +
		sfx + `(?:,?[ \t]+` + sfx + `)*)(?:[ \t,\r]|$)`)
}

func alternation(words []string) string {
	q := make([]string, len(words))
	for i, w := range words {
		q[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(q, "|")
}

// PatternStage applies an ordered pattern set to the whole transcript.
type PatternStage struct {
	patterns []FieldPattern
}

func NewPatternStage(patterns []FieldPattern) *PatternStage {
	if patterns == nil {
		patterns = DefaultPatterns
	}
	return &PatternStage{patterns: patterns}
}

// Candidates returns at most one candidate per pattern: its first match in
// document order.
func (s *PatternStage) Candidates(transcript string) []types.Candidate {
	var out []types.Candidate
	for _, fp := range s.patterns {
		m := fp.Pattern.FindStringSubmatch(transcript)
		if m == nil {
			continue
		}
		v := m[0]
		if len(m) > 1 {
			v = m[1]
		}
		if v == "" {
			continue
		}
		out = append(out, types.Candidate{Field: fp.Field, Value: v, Stage: types.StagePattern})
	}
	return out
}
