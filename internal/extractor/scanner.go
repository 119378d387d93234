package extractor

import (
	"regexp"
	"sort"

	"cardscan-go/internal/types"
)

// JobTitleKeywords are matched case-insensitively anywhere in a line.
var JobTitleKeywords = []string{
	"General Manager", "Marketing Manager", "Data Manager", "Product Manager",
	"Sales Manager", "Project Manager", "Account Manager",
	"Chief Executive Officer", "Chief Technology Officer", "Vice President",
	"Manager", "Director", "Engineer", "Developer", "Specialist", "Consultant",
	"Analyst", "Architect", "Designer", "Co-Founder", "Founder", "President",
	"Executive", "Coordinator", "Administrator", "Supervisor",
	"CEO", "CTO", "CFO", "COO",
}

var twoWordName = regexp.MustCompile(`^\p{Lu}[\p{L}'.-]*[ \t]+\p{Lu}[\p{L}'.-]*$`)

// LineStage scans normalized lines for job-title keywords and two-word
// capitalized name lines.
type LineStage struct {
	title *regexp.Regexp
}

func NewLineStage(keywords []string) *LineStage {
	if keywords == nil {
		keywords = JobTitleKeywords
	}
	// Longer keywords first so "General Manager" beats "Manager" at the same
	// position.
	kw := append([]string(nil), keywords...)
	sort.SliceStable(kw, func(i, j int) bool { return len(kw[i]) > len(kw[j]) })
	return &LineStage{title: regexp.MustCompile(`(?i)\b(?:` + alternation(kw) + `)\b`)}
}

// Candidates returns the first job-title keyword and the first name-shaped
// line. A line that carries a title keyword is never a name.
func (s *LineStage) Candidates(lines []string) []types.Candidate {
	var title, name string
	for _, l := range lines {
		if title != "" && name != "" {
			break
		}
		if m := s.title.FindString(l); m != "" {
			if title == "" {
				title = m
			}
			continue
		}
		if name == "" && twoWordName.MatchString(l) {
			name = l
		}
	}
	var out []types.Candidate
	if title != "" {
		out = append(out, types.Candidate{Field: types.FieldJobTitle, Value: title, Stage: types.StageLine})
	}
	if name != "" {
		out = append(out, types.Candidate{Field: types.FieldName, Value: name, Stage: types.StageLine})
	}
	return out
}
