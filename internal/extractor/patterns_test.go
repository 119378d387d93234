package extractor

import (
	"testing"

	"cardscan-go/internal/types"
)

func patternValues(text string) map[types.FieldKey]string {
	out := map[types.FieldKey]string{}
	for _, c := range NewPatternStage(nil).Candidates(text) {
		if _, dup := out[c.Field]; dup {
			panic("duplicate candidate for " + string(c.Field))
		}
		out[c.Field] = c.Value
	}
	return out
}

func TestPatternFields(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		field types.FieldKey
		want  string
	}{
		{"phone with country code", "Tel +91 98450 12345", types.FieldPhone, "+91 98450 12345"},
		{"phone hyphenated", "Phone: 555-123-4567", types.FieldPhone, "555-123-4567"},
		{"short number rejected", "Suite 12345", types.FieldPhone, ""},
		{"first email wins", "a@b.io then c@d.io", types.FieldEmail, "a@b.io"},
		{"address street", "123 Main Street", types.FieldAddress, "123 Main Street"},
		{"address abbreviation", "42 Wallaby Way Rd. Sydney", types.FieldAddress, "42 Wallaby Way Rd."},
		{"address lower street type", "7 elm ave", types.FieldAddress, "7 elm ave"},
		{"address stays on line", "12\nMain Street", types.FieldAddress, ""},
		{"name run", "Mary Ann Smith, PhD", types.FieldName, "Mary Ann Smith"},
		{"name does not span lines", "John Smith\nAcme", types.FieldName, "John Smith"},
		{"company with trailing suffix", "Acme Corp LLC", types.FieldCompany, "Acme Corp LLC"},
		{"company case insensitive", "globex inc.", types.FieldCompany, "globex inc."},
		{"company suffix inside word", "Disco Night", types.FieldCompany, ""},
		{"company not in email domain", "sales@acme.com", types.FieldCompany, ""},
		{"company not in .co domain", "Jane Doe\nCEO\njane@globex.co\nGlobex Ltd", types.FieldCompany, "Globex Ltd"},
		{"company not in hyphenated title", "Jane Doe\nCo-Founder & CEO\nGlobex Ltd", types.FieldCompany, "Globex Ltd"},
		{"company suffix with period at end", "Acme Co.", types.FieldCompany, "Acme Co."},
		{"company comma suffix", "Initech, Inc. HQ", types.FieldCompany, "Initech, Inc."},
		{"company before crlf", "Umbrella Corp\r\nx", types.FieldCompany, "Umbrella Corp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := patternValues(tt.text)[tt.field]
			if got != tt.want {
				t.Fatalf("%s on %q = %q, want %q", tt.field, tt.text, got, tt.want)
			}
		})
	}
}

func TestPatternFieldsIndependent(t *testing.T) {
	// "Acme Group" is both a capitalized run and a company line.
	got := patternValues("Acme Group")
	if got[types.FieldName] != "Acme Group" || got[types.FieldCompany] != "Acme Group" {
		t.Fatalf("overlapping matches not both recorded: %+v", got)
	}
}

func TestDefaultPatternOrder(t *testing.T) {
	want := []types.FieldKey{types.FieldPhone, types.FieldEmail, types.FieldAddress, types.FieldName, types.FieldCompany}
	if len(DefaultPatterns) != len(want) {
		t.Fatalf("unexpected pattern count %d", len(DefaultPatterns))
	}
	for i, fp := range DefaultPatterns {
		if fp.Field != want[i] {
			t.Fatalf("pattern %d field = %s, want %s", i, fp.Field, want[i])
		}
	}
}

func TestLines(t *testing.T) {
	got := Lines("  John Smith \r\n\n\t\nManager  \n")
	if len(got) != 2 || got[0] != "John Smith" || got[1] != "Manager" {
		t.Fatalf("Lines() = %q", got)
	}
	if len(Lines("")) != 0 {
		t.Fatalf("expected no lines for empty transcript")
	}
}
