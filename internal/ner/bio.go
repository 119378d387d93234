package ner

import (
	"strings"
	"unicode/utf8"

	"cardscan-go/internal/types"
)

// Token is one classified model token with its offsets into the source text.
type Token struct {
	Tag     string
	Start   int
	End     int
	Special bool
}

// DecodeBIO merges consecutive B-/I- tagged tokens into entity spans. Span
// text is the literal slice of text between the first token's start and the
// last token's end, both byte offsets. A bare tag without prefix continues a run of the same
// type.
func DecodeBIO(text string, tokens []Token) []types.EntitySpan {
	var (
		out        []types.EntitySpan
		label      string
		start, end int
	)
	flush := func() {
		if label != "" && end > start {
			if s := sliceText(text, start, end); strings.TrimSpace(s) != "" {
				out = append(out, types.EntitySpan{Label: label, Text: s})
			}
		}
		label = ""
	}
	for _, tok := range tokens {
		if tok.Special || tok.End <= tok.Start {
			continue
		}
		prefix, typ := splitTag(tok.Tag)
		switch {
		case typ == "":
			flush()
		case prefix == "B" || typ != label:
			flush()
			label, start, end = typ, tok.Start, tok.End
		default:
			end = tok.End
		}
	}
	flush()
	return out
}

func splitTag(tag string) (string, string) {
	if tag == "" || tag == "O" {
		return "", ""
	}
	if len(tag) > 2 && tag[1] == '-' {
		return tag[:1], tag[2:]
	}
	return "", tag
}

// sliceText cuts text at byte offsets, which is what the tokenizer reports.
// Offsets outside text or inside a multi-byte character yield "".
func sliceText(text string, start, end int) string {
	if start < 0 || end > len(text) || start >= end {
		return ""
	}
	if !utf8.RuneStart(text[start]) || (end < len(text) && !utf8.RuneStart(text[end])) {
		return ""
	}
	return text[start:end]
}
