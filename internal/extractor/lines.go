package extractor

import "strings"

// Lines splits a transcript into trimmed, non-empty lines.
func Lines(transcript string) []string {
	raw := strings.Split(strings.ReplaceAll(transcript, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}
