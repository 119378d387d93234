package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardscan-go/internal/types"
)

// ErrModelUnavailable marks a failed entity model call. Extraction returns no
// record when it occurs.
var ErrModelUnavailable = errors.New("entity model unavailable")

// Recognizer produces labeled entity spans for a text, in model order.
// Implementations must be safe for concurrent use.
type Recognizer interface {
	Recognize(ctx context.Context, text string) ([]types.EntitySpan, error)
}

// FieldForLabel maps an entity label onto a record field.
func FieldForLabel(label string) (types.FieldKey, bool) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "PERSON", "PER":
		return types.FieldName, true
	case "ORGANIZATION", "ORG":
		return types.FieldCompany, true
	case "GPE", "LOC", "LOCATION":
		return types.FieldAddress, true
	case "EMAIL":
		return types.FieldEmail, true
	case "PHONE":
		return types.FieldPhone, true
	}
	return "", false
}

// EntityStage turns recognizer spans into candidates.
type EntityStage struct {
	rec Recognizer
}

func NewEntityStage(rec Recognizer) *EntityStage {
	return &EntityStage{rec: rec}
}

// Candidates keeps every mappable span in model order; the resolver decides
// which one survives.
func (s *EntityStage) Candidates(ctx context.Context, transcript string) ([]types.Candidate, error) {
	spans, err := s.rec.Recognize(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	var out []types.Candidate
	for _, sp := range spans {
		field, ok := FieldForLabel(sp.Label)
		if !ok || strings.TrimSpace(sp.Text) == "" {
			continue
		}
		out = append(out, types.Candidate{Field: field, Value: sp.Text, Stage: types.StageEntity})
	}
	return out, nil
}
