package extractor

import (
	"fmt"
	"strings"

	"cardscan-go/internal/types"
)

// MergePolicy selects how entity candidates treat phone and email.
type MergePolicy string

const (
	// PolicyOverwrite lets entity spans replace pattern phone/email values;
	// every other field is fill-if-empty.
	PolicyOverwrite MergePolicy = "overwrite"
	// PolicyFill makes every stage fill-if-empty.
	PolicyFill MergePolicy = "fill"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyFill:
		return PolicyFill, nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

func (p MergePolicy) overwrites(c types.Candidate) bool {
	if p == PolicyFill || c.Stage != types.StageEntity {
		return false
	}
	return c.Field == types.FieldPhone || c.Field == types.FieldEmail
}

// Resolve folds candidates, in stage order, into one record. It also reports
// which stage supplied each non-empty field.
func Resolve(policy MergePolicy, candidates []types.Candidate) (types.ContactRecord, map[types.FieldKey]types.Stage) {
	var rec types.ContactRecord
	sources := map[types.FieldKey]types.Stage{}
	for _, c := range candidates {
		if c.Value == "" {
			continue
		}
		if c.Stage == types.StageLine && (c.Field == types.FieldPhone || c.Field == types.FieldEmail) {
			continue
		}
		if rec.Get(c.Field) != "" && !policy.overwrites(c) {
			continue
		}
		rec.Set(c.Field, c.Value)
		sources[c.Field] = c.Stage
	}
	return rec, sources
}
