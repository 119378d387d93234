package aggregator

import "cardscan-go/internal/types"

// Summary describes a batch run: how many rows failed and how often each
// field came back non-empty.
type Summary struct {
	Rows          int                       `json:"rows"`
	Failed        int                       `json:"failed"`
	FieldCoverage map[types.FieldKey]float64 `json:"field_coverage"`
	FieldCounts   map[types.FieldKey]int     `json:"field_counts"`
}

func Aggregate(results []types.BatchResult) Summary {
	counts := map[types.FieldKey]int{}
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			continue
		}
		for _, k := range types.FieldKeys {
			if r.Record.Get(k) != "" {
				counts[k]++
			}
		}
	}
	ok := len(results) - failed
	coverage := map[types.FieldKey]float64{}
	for _, k := range types.FieldKeys {
		if ok > 0 {
			coverage[k] = float64(counts[k]) / float64(ok)
		} else {
			coverage[k] = 0
		}
	}
	return Summary{Rows: len(results), Failed: failed, FieldCoverage: coverage, FieldCounts: counts}
}

// Weakest returns the field with the lowest coverage, in FieldKeys order on
// ties. Empty when there were no successful rows.
func (s Summary) Weakest() (types.FieldKey, float64) {
	if s.Rows == s.Failed {
		return "", 0
	}
	var worst types.FieldKey
	lowest := 2.0
	for _, k := range types.FieldKeys {
		if v := s.FieldCoverage[k]; v < lowest {
			lowest = v
			worst = k
		}
	}
	return worst, lowest
}
