package view

import (
	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// Aligned recomputes the aligned rows of the current snapshot.
func (s State) Aligned() []metrics.AlignedRow {
	if s.Snapshot == nil {
		return []metrics.AlignedRow{}
	}
	return metrics.Align(s.Snapshot.Results)
}

// Averages recomputes per-model averages of the visible metrics.
func (s State) Averages() map[string]map[string]metrics.Average {
	if s.Snapshot == nil {
		return map[string]map[string]metrics.Average{}
	}
	return metrics.PerModelWithCount(s.Snapshot.Results, s.Snapshot.Models, s.ShownMetrics(s.Category))
}

// DiscoverMetrics lists normalized top-level keys that decode to a number in
// at least one row, in first-seen order, skipping the id field.
func DiscoverMetrics(results eval.ResultSet) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, entry := range results {
		for _, row := range entry.Rows {
			for _, key := range row.Keys() {
				if key == eval.FieldID {
					continue
				}
				raw, _ := row.Get(key)
				if metrics.Decode(raw).IsMissing() {
					continue
				}
				normalized := metrics.NormalizeKey(key)
				if normalized == "" {
					continue
				}
				if _, ok := seen[normalized]; ok {
					continue
				}
				seen[normalized] = struct{}{}
				out = append(out, normalized)
			}
		}
	}
	return out
}
