package metrics

import "ragdesk/internal/eval"

// ModelEntry is one model's contribution to an aligned row: its answer plus
// every row field with top-level keys normalized.
type ModelEntry struct {
	Model  string
	Answer eval.JSONValue
	Row    eval.Row
}

// HasAnswer reports whether the model row carried an answer.
func (e ModelEntry) HasAnswer() bool {
	return e.Answer.Kind != eval.JSONNull
}

// AlignedRow is one question across all compared models.
type AlignedRow struct {
	ID          eval.ID
	Question    eval.JSONValue
	GroundTruth eval.JSONValue
	Contexts    eval.JSONValue
	Entries     []ModelEntry
}

// Entry returns the entry for model.
func (r AlignedRow) Entry(model string) (ModelEntry, bool) {
	for _, entry := range r.Entries {
		if entry.Model == model {
			return entry, true
		}
	}
	return ModelEntry{}, false
}

// Models lists the models that contributed to the row, in attach order.
func (r AlignedRow) Models() []string {
	out := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		out = append(out, entry.Model)
	}
	return out
}

func (r *AlignedRow) attach(entry ModelEntry) {
	for i := range r.Entries {
		if r.Entries[i].Model == entry.Model {
			r.Entries[i] = entry
			return
		}
	}
	r.Entries = append(r.Entries, entry)
}

// Align merges per-model result rows into one row per question id. Ids are
// ordered by first appearance across models (models in result set order,
// rows in list order). Shared fields come from the first row seen for an id;
// a model repeating an id overwrites its earlier entry.
func Align(results eval.ResultSet) []AlignedRow {
	if len(results) == 0 {
		return []AlignedRow{}
	}
	index := map[eval.ID]int{}
	out := []AlignedRow{}
	for _, entry := range results {
		for _, row := range entry.Rows {
			id := row.ID()
			pos, seen := index[id]
			if !seen {
				pos = len(out)
				index[id] = pos
				out = append(out, AlignedRow{
					ID:          id,
					Question:    field(row, eval.FieldQuestion),
					GroundTruth: field(row, eval.FieldGroundTruth),
					Contexts:    field(row, eval.FieldContexts),
				})
			}
			out[pos].attach(ModelEntry{
				Model:  entry.Model,
				Answer: field(row, eval.FieldAnswer),
				Row:    NormalizeRow(row),
			})
		}
	}
	return out
}

// NormalizeRow rewrites top-level keys with NormalizeKey. When two keys fold
// to the same form the first one in row order wins. Keys that normalize to
// nothing are kept verbatim.
func NormalizeRow(row eval.Row) eval.Row {
	src := row.Value()
	out := eval.JSONValue{Kind: eval.JSONObject, Object: make(map[string]eval.JSONValue, len(src.Keys))}
	for _, key := range src.Keys {
		normalized := NormalizeKey(key)
		if normalized == "" {
			normalized = key
		}
		if _, exists := out.Object[normalized]; exists {
			continue
		}
		out.Keys = append(out.Keys, normalized)
		out.Object[normalized] = src.Object[key]
	}
	return eval.NewRow(out)
}

func field(row eval.Row, key string) eval.JSONValue {
	value, ok := row.Get(key)
	if !ok {
		return eval.JSONValue{Kind: eval.JSONNull}
	}
	return value
}
