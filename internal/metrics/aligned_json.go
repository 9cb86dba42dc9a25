package metrics

import "ragdesk/internal/eval"

// Value renders the aligned row in the backend's shape:
// {id, question, ground_truth, contexts, <model>: {answer, ...metrics}}.
func (r AlignedRow) Value() eval.JSONValue {
	row := eval.NewRow(eval.JSONValue{})
	row = row.With(eval.FieldID, r.ID.Value())
	row = row.With(eval.FieldQuestion, r.Question)
	row = row.With(eval.FieldGroundTruth, r.GroundTruth)
	if r.Contexts.Kind != eval.JSONNull {
		row = row.With(eval.FieldContexts, r.Contexts)
	}
	for _, entry := range r.Entries {
		row = row.With(entry.Model, entry.Value())
	}
	return row.Value()
}

// Value renders the entry with the answer first, followed by the remaining fields.
func (e ModelEntry) Value() eval.JSONValue {
	out := eval.NewRow(eval.JSONValue{}).With(eval.FieldAnswer, e.Answer)
	for _, key := range e.Row.Keys() {
		if key == eval.FieldAnswer {
			continue
		}
		value, _ := e.Row.Get(key)
		out = out.With(key, value)
	}
	return out.Value()
}

// MarshalJSON encodes the aligned row preserving field order.
func (r AlignedRow) MarshalJSON() ([]byte, error) {
	return r.Value().MarshalJSON()
}
