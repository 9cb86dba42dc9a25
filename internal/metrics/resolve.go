package metrics

import "ragdesk/internal/eval"

// Source names where a resolved metric was found.
type Source int

const (
	SourceNone Source = iota
	SourceExact
	SourceRow
	SourceMetrics
	SourceScores
)

// Resolution describes the outcome of a metric lookup.
type Resolution struct {
	Key    string
	Source Source
	Value  Value
}

// Resolve looks up metric on row and decodes its value.
func Resolve(row eval.Row, metric string) Value {
	return ResolveKey(row, metric).Value
}

// ResolveKey looks up metric on row. An exact key is authoritative even when
// its value is not numeric. Otherwise candidate keys are scanned in order
// (own keys, then the nested metrics object, then the nested scores object)
// and the first normalized match that decodes to a number wins.
//
// The containment rule is a heuristic: a metric literally named "score" can
// match unrelated keys. Callers depend on the current ordering, so it stays.
func ResolveKey(row eval.Row, metric string) Resolution {
	if metric == "" {
		return Resolution{Value: Missing()}
	}
	if raw, ok := row.Get(metric); ok {
		return Resolution{Key: metric, Source: SourceExact, Value: Decode(raw)}
	}
	target := NormalizeKey(metric)
	if res, ok := scanObject(row.Value(), target, SourceRow); ok {
		return res
	}
	for _, nested := range []struct {
		field  string
		source Source
	}{
		{eval.FieldMetrics, SourceMetrics},
		{eval.FieldScores, SourceScores},
	} {
		container, ok := row.Get(nested.field)
		if !ok {
			continue
		}
		if res, ok := scanObject(container, target, nested.source); ok {
			return res
		}
	}
	return Resolution{Value: Missing()}
}

func scanObject(object eval.JSONValue, target string, source Source) (Resolution, bool) {
	if object.Kind != eval.JSONObject {
		return Resolution{}, false
	}
	for _, key := range object.Keys {
		if !keysMatch(NormalizeKey(key), target) {
			continue
		}
		value := Decode(object.Object[key])
		if value.IsMissing() {
			continue
		}
		return Resolution{Key: key, Source: source, Value: value}, true
	}
	return Resolution{}, false
}
