package eval

import (
	"encoding/json"
	"strconv"
)

// Well-known row fields.
const (
	FieldID          = "id"
	FieldQuestion    = "question"
	FieldGroundTruth = "ground_truth"
	FieldContexts    = "contexts"
	FieldAnswer      = "answer"
	FieldUserInput   = "user_input"
	FieldMetrics     = "metrics"
	FieldScores      = "scores"
)

// Row is one evaluated question for one model as returned by the backend.
// Besides the well-known fields it carries an open set of metric keys.
type Row struct {
	value JSONValue
}

// NewRow wraps an object value. Non-object values become an empty row.
func NewRow(value JSONValue) Row {
	if value.Kind != JSONObject {
		return Row{value: JSONValue{Kind: JSONObject, Object: map[string]JSONValue{}}}
	}
	return Row{value: value}
}

// ParseRow decodes a single JSON object into a Row.
func ParseRow(data []byte) (Row, error) {
	value, err := ParseJSONValue(data)
	if err != nil {
		return Row{}, err
	}
	return NewRow(value), nil
}

// Keys returns the row keys in payload order.
func (r Row) Keys() []string {
	return r.value.Keys
}

// Get returns the raw value stored under key.
func (r Row) Get(key string) (JSONValue, bool) {
	return r.value.Field(key)
}

// Has reports whether the row carries key.
func (r Row) Has(key string) bool {
	_, ok := r.value.Field(key)
	return ok
}

// Value returns the row as a JSON object.
func (r Row) Value() JSONValue {
	return r.value
}

// Len returns the number of keys in the row.
func (r Row) Len() int {
	return len(r.value.Keys)
}

// With returns a copy of the row with key set to value. New keys are appended.
func (r Row) With(key string, value JSONValue) Row {
	keys := make([]string, 0, len(r.value.Keys)+1)
	keys = append(keys, r.value.Keys...)
	object := make(map[string]JSONValue, len(r.value.Object)+1)
	for k, v := range r.value.Object {
		object[k] = v
	}
	if _, exists := object[key]; !exists {
		keys = append(keys, key)
	}
	object[key] = value
	return Row{value: JSONValue{Kind: JSONObject, Keys: keys, Object: object}}
}

// ID returns the row identifier; the zero ID when absent.
func (r Row) ID() ID {
	value, ok := r.Get(FieldID)
	if !ok {
		return ID{}
	}
	return IDOf(value)
}

// Question returns the question text.
func (r Row) Question() (string, bool) {
	return r.stringField(FieldQuestion)
}

// GroundTruth returns the reference answer.
func (r Row) GroundTruth() (string, bool) {
	return r.stringField(FieldGroundTruth)
}

// Answer returns the model answer.
func (r Row) Answer() (string, bool) {
	return r.stringField(FieldAnswer)
}

// Contexts returns the retrieved passages. A bare string counts as one passage.
func (r Row) Contexts() ([]string, bool) {
	value, ok := r.Get(FieldContexts)
	if !ok {
		return nil, false
	}
	switch value.Kind {
	case JSONArray:
		out := make([]string, 0, len(value.Array))
		for _, item := range value.Array {
			out = append(out, item.Text())
		}
		return out, true
	case JSONString:
		return []string{value.String}, true
	default:
		return nil, false
	}
}

func (r Row) stringField(key string) (string, bool) {
	value, ok := r.Get(key)
	if !ok || value.Kind == JSONNull {
		return "", false
	}
	return value.Text(), true
}

// UnmarshalJSON decodes a row object.
func (r *Row) UnmarshalJSON(data []byte) error {
	var value JSONValue
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*r = NewRow(value)
	return nil
}

// MarshalJSON encodes the row preserving key order.
func (r Row) MarshalJSON() ([]byte, error) {
	return NewRow(r.value).value.MarshalJSON()
}

// ID identifies a question within one model's results. Numbers and strings
// never compare equal, so 1 and "1" are different ids. The zero ID means absent.
type ID struct {
	kind JSONKind
	text string
	set  bool
}

// IDOf builds an ID from a JSON value.
func IDOf(value JSONValue) ID {
	switch value.Kind {
	case JSONNumber:
		return ID{kind: JSONNumber, text: strconv.FormatFloat(value.Number, 'g', -1, 64), set: true}
	case JSONString:
		return ID{kind: JSONString, text: value.String, set: true}
	case JSONNull:
		return ID{}
	default:
		return ID{kind: value.Kind, text: value.Text(), set: true}
	}
}

// NumberID builds a numeric ID.
func NumberID(n float64) ID {
	return IDOf(NumberValueOf(n))
}

// StringID builds a string ID.
func StringID(s string) ID {
	return IDOf(StringValueOf(s))
}

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return !id.set
}

// String renders the id for display.
func (id ID) String() string {
	return id.text
}

// Number returns the numeric form of the id when it is a number or a numeric string.
func (id ID) Number() (float64, bool) {
	if !id.set {
		return 0, false
	}
	n, err := strconv.ParseFloat(id.text, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Value converts the id back to a JSON value.
func (id ID) Value() JSONValue {
	if !id.set {
		return JSONValue{Kind: JSONNull}
	}
	if id.kind == JSONNumber {
		n, _ := strconv.ParseFloat(id.text, 64)
		return NumberValueOf(n)
	}
	return StringValueOf(id.text)
}

// MarshalJSON encodes the id as its original JSON kind.
func (id ID) MarshalJSON() ([]byte, error) {
	return id.Value().MarshalJSON()
}

// UnmarshalJSON decodes an id written by MarshalJSON.
func (id *ID) UnmarshalJSON(data []byte) error {
	var value JSONValue
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*id = IDOf(value)
	return nil
}
