package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ModelRows holds one model's evaluated rows.
type ModelRows struct {
	Model string
	Rows  []Row
}

// ResultSet maps model names to their rows, keeping the order in which the
// backend listed the models.
type ResultSet []ModelRows

// Models lists model names in order.
func (s ResultSet) Models() []string {
	out := make([]string, 0, len(s))
	for _, entry := range s {
		out = append(out, entry.Model)
	}
	return out
}

// Rows returns the rows for model, or nil when the model is absent.
func (s ResultSet) Rows(model string) []Row {
	for _, entry := range s {
		if entry.Model == model {
			return entry.Rows
		}
	}
	return nil
}

// Len returns the total number of rows across models.
func (s ResultSet) Len() int {
	total := 0
	for _, entry := range s {
		total += len(entry.Rows)
	}
	return total
}

// Single wraps one model's rows as a result set.
func Single(model string, rows []Row) ResultSet {
	return ResultSet{{Model: model, Rows: rows}}
}

// ResultSetFromValue converts a JSON object of model → row list.
// Values that are not arrays contribute no rows; array items that are not
// objects become empty rows.
func ResultSetFromValue(value JSONValue) (ResultSet, error) {
	if value.Kind == JSONNull {
		return ResultSet{}, nil
	}
	if value.Kind != JSONObject {
		return nil, fmt.Errorf("results: expected object, got kind %d", value.Kind)
	}
	out := make(ResultSet, 0, len(value.Keys))
	for _, model := range value.Keys {
		out = append(out, ModelRows{Model: model, Rows: RowsFromValue(value.Object[model])})
	}
	return out, nil
}

// RowsFromValue converts a JSON array into rows.
func RowsFromValue(value JSONValue) []Row {
	items, ok := value.ArrayValue()
	if !ok {
		return nil
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, NewRow(item))
	}
	return rows
}

// UnmarshalJSON decodes a model → rows object preserving model order.
func (s *ResultSet) UnmarshalJSON(data []byte) error {
	var value JSONValue
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	set, err := ResultSetFromValue(value)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// MarshalJSON encodes the set as an ordered JSON object.
func (s ResultSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Model)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		rows := entry.Rows
		if rows == nil {
			rows = []Row{}
		}
		encoded, err := json.Marshal(rows)
		if err != nil {
			return nil, err
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
