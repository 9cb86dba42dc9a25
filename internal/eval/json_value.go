package eval

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// JSONKind identifies the concrete type stored in a JSONValue.
type JSONKind int

const (
	JSONNull JSONKind = iota
	JSONString
	JSONNumber
	JSONBool
	JSONObject
	JSONArray
)

// JSONValue represents an arbitrary JSON value without using empty interfaces.
// Objects remember the order their keys appeared in the payload.
type JSONValue struct {
	Kind   JSONKind
	String string
	Number float64
	Bool   bool
	Keys   []string
	Object map[string]JSONValue
	Array  []JSONValue
}

// StringValueOf builds a string value.
func StringValueOf(s string) JSONValue {
	return JSONValue{Kind: JSONString, String: s}
}

// NumberValueOf builds a numeric value.
func NumberValueOf(n float64) JSONValue {
	return JSONValue{Kind: JSONNumber, Number: n}
}

// ParseJSONValue decodes a single JSON document.
func ParseJSONValue(data []byte) (JSONValue, error) {
	var v JSONValue
	if err := json.Unmarshal(data, &v); err != nil {
		return JSONValue{}, err
	}
	return v, nil
}

// UnmarshalJSON decodes a JSON value into the typed JSONValue representation.
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("empty json value")
	}
	switch trimmed[0] {
	case '{':
		return v.unmarshalObject(trimmed)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*v = JSONValue{Kind: JSONArray, Array: make([]JSONValue, 0, len(raw))}
		for _, value := range raw {
			var child JSONValue
			if err := json.Unmarshal(value, &child); err != nil {
				return err
			}
			v.Array = append(v.Array, child)
		}
		return nil
	case '"':
		var value string
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*v = JSONValue{Kind: JSONString, String: value}
		return nil
	case 't', 'f':
		var value bool
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*v = JSONValue{Kind: JSONBool, Bool: value}
		return nil
	case 'n':
		if string(trimmed) != "null" {
			return fmt.Errorf("invalid json literal")
		}
		*v = JSONValue{Kind: JSONNull}
		return nil
	default:
		var value float64
		if err := json.Unmarshal(trimmed, &value); err != nil {
			return err
		}
		*v = JSONValue{Kind: JSONNumber, Number: value}
		return nil
	}
}

// unmarshalObject walks object tokens so key order survives decoding.
// A repeated key keeps its first position and its last value.
func (v *JSONValue) unmarshalObject(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	if _, err := decoder.Token(); err != nil {
		return err
	}
	out := JSONValue{Kind: JSONObject, Object: map[string]JSONValue{}}
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("invalid object key %v", token)
		}
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return err
		}
		var child JSONValue
		if err := json.Unmarshal(raw, &child); err != nil {
			return err
		}
		if _, exists := out.Object[key]; !exists {
			out.Keys = append(out.Keys, key)
		}
		out.Object[key] = child
	}
	if _, err := decoder.Token(); err != nil {
		return err
	}
	if _, err := decoder.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after object")
	}
	*v = out
	return nil
}

// MarshalJSON encodes the value, writing object keys in their recorded order.
func (v JSONValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v JSONValue) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind {
	case JSONObject:
		buf.WriteByte('{')
		for i, key := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodedKey, err := json.Marshal(key)
			if err != nil {
				return err
			}
			buf.Write(encodedKey)
			buf.WriteByte(':')
			if err := v.Object[key].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case JSONArray:
		buf.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case JSONString:
		encoded, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case JSONNumber:
		encoded, err := json.Marshal(v.Number)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case JSONBool:
		buf.WriteString(strconv.FormatBool(v.Bool))
	default:
		buf.WriteString("null")
	}
	return nil
}

// Field returns the named object field.
func (v JSONValue) Field(key string) (JSONValue, bool) {
	if v.Kind != JSONObject {
		return JSONValue{}, false
	}
	field, ok := v.Object[key]
	return field, ok
}

// ArrayValue returns the array slice when the value is an array.
func (v JSONValue) ArrayValue() ([]JSONValue, bool) {
	if v.Kind != JSONArray {
		return nil, false
	}
	return v.Array, true
}

// NumberValue returns the number when the value is numeric.
func (v JSONValue) NumberValue() (float64, bool) {
	if v.Kind != JSONNumber {
		return 0, false
	}
	return v.Number, true
}

// Text renders scalars for display; objects and arrays render as JSON.
func (v JSONValue) Text() string {
	switch v.Kind {
	case JSONString:
		return v.String
	case JSONNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case JSONBool:
		return strconv.FormatBool(v.Bool)
	case JSONNull:
		return ""
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// ToInterface converts the JSONValue into standard Go JSON types.
func (v JSONValue) ToInterface() interface{} {
	switch v.Kind {
	case JSONObject:
		out := make(map[string]interface{}, len(v.Object))
		for key, value := range v.Object {
			out[key] = value.ToInterface()
		}
		return out
	case JSONArray:
		out := make([]interface{}, 0, len(v.Array))
		for _, value := range v.Array {
			out = append(out, value.ToInterface())
		}
		return out
	case JSONString:
		return v.String
	case JSONNumber:
		return v.Number
	case JSONBool:
		return v.Bool
	default:
		return nil
	}
}
