package metrics

import (
	"math"
	"strconv"
	"strings"

	"ragdesk/internal/eval"
)

// Value is the decoded result of a metric lookup: either a number or missing.
// Missing is distinct from a real zero.
type Value struct {
	n  float64
	ok bool
}

// Number builds a present value.
func Number(n float64) Value {
	return Value{n: n, ok: true}
}

// Missing builds an absent value.
func Missing() Value {
	return Value{}
}

// Float returns the number and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.n, v.ok
}

// IsMissing reports whether the value is absent.
func (v Value) IsMissing() bool {
	return !v.ok
}

// Decode converts a raw metric value into a Value. It accepts a number, a
// numeric string, or an object carrying a score or value field, in that order.
func Decode(raw eval.JSONValue) Value {
	switch raw.Kind {
	case eval.JSONNumber:
		return finite(raw.Number)
	case eval.JSONString:
		return parseNumeric(raw.String)
	case eval.JSONObject:
		for _, field := range []string{"score", "value"} {
			inner, ok := raw.Field(field)
			if !ok {
				continue
			}
			if decoded := decodeScalar(inner); !decoded.IsMissing() {
				return decoded
			}
		}
	}
	return Missing()
}

// decodeScalar decodes the inner field of a score object; nested objects are not followed.
func decodeScalar(raw eval.JSONValue) Value {
	switch raw.Kind {
	case eval.JSONNumber:
		return finite(raw.Number)
	case eval.JSONString:
		return parseNumeric(raw.String)
	default:
		return Missing()
	}
}

func parseNumeric(text string) Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Missing()
	}
	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Missing()
	}
	return finite(n)
}

func finite(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Missing()
	}
	return Number(n)
}
