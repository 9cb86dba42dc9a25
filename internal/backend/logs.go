package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"ragdesk/internal/eval"
)

// DefaultLogLimit matches the log viewer's page size.
const DefaultLogLimit = 500

// LevelAll disables level filtering.
const LevelAll = "ALL"

var standardLogFields = []string{"timestamp", "level", "event", "subject", "question", "id"}

// LogEntry is one backend log record with its fields in payload order.
type LogEntry struct {
	Value eval.JSONValue
}

func (e LogEntry) field(key string) string {
	value, ok := e.Value.Field(key)
	if !ok {
		return ""
	}
	return value.Text()
}

// Timestamp returns the timestamp field.
func (e LogEntry) Timestamp() string { return e.field("timestamp") }

// Level returns the level field.
func (e LogEntry) Level() string { return e.field("level") }

// Event returns the event field.
func (e LogEntry) Event() string { return e.field("event") }

// Subject returns the subject field.
func (e LogEntry) Subject() string { return e.field("subject") }

// Question returns the question field.
func (e LogEntry) Question() string { return e.field("question") }

// Details renders the non-standard fields as "k: v | k: v".
func (e LogEntry) Details() string {
	var parts []string
	for _, key := range e.Value.Keys {
		if isStandardLogField(key) {
			continue
		}
		parts = append(parts, key+": "+e.Value.Object[key].Text())
	}
	return strings.Join(parts, " | ")
}

// MarshalJSON encodes the entry preserving field order.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	return e.Value.MarshalJSON()
}

func isStandardLogField(key string) bool {
	for _, field := range standardLogFields {
		if key == field {
			return true
		}
	}
	return false
}

// Logs fetches up to limit recent log records. Items that are not objects are dropped.
func (c *Client) Logs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	body, status, err := c.get(ctx, "/logs?limit="+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, decodeHTTPError("logs", status, body)
	}
	var value eval.JSONValue
	if err := json.Unmarshal(body, &value); err != nil {
		return nil, fmt.Errorf("backend: decode logs: %w", err)
	}
	return LogEntriesFromValue(value), nil
}

// LogEntriesFromValue keeps the object items of a JSON array.
func LogEntriesFromValue(value eval.JSONValue) []LogEntry {
	items, ok := value.ArrayValue()
	if !ok {
		return []LogEntry{}
	}
	out := make([]LogEntry, 0, len(items))
	for _, item := range items {
		if item.Kind != eval.JSONObject {
			continue
		}
		out = append(out, LogEntry{Value: item})
	}
	return out
}

// FilterLogs keeps entries at level (LevelAll or "" for any) whose values
// contain search, case-insensitively.
func FilterLogs(entries []LogEntry, level, search string) []LogEntry {
	needle := strings.ToLower(search)
	out := make([]LogEntry, 0, len(entries))
	for _, entry := range entries {
		if level != "" && level != LevelAll && entry.Level() != level {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(joinValues(entry)), needle) {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func joinValues(entry LogEntry) string {
	values := make([]string, 0, len(entry.Value.Keys))
	for _, key := range entry.Value.Keys {
		values = append(values, entry.Value.Object[key].Text())
	}
	return strings.Join(values, " ")
}
