package view

import (
	"slices"

	"ragdesk/internal/backend"
	"ragdesk/internal/metrics"
)

// Categories lists the built-in categories plus an Other category for
// numeric keys in the current snapshot that no category names.
func (s State) Categories() []metrics.Category {
	if s.Snapshot == nil {
		return metrics.Categories()
	}
	return metrics.WithOther(DiscoverMetrics(s.Snapshot.Results))
}

func (s State) category(key string) (metrics.Category, bool) {
	for _, cat := range s.Categories() {
		if cat.Key == key {
			return cat, true
		}
	}
	return metrics.Category{}, false
}

// ShownMetrics returns the visible metrics for category in category order.
func (s State) ShownMetrics(category string) []string {
	if shown, ok := s.Shown[category]; ok && len(shown) > 0 {
		return append([]string(nil), shown...)
	}
	if shown := metrics.DefaultShown(category); len(shown) > 0 {
		return shown
	}
	if cat, ok := s.category(category); ok && len(cat.Metrics) > 0 {
		return cat.Metrics[:1]
	}
	return nil
}

// SelectCategory switches the active category. Unknown keys are ignored.
func SelectCategory(s State, key string) State {
	if _, ok := s.category(key); !ok {
		return s
	}
	out := s.clone()
	out.Category = key
	if _, ok := out.Shown[key]; !ok {
		out.Shown[key] = s.ShownMetrics(key)
	}
	out.Expanded = nil
	return out
}

// ToggleMetric shows or hides metric in the active category. The last
// visible metric cannot be hidden.
func ToggleMetric(s State, metric string) State {
	cat, ok := s.category(s.Category)
	if !ok || !slices.Contains(cat.Metrics, metric) {
		return s
	}
	shown := s.ShownMetrics(s.Category)
	if slices.Contains(shown, metric) {
		if len(shown) == 1 {
			return s
		}
		shown = slices.DeleteFunc(shown, func(m string) bool { return m == metric })
	} else {
		shown = append(shown, metric)
	}
	ordered := make([]string, 0, len(shown))
	for _, m := range cat.Metrics {
		if slices.Contains(shown, m) {
			ordered = append(ordered, m)
		}
	}
	out := s.clone()
	out.Shown[s.Category] = ordered
	return out
}

// ToggleModel adds or removes model from the selection.
func ToggleModel(s State, model string) State {
	out := s.clone()
	if slices.Contains(out.Models, model) {
		out.Models = slices.DeleteFunc(out.Models, func(m string) bool { return m == model })
	} else {
		out.Models = append(out.Models, model)
	}
	return out
}

// ToggleExpanded expands cell, or collapses it when it is already expanded.
func ToggleExpanded(s State, cell Cell) State {
	out := s.clone()
	if out.Expanded != nil && *out.Expanded == cell {
		out.Expanded = nil
		return out
	}
	out.Expanded = &cell
	return out
}

// SetScale chooses percent or absolute rendering.
func SetScale(s State, scale metrics.Scale) State {
	out := s.clone()
	out.Scale = scale
	return out
}

// ToggleContexts shows or hides retrieved contexts.
func ToggleContexts(s State) State {
	out := s.clone()
	out.ShowContexts = !out.ShowContexts
	return out
}

// Submit marks action in flight. It returns false and the unchanged state
// when the same action is already running.
func Submit(s State, action Action) (State, bool) {
	if s.Busy(action) {
		return s, false
	}
	out := s.clone()
	out.InFlight[action] = true
	out.Notice = ""
	return out, true
}

// Result is the outcome of an action.
type Result struct {
	Snapshot *Snapshot
	Notice   string
	Err      error
	Fallback string
}

// Settle clears the in-flight mark for action. On success a new snapshot
// replaces the old one and the error is cleared. On failure the previous
// snapshot is kept and a display message is stored.
func Settle(s State, action Action, result Result) State {
	out := s.clone()
	delete(out.InFlight, action)
	if result.Err != nil {
		out.Error = backend.UserMessage(result.Err, result.Fallback)
		out.Notice = ""
		return out
	}
	out.Error = ""
	out.Notice = result.Notice
	if result.Snapshot != nil {
		snap := *result.Snapshot
		out.Snapshot = &snap
		out.Expanded = nil
	}
	return out
}
