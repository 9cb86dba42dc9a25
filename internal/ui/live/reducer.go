package live

import (
	"strconv"

	"ragdesk/internal/metrics"
	"ragdesk/internal/view"
)

// Command is a side effect requested by a key press.
type Command int

const (
	CommandNone Command = iota
	CommandQuit
	CommandRerun
)

// HandleKey maps a key press to a new view state and an optional command.
// selected is the highlighted table row, used by enter.
func HandleKey(state view.State, key string, selected int) (view.State, Command) {
	switch key {
	case "q", "ctrl+c", "esc":
		return state, CommandQuit
	case "tab":
		return view.SelectCategory(state, nextCategory(state, 1)), CommandNone
	case "shift+tab":
		return view.SelectCategory(state, nextCategory(state, -1)), CommandNone
	case "s":
		if state.Scale == metrics.ScalePercent {
			return view.SetScale(state, metrics.ScaleAbsolute), CommandNone
		}
		return view.SetScale(state, metrics.ScalePercent), CommandNone
	case "c":
		return view.ToggleContexts(state), CommandNone
	case "enter":
		return view.ToggleExpanded(state, view.Cell{Row: selected, Column: "question"}), CommandNone
	case "r":
		next, ok := view.Submit(state, actionFor(state))
		if !ok {
			next = state
			next.Notice = "Evaluation already running"
			return next, CommandNone
		}
		return next, CommandRerun
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
		return toggleNth(state, n-1), CommandNone
	}
	return state, CommandNone
}

// Apply folds an external event into the state.
func Apply(state view.State, event Event) view.State {
	switch event.Kind {
	case EventSubmitted:
		next, ok := view.Submit(state, event.Action)
		if !ok {
			return state
		}
		return next
	case EventSettled:
		return view.Settle(state, event.Action, event.Result)
	}
	return state
}

// nextCategory returns the key step positions away from the active category.
func nextCategory(state view.State, step int) string {
	cats := state.Categories()
	if len(cats) == 0 {
		return state.Category
	}
	current := 0
	for i, cat := range cats {
		if cat.Key == state.Category {
			current = i
			break
		}
	}
	next := (current + step + len(cats)) % len(cats)
	return cats[next].Key
}

// toggleNth toggles the index-th metric of the active category.
func toggleNth(state view.State, index int) view.State {
	for _, cat := range state.Categories() {
		if cat.Key != state.Category {
			continue
		}
		if index >= len(cat.Metrics) {
			return state
		}
		return view.ToggleMetric(state, cat.Metrics[index])
	}
	return state
}
