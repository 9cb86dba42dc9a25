package live

import (
	"errors"

	"ragdesk/internal/view"
)

var errNoEvaluator = errors.New("live: no evaluator configured")

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventSubmitted marks an action as started outside the UI.
	EventSubmitted EventKind = iota
	// EventSettled delivers the outcome of an action.
	EventSettled
)

// Event carries a UI update payload.
type Event struct {
	Kind   EventKind
	Action view.Action
	Result view.Result
}
