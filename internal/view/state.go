package view

import (
	"time"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// Mode selects the single-model or comparison layout.
type Mode int

const (
	ModeSingle Mode = iota
	ModeCompare
)

// String names the mode.
func (m Mode) String() string {
	if m == ModeCompare {
		return "compare"
	}
	return "single"
}

// Action identifies a backend-bound user action.
type Action string

const (
	ActionEvaluate Action = "evaluate"
	ActionCompare  Action = "compare"
	ActionAsk      Action = "ask"
	ActionFeedback Action = "feedback"
	ActionUpload   Action = "upload"
	ActionIngest   Action = "ingest"
	ActionPaper    Action = "paper"
	ActionLogs     Action = "logs"
)

// Cell addresses one expandable table cell.
type Cell struct {
	Row    int
	Column string
}

// Snapshot is the latest evaluation fetched from the backend.
type Snapshot struct {
	Mode      Mode
	Category  string
	Models    []string
	Results   eval.ResultSet
	FetchedAt time.Time
}

// State is the whole view state. Reducers never mutate their input.
type State struct {
	Mode         Mode
	Category     string
	Shown        map[string][]string
	Models       []string
	Expanded     *Cell
	Scale        metrics.Scale
	ShowContexts bool
	InFlight     map[Action]bool
	Error        string
	Notice       string
	Snapshot     *Snapshot
}

// New returns the initial state for mode, category and models.
func New(mode Mode, category string, models []string) State {
	if _, ok := metrics.CategoryByKey(category); !ok {
		category = metrics.Categories()[0].Key
	}
	return State{
		Mode:     mode,
		Category: category,
		Models:   append([]string(nil), models...),
		Scale:    metrics.ScalePercent,
	}
}

// Busy reports whether action is in flight.
func (s State) Busy(action Action) bool {
	return s.InFlight[action]
}

// clone copies the reference-typed fields so the result can be modified freely.
func (s State) clone() State {
	out := s
	out.Models = append([]string(nil), s.Models...)
	out.Shown = make(map[string][]string, len(s.Shown))
	for k, v := range s.Shown {
		out.Shown[k] = append([]string(nil), v...)
	}
	out.InFlight = make(map[Action]bool, len(s.InFlight))
	for k, v := range s.InFlight {
		out.InFlight[k] = v
	}
	if s.Expanded != nil {
		cell := *s.Expanded
		out.Expanded = &cell
	}
	return out
}
