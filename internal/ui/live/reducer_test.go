package live

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ragdesk/internal/backend"
	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
	"ragdesk/internal/testutil"
	"ragdesk/internal/view"
)

type fakeEvaluator struct {
	rows    []eval.Row
	results eval.ResultSet
	err     error
	calls   int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ string, _ string) ([]eval.Row, error) {
	f.calls++
	return f.rows, f.err
}

func (f *fakeEvaluator) Compare(_ context.Context, _ []string, _ string) (eval.ResultSet, error) {
	f.calls++
	return f.results, f.err
}

func mustRows(t *testing.T, payload string) []eval.Row {
	t.Helper()
	value, err := eval.ParseJSONValue([]byte(payload))
	if err != nil {
		t.Fatalf("parse rows: %v", err)
	}
	return eval.RowsFromValue(value)
}

func snapshotState(t *testing.T) view.State {
	t.Helper()
	state := view.New(view.ModeCompare, "retrieval", []string{"x", "y"})
	return view.Settle(state, view.ActionCompare, view.Result{Snapshot: &view.Snapshot{
		Mode:     view.ModeCompare,
		Category: "retrieval",
		Models:   []string{"x", "y"},
		Results: eval.ResultSet{
			{Model: "x", Rows: mustRows(t, `[{"id":1,"question":"First question","context_precision":0.9},{"id":2,"context_precision":0.3}]`)},
			{Model: "y", Rows: mustRows(t, `[{"id":2,"context_precision":0.5},{"id":3,"context_precision":"0.6"}]`)},
		},
	}})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestHandleKeyCyclesCategories verifies tab walks the categories and wraps.
func TestHandleKeyCyclesCategories(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := view.New(view.ModeSingle, "retrieval", []string{"groq"})
		var command Command
		for _, want := range []string{"nvidia", "language", "retrieval"} {
			state, command = HandleKey(state, "tab", 0)
			if command != CommandNone || state.Category != want {
				t.Fatalf("expected %s, got %s", want, state.Category)
			}
		}
		state, _ = HandleKey(state, "shift+tab", 0)
		if state.Category != "language" {
			t.Fatalf("expected shift+tab to go back, got %s", state.Category)
		}
	})
}

// TestHandleKeyTogglesMetricsAndScale verifies digit and scale keys.
func TestHandleKeyTogglesMetricsAndScale(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := view.New(view.ModeSingle, "retrieval", []string{"groq"})
		state, _ = HandleKey(state, "3", 0)
		if got := state.ShownMetrics("retrieval"); len(got) != 3 || got[2] != "faithfulness" {
			t.Fatalf("expected faithfulness shown, got %v", got)
		}
		state, _ = HandleKey(state, "9", 0)
		if got := state.ShownMetrics("retrieval"); len(got) != 3 {
			t.Fatalf("expected out-of-range digit to be ignored, got %v", got)
		}
		state, _ = HandleKey(state, "s", 0)
		if state.Scale != metrics.ScaleAbsolute {
			t.Fatalf("expected absolute scale")
		}
		state, _ = HandleKey(state, "c", 0)
		if !state.ShowContexts {
			t.Fatalf("expected contexts shown")
		}
		if _, command := HandleKey(state, "q", 0); command != CommandQuit {
			t.Fatalf("expected quit command")
		}
	})
}

// TestHandleKeyRerunIsGuarded verifies a second re-run is refused while one runs.
func TestHandleKeyRerunIsGuarded(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := view.New(view.ModeSingle, "retrieval", []string{"groq"})
		state, command := HandleKey(state, "r", 0)
		if command != CommandRerun || !state.Busy(view.ActionEvaluate) {
			t.Fatalf("expected re-run to start")
		}
		state, command = HandleKey(state, "r", 0)
		if command != CommandNone {
			t.Fatalf("expected second re-run to be refused")
		}
		if state.Notice == "" {
			t.Fatalf("expected a notice for the refused re-run")
		}
	})
}

// TestRowsForStateAlignsModels verifies compare rows follow id alignment.
func TestRowsForStateAlignsModels(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := view.SetScale(snapshotState(t), metrics.ScaleAbsolute)
		rows := rowsForState(state, 40, true)
		if len(rows) != 3 {
			t.Fatalf("expected 3 aligned rows, got %d", len(rows))
		}
		// columns: id, question, x precision, x recall, y precision, y recall
		if got := rows[0][2]; got != "0.900" {
			t.Fatalf("expected x precision 0.900, got %q", got)
		}
		if got := rows[0][4]; got != metrics.Placeholder {
			t.Fatalf("expected y to be missing for id 1, got %q", got)
		}
		if got := rows[2][4]; got != "0.600" {
			t.Fatalf("expected y precision from string, got %q", got)
		}
		if cols := columnsFor(state, 120); len(cols) != len(rows[0]) {
			t.Fatalf("expected %d columns, got %d", len(rows[0]), len(cols))
		}
	})
}

// TestModelRerunSettlesSnapshot verifies the re-run command feeds the reducer.
func TestModelRerunSettlesSnapshot(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		evaluator := &fakeEvaluator{rows: mustRows(t, `[{"id":1,"question":"Q","context_precision":0.5}]`)}
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		model := NewModel(view.New(view.ModeSingle, "retrieval", []string{"groq"}), nil, Options{
			NoColor:   true,
			Evaluator: evaluator,
			Now:       func() time.Time { return fixed },
		})

		next, cmd := model.Update(key("r"))
		if cmd == nil {
			t.Fatalf("expected a re-run command")
		}
		model = next.(Model)
		if !strings.Contains(model.View(), "Evaluating...") {
			t.Fatalf("expected busy footer")
		}
		next, _ = model.Update(cmd())
		model = next.(Model)
		state := model.State()
		if state.Snapshot == nil || state.Snapshot.Results.Len() != 1 || evaluator.calls != 1 {
			t.Fatalf("expected snapshot from evaluator, got %+v", state.Snapshot)
		}
		if state.Busy(view.ActionEvaluate) {
			t.Fatalf("expected action to settle")
		}
		rendered := model.View()
		if !strings.Contains(rendered, "50.0%") || !strings.Contains(rendered, "(n=1)") {
			t.Fatalf("expected averages in view, got:\n%s", rendered)
		}
	})
}

// TestModelRerunFailureKeepsSnapshot verifies errors keep the previous data.
func TestModelRerunFailureKeepsSnapshot(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		evaluator := &fakeEvaluator{err: &backend.TransportError{Op: "evaluate-ragas", Err: errors.New("refused")}}
		model := NewModel(snapshotState(t), nil, Options{NoColor: true, Evaluator: evaluator})

		next, cmd := model.Update(key("r"))
		model = next.(Model)
		next, _ = model.Update(cmd())
		model = next.(Model)
		state := model.State()
		if state.Error != backend.NetworkErrorMessage {
			t.Fatalf("expected network error, got %q", state.Error)
		}
		if state.Snapshot == nil || state.Snapshot.Results.Len() != 4 {
			t.Fatalf("expected previous snapshot to survive")
		}
		if !strings.Contains(model.View(), "Error: Network error") {
			t.Fatalf("expected error footer")
		}
	})
}

// TestModelExpandsRow verifies enter shows the row detail.
func TestModelExpandsRow(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		model := NewModel(snapshotState(t), nil, Options{NoColor: true})
		next, _ := model.Update(key("enter"))
		model = next.(Model)
		if !strings.Contains(model.View(), "Question: First question") {
			t.Fatalf("expected expanded detail, got:\n%s", model.View())
		}
		next, _ = model.Update(key("enter"))
		model = next.(Model)
		if model.State().Expanded != nil {
			t.Fatalf("expected second enter to collapse")
		}
	})
}

// TestApplyExternalEvents verifies controller events drive the reducer.
func TestApplyExternalEvents(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := view.New(view.ModeSingle, "retrieval", []string{"groq"})
		state = Apply(state, Event{Kind: EventSubmitted, Action: view.ActionEvaluate})
		if !state.Busy(view.ActionEvaluate) {
			t.Fatalf("expected busy state")
		}
		state = Apply(state, Event{Kind: EventSettled, Action: view.ActionEvaluate, Result: view.Result{Err: errors.New("boom"), Fallback: "Evaluation failed"}})
		if state.Busy(view.ActionEvaluate) || state.Error != "Evaluation failed" {
			t.Fatalf("unexpected state %+v", state)
		}
	})
}

// TestFormatQuestionTextTruncates verifies long questions are shortened.
func TestFormatQuestionTextTruncates(t *testing.T) {
	got := formatQuestionText(strings.Repeat("word ", 30), 20)
	if len([]rune(got)) != 20 || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected truncation %q", got)
	}
	if formatQuestionText("  a   b ", 20) != "a b" {
		t.Fatalf("expected whitespace to collapse")
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
