package view

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"ragdesk/internal/backend"
	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

func snapshot(t *testing.T, payload string) *Snapshot {
	t.Helper()
	var set eval.ResultSet
	if err := json.Unmarshal([]byte(payload), &set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return &Snapshot{Mode: ModeCompare, Category: "retrieval", Models: set.Models(), Results: set}
}

// TestNewFallsBackToFirstCategory verifies unknown categories are replaced.
func TestNewFallsBackToFirstCategory(t *testing.T) {
	state := New(ModeSingle, "nope", []string{"groq"})
	if state.Category != "retrieval" {
		t.Fatalf("expected retrieval, got %s", state.Category)
	}
	if got := state.ShownMetrics("retrieval"); !reflect.DeepEqual(got, []string{"context_precision", "context_recall"}) {
		t.Fatalf("unexpected default metrics %v", got)
	}
}

// TestSelectCategoryIgnoresUnknown verifies reducers leave state alone for bad keys.
func TestSelectCategoryIgnoresUnknown(t *testing.T) {
	state := New(ModeSingle, "retrieval", nil)
	next := SelectCategory(state, "missing")
	if next.Category != "retrieval" {
		t.Fatalf("expected category unchanged")
	}
	next = SelectCategory(state, "language")
	if next.Category != "language" || state.Category != "retrieval" {
		t.Fatalf("expected new state to switch and old to stay, got %s/%s", next.Category, state.Category)
	}
	if got := next.Shown["language"]; !reflect.DeepEqual(got, []string{"factual_correctness", "semantic_similarity"}) {
		t.Fatalf("unexpected shown %v", got)
	}
}

// TestToggleMetricKeepsLastMetric verifies the last visible metric stays.
func TestToggleMetricKeepsLastMetric(t *testing.T) {
	state := New(ModeSingle, "retrieval", nil)
	state = ToggleMetric(state, "context_precision")
	if got := state.ShownMetrics("retrieval"); !reflect.DeepEqual(got, []string{"context_recall"}) {
		t.Fatalf("unexpected shown %v", got)
	}
	state = ToggleMetric(state, "context_recall")
	if got := state.ShownMetrics("retrieval"); !reflect.DeepEqual(got, []string{"context_recall"}) {
		t.Fatalf("expected last metric kept, got %v", got)
	}
	state = ToggleMetric(state, "faithfulness")
	state = ToggleMetric(state, "context_precision")
	if got := state.ShownMetrics("retrieval"); !reflect.DeepEqual(got, []string{"context_precision", "context_recall", "faithfulness"}) {
		t.Fatalf("expected category order, got %v", got)
	}
	if same := ToggleMetric(state, "bleu_score"); !reflect.DeepEqual(same.ShownMetrics("retrieval"), state.ShownMetrics("retrieval")) {
		t.Fatalf("expected metrics outside category to be ignored")
	}
}

// TestToggleModelAndExpanded verifies selection toggles.
func TestToggleModelAndExpanded(t *testing.T) {
	state := New(ModeCompare, "retrieval", []string{"groq"})
	state = ToggleModel(state, "gemini")
	state = ToggleModel(state, "groq")
	if !reflect.DeepEqual(state.Models, []string{"gemini"}) {
		t.Fatalf("unexpected models %v", state.Models)
	}
	cell := Cell{Row: 2, Column: "answer"}
	state = ToggleExpanded(state, cell)
	if state.Expanded == nil || *state.Expanded != cell {
		t.Fatalf("expected expanded cell")
	}
	state = ToggleExpanded(state, cell)
	if state.Expanded != nil {
		t.Fatalf("expected collapse on second toggle")
	}
	state = SetScale(ToggleContexts(state), metrics.ScaleAbsolute)
	if !state.ShowContexts || state.Scale != metrics.ScaleAbsolute {
		t.Fatalf("unexpected flags %+v", state)
	}
}

// TestSubmitRejectsWhileInFlight verifies the in-flight guard.
func TestSubmitRejectsWhileInFlight(t *testing.T) {
	state := New(ModeCompare, "retrieval", []string{"groq"})
	busy, ok := Submit(state, ActionCompare)
	if !ok || !busy.Busy(ActionCompare) {
		t.Fatalf("expected first submit accepted")
	}
	if state.Busy(ActionCompare) {
		t.Fatalf("expected original state untouched")
	}
	again, ok := Submit(busy, ActionCompare)
	if ok || !reflect.DeepEqual(again, busy) {
		t.Fatalf("expected second submit rejected")
	}
	if _, ok := Submit(busy, ActionAsk); !ok {
		t.Fatalf("expected other actions to proceed")
	}
}

// TestSettleSuccessAndFailure verifies snapshot replacement and error retention.
func TestSettleSuccessAndFailure(t *testing.T) {
	state, _ := Submit(New(ModeCompare, "retrieval", []string{"x", "y"}), ActionCompare)
	snap := snapshot(t, `{"x":[{"id":1,"context_precision":0.5}],"y":[{"id":2}]}`)
	state = Settle(state, ActionCompare, Result{Snapshot: snap})
	if state.Busy(ActionCompare) || state.Snapshot == nil || state.Error != "" {
		t.Fatalf("unexpected state after success %+v", state)
	}
	if got := len(state.Aligned()); got != 2 {
		t.Fatalf("expected two aligned rows, got %d", got)
	}
	if avg := state.Averages()["x"]["context_precision"]; avg.Count != 1 || avg.Mean != 0.5 {
		t.Fatalf("unexpected average %+v", avg)
	}

	state, _ = Submit(state, ActionCompare)
	state = Settle(state, ActionCompare, Result{Err: &backend.TransportError{Op: "evaluate-ragas", Err: errors.New("refused")}})
	if state.Error != backend.NetworkErrorMessage {
		t.Fatalf("expected network error message, got %q", state.Error)
	}
	if state.Snapshot == nil || state.Snapshot.Results.Len() != 2 {
		t.Fatalf("expected previous snapshot kept")
	}

	state, _ = Submit(state, ActionCompare)
	state = Settle(state, ActionCompare, Result{Err: errors.New("boom"), Fallback: "Comparison failed."})
	if state.Error != "Comparison failed." {
		t.Fatalf("expected fallback, got %q", state.Error)
	}
}

// TestOtherCategoryFromSnapshot verifies uncategorized numeric keys get an Other category.
func TestOtherCategoryFromSnapshot(t *testing.T) {
	state := New(ModeSingle, "retrieval", []string{"x"})
	state = Settle(state, ActionEvaluate, Result{Snapshot: snapshot(t, `{"x":[{"id":1,"Answer Relevancy":0.7,"faithfulness":0.2,"answer":"a"}]}`)})
	cats := state.Categories()
	last := cats[len(cats)-1]
	if last.Key != metrics.OtherCategoryKey || !reflect.DeepEqual(last.Metrics, []string{"answer_relevancy"}) {
		t.Fatalf("unexpected other category %+v", last)
	}
	state = SelectCategory(state, metrics.OtherCategoryKey)
	if got := state.ShownMetrics(metrics.OtherCategoryKey); !reflect.DeepEqual(got, []string{"answer_relevancy"}) {
		t.Fatalf("unexpected shown for other %v", got)
	}
}
