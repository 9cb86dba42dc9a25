package live

import (
	"context"
	"time"

	"ragdesk/internal/eval"
	"ragdesk/internal/view"
)

// Evaluator re-runs evaluations for the browser. *backend.Client satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, model, category string) ([]eval.Row, error)
	Compare(ctx context.Context, models []string, category string) (eval.ResultSet, error)
}

// Options configures the live UI model.
type Options struct {
	NoColor   bool
	Evaluator Evaluator
	// Timeout bounds a re-run; zero means none.
	Timeout time.Duration
	Now     func() time.Time
}

// actionFor picks the backend action that refreshes state.
func actionFor(state view.State) view.Action {
	if state.Mode == view.ModeCompare {
		return view.ActionCompare
	}
	return view.ActionEvaluate
}

// Fetch runs the evaluation state describes and wraps the outcome as a
// view result. It never panics on a nil evaluator.
func Fetch(ctx context.Context, evaluator Evaluator, state view.State, now time.Time) view.Result {
	action := actionFor(state)
	fallback := "Evaluation failed"
	if action == view.ActionCompare {
		fallback = "Comparison failed"
	}
	if evaluator == nil {
		return view.Result{Err: errNoEvaluator, Fallback: fallback}
	}
	snap := &view.Snapshot{
		Mode:      state.Mode,
		Category:  state.Category,
		Models:    append([]string(nil), state.Models...),
		FetchedAt: now,
	}
	if action == view.ActionCompare {
		results, err := evaluator.Compare(ctx, state.Models, state.Category)
		if err != nil {
			return view.Result{Err: err, Fallback: fallback}
		}
		snap.Results = results
		return view.Result{Snapshot: snap, Notice: "Comparison refreshed"}
	}
	model := ""
	if len(state.Models) > 0 {
		model = state.Models[0]
	}
	rows, err := evaluator.Evaluate(ctx, model, state.Category)
	if err != nil {
		return view.Result{Err: err, Fallback: fallback}
	}
	snap.Models = []string{model}
	snap.Results = eval.Single(model, rows)
	return view.Result{Snapshot: snap, Notice: "Evaluation refreshed"}
}
