package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ragdesk/internal/duckdb"
	"ragdesk/internal/metrics"
	"ragdesk/internal/ui/live"
	"ragdesk/internal/view"
)

// evaluationFlags are shared by evaluate and compare.
type evaluationFlags struct {
	category *string
	metrics  *string
	scale    *string
	uiMode   *string
	noColor  *bool
	asJSON   *bool
	archive  *bool
}

func addEvaluationFlags(fs *flag.FlagSet) evaluationFlags {
	return evaluationFlags{
		category: fs.String("category", "", "Metric category (default: evaluation.default_category)"),
		metrics:  fs.String("metrics", "", "Comma separated metrics to show (default: category defaults)"),
		scale:    fs.String("scale", "pct", "Value scale: pct|abs"),
		uiMode:   fs.String("ui", "auto", "UI mode: auto|live|plain"),
		noColor:  fs.Bool("no-color", false, "Disable colors in the live UI"),
		asJSON:   fs.Bool("json", false, "Print results as JSON"),
		archive:  fs.Bool("archive", false, "Save the results to the archive"),
	}
}

// runEvaluate builds the handler for the evaluate command.
func runEvaluate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		model := fs.String("model", "", "Model to evaluate (default: default_llm)")
		opts := addEvaluationFlags(fs)
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		selected := strings.TrimSpace(*model)
		if selected == "" {
			selected = sess.cfg.DefaultLLM
		}
		if selected == "" && len(sess.cfg.Evaluation.Models) > 0 {
			selected = sess.cfg.Evaluation.Models[0]
		}
		if selected == "" {
			fmt.Fprintln(stderr, "Missing --model")
			return ExitUsage
		}
		return opts.run(sess, view.ModeSingle, []string{selected}, stdout, stderr)
	}
}

// runCompare builds the handler for the compare command.
func runCompare(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		models := fs.String("models", "", "Comma separated models (default: evaluation.models)")
		opts := addEvaluationFlags(fs)
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		selected := splitList(*models)
		if len(selected) == 0 {
			selected = sess.cfg.Evaluation.Models
		}
		if len(selected) == 0 {
			fmt.Fprintln(stderr, "Missing --models")
			return ExitUsage
		}
		return opts.run(sess, view.ModeCompare, selected, stdout, stderr)
	}
}

func (f evaluationFlags) run(sess session, mode view.Mode, models []string, stdout, stderr io.Writer) int {
	category := strings.TrimSpace(*f.category)
	if category == "" {
		category = sess.cfg.Evaluation.DefaultCategory
	}
	if _, ok := metrics.CategoryByKey(category); !ok {
		fmt.Fprintf(stderr, "Unknown category %q\n", category)
		return ExitUsage
	}
	scale, err := parseScale(*f.scale)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	decision, err := resolveUIMode(*f.uiMode, sess.verbose || *f.asJSON, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	if decision.notice != "" {
		fmt.Fprintln(stderr, decision.notice)
	}

	state := view.SetScale(view.New(mode, category, models), scale)
	ctx, stop := commandContext()
	defer stop()

	if decision.live {
		snapshotID, err := runLive(ctx, stdout, sess, state, *f.noColor, func(snap *view.Snapshot) string {
			if !*f.archive {
				return ""
			}
			return archiveSnapshot(ctx, sess, snap, stderr)
		})
		if err != nil {
			fmt.Fprintf(stderr, "Live UI failed: %v\n", err)
			return ExitError
		}
		if snapshotID != "" {
			fmt.Fprintf(stdout, "Archived snapshot %s\n", snapshotID)
		}
		return ExitOK
	}

	action := view.ActionEvaluate
	if mode == view.ModeCompare {
		action = view.ActionCompare
	}
	sess.verbosef("%s %s on %s", action, strings.Join(models, ","), category)
	state, _ = view.Submit(state, action)
	started := time.Now()
	result := live.Fetch(ctx, sess.client, state, started)
	state = view.Settle(state, action, result)
	if result.Err != nil {
		return reportFailure(stderr, result.Err, result.Fallback)
	}
	sess.verbosef("%s finished in %s", action, time.Since(started).Round(time.Millisecond))

	shown := splitList(*f.metrics)
	if len(shown) == 0 {
		shown = state.ShownMetrics(category)
	}
	snapshotID := ""
	if *f.archive {
		snapshotID = archiveSnapshot(ctx, sess, state.Snapshot, stderr)
	}
	if *f.asJSON {
		return writeJSON(stdout, evaluationJSON(state, shown, snapshotID))
	}
	printEvaluation(stdout, state, shown)
	if snapshotID != "" {
		fmt.Fprintf(stdout, "Archived snapshot %s\n", snapshotID)
	}
	return ExitOK
}

// runLive shows the browser while the first fetch runs. onSuccess runs
// after a successful fetch and its return value is passed back.
func runLive(ctx context.Context, stdout io.Writer, sess session, state view.State, noColor bool, onSuccess func(*view.Snapshot) string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	controller := live.Start(stdout, state, live.Options{
		NoColor:   noColor,
		Evaluator: sess.client,
		Now:       time.Now,
	})
	action := view.ActionEvaluate
	if state.Mode == view.ModeCompare {
		action = view.ActionCompare
	}
	done := make(chan string, 1)
	go func() {
		controller.Submitted(action)
		result := live.Fetch(ctx, sess.client, state, time.Now())
		controller.Settled(action, result)
		out := ""
		if result.Err == nil && onSuccess != nil {
			out = onSuccess(result.Snapshot)
		}
		done <- out
	}()
	err := controller.Wait()
	cancel()
	return <-done, err
}

// archiveSnapshot saves snap and returns its id. Failures are reported and
// yield "".
func archiveSnapshot(ctx context.Context, sess session, snap *view.Snapshot, stderr io.Writer) string {
	if snap == nil {
		return ""
	}
	db, err := openArchive(ctx, sess.cfg, sess.root)
	if err != nil {
		fmt.Fprintf(stderr, "Archive failed: %v\n", err)
		return ""
	}
	defer db.Close()
	id, _, err := duckdb.SaveSnapshot(ctx, db, duckdb.SnapshotInput{
		Mode:      snap.Mode.String(),
		Category:  snap.Category,
		Results:   snap.Results,
		CreatedAt: snap.FetchedAt,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Archive failed: %v\n", err)
		return ""
	}
	sess.verbosef("archived snapshot %s", id)
	return id
}

func parseScale(value string) (metrics.Scale, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "pct", "percent":
		return metrics.ScalePercent, nil
	case "abs", "absolute":
		return metrics.ScaleAbsolute, nil
	default:
		return 0, fmt.Errorf("invalid scale %q (expected pct|abs)", value)
	}
}

type evaluationOutput struct {
	Status     string                                `json:"status"`
	Mode       string                                `json:"mode"`
	Category   string                                `json:"category"`
	Models     []string                              `json:"models"`
	Metrics    []string                              `json:"metrics"`
	Rows       []metrics.AlignedRow                  `json:"rows"`
	Averages   map[string]map[string]metrics.Average `json:"averages"`
	SnapshotID string                                `json:"snapshot_id,omitempty"`
}

func evaluationJSON(state view.State, shown []string, snapshotID string) evaluationOutput {
	snap := state.Snapshot
	return evaluationOutput{
		Status:     "success",
		Mode:       snap.Mode.String(),
		Category:   snap.Category,
		Models:     snap.Models,
		Metrics:    shown,
		Rows:       state.Aligned(),
		Averages:   metrics.PerModelWithCount(snap.Results, snap.Models, shown),
		SnapshotID: snapshotID,
	}
}
