package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"ragdesk/internal/ui/live"
	"ragdesk/internal/view"
)

// runBrowse builds the handler for the browse command.
func runBrowse(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		models := fs.String("models", "", "Comma separated models (default: evaluation.models)")
		category := fs.String("category", "", "Metric category (default: evaluation.default_category)")
		snapshot := fs.String("snapshot", "", "Open an archived snapshot id, or latest, instead of evaluating")
		noColor := fs.Bool("no-color", false, "Disable colors")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		decision, err := resolveUIMode("live", false, stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if !decision.live {
			fmt.Fprintln(stderr, "browse needs a terminal; use evaluate or compare --ui plain instead.")
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
		cat := strings.TrimSpace(*category)
		if cat == "" {
			cat = sess.cfg.Evaluation.DefaultCategory
		}

		ctx, stop := commandContext()
		defer stop()

		if ref := strings.TrimSpace(*snapshot); ref != "" {
			state, err := archivedState(sess, ref, cat)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load snapshot: %v\n", err)
				return ExitError
			}
			opts := live.Options{NoColor: *noColor, Evaluator: sess.client, Now: time.Now}
			if err := live.Run(ctx, stdout, state, opts); err != nil {
				fmt.Fprintf(stderr, "Live UI failed: %v\n", err)
				return ExitError
			}
			return ExitOK
		}

		mode := view.ModeSingle
		if len(selected) > 1 {
			mode = view.ModeCompare
		}
		if _, err := runLive(ctx, stdout, sess, view.New(mode, cat, selected), *noColor, nil); err != nil {
			fmt.Fprintf(stderr, "Live UI failed: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

// archivedState seeds the view with an archived snapshot.
func archivedState(sess session, ref, category string) (view.State, error) {
	record, results, err := loadArchived(sess.cfg, sess.root, ref)
	if err != nil {
		return view.State{}, err
	}
	mode := view.ModeSingle
	action := view.ActionEvaluate
	if record.Mode == view.ModeCompare.String() {
		mode = view.ModeCompare
		action = view.ActionCompare
	}
	if record.Category != "" {
		category = record.Category
	}
	models := results.Models()
	state := view.New(mode, category, models)
	return view.Settle(state, action, view.Result{
		Snapshot: &view.Snapshot{
			Mode:      mode,
			Category:  category,
			Models:    models,
			Results:   results,
			FetchedAt: record.CreatedAt,
		},
		Notice: "Loaded snapshot " + record.ID,
	}), nil
}
