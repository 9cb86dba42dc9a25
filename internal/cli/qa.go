package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"ragdesk/internal/backend"
)

// runAsk builds the handler for the ask command.
func runAsk(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		subject := fs.String("subject", "", "Subject to ask about")
		llm := fs.String("llm", "", "LLM id (default: default_llm)")
		withContexts := fs.Bool("contexts", false, "Include retrieved contexts")
		asJSON := fs.Bool("json", false, "Print the answer as JSON")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		ctx, stop := commandContext()
		defer stop()
		resp, err := sess.client.Ask(ctx, backend.AskRequest{
			Subject:        strings.TrimSpace(*subject),
			Question:       strings.TrimSpace(strings.Join(fs.Args(), " ")),
			LLM:            sess.llm(*llm),
			IncludeContext: *withContexts,
		})
		if err != nil {
			return reportFailure(stderr, err, "Failed to get answer")
		}
		if *asJSON {
			return writeJSON(stdout, resp)
		}
		fmt.Fprintln(stdout, resp.Answer)
		if len(resp.Contexts) > 0 {
			fmt.Fprintln(stdout, "\nContexts:")
			for i, text := range resp.Contexts {
				fmt.Fprintf(stdout, "[%d] %s\n", i+1, text)
			}
		}
		if resp.SessionID != "" {
			fmt.Fprintf(stdout, "\nSession: %s\n", resp.SessionID)
		}
		return ExitOK
	}
}

// runFeedback builds the handler for the feedback command.
func runFeedback(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		sessionID := fs.String("session", "", "Session id printed by ask")
		helpful := fs.Bool("helpful", true, "Whether the answer helped")
		comment := fs.String("comment", "", "Optional comment")
		llm := fs.String("llm", "", "LLM id that produced the answer (default: default_llm)")
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

		ctx, stop := commandContext()
		defer stop()
		err = sess.client.Feedback(ctx, backend.FeedbackRequest{
			SessionID: strings.TrimSpace(*sessionID),
			Helpful:   *helpful,
			Comment:   *comment,
			LLM:       sess.llm(*llm),
		})
		if err != nil {
			return reportFailure(stderr, err, "Feedback failed")
		}
		fmt.Fprintln(stdout, "Thanks for your feedback!")
		return ExitOK
	}
}
