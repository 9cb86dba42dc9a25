package cli

import (
	"fmt"
	"io"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ragdesk <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"ragdesk <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("init", "Scaffold .ragdesk/config.yml", []string{
		"ragdesk init [--config <path>]",
	}, runInit),
	command("validate", "Validate .ragdesk/config.yml", []string{
		"ragdesk validate [--config <path>] [--json]",
	}, runValidate),
	command("evaluate", "Evaluate one model on a metric category", []string{
		"ragdesk evaluate [--model <id>] [--category <key>] [--metrics a,b] [--ui auto|live|plain] [--json] [--archive]",
	}, runEvaluate),
	command("compare", "Compare models on a metric category", []string{
		"ragdesk compare [--models a,b] [--category <key>] [--metrics a,b] [--ui auto|live|plain] [--json] [--archive]",
	}, runCompare),
	command("ask", "Ask a question about a subject", []string{
		"ragdesk ask --subject <name> [--llm <id>] [--contexts] <question>",
	}, runAsk),
	command("feedback", "Rate an answer", []string{
		"ragdesk feedback --session <id> [--helpful=false] [--comment <text>]",
	}, runFeedback),
	command("upload", "Upload a PDF for a subject", []string{
		"ragdesk upload --subject <name> [--description <text>] <file.pdf>",
	}, runUpload),
	command("ingest", "Index an uploaded PDF", []string{
		"ragdesk ingest --subject <name> --file <filename> [--advanced]",
	}, runIngest),
	command("paper", "Generate a question paper", []string{
		"ragdesk paper --subject <name> --files a.pdf,b.pdf --types one_liner=5,descriptive=5 [--difficulty medium]",
	}, runPaper),
	command("logs", "Show backend logs", []string{
		"ragdesk logs [--limit N] [--level INFO] [--search <text>] [--json]",
	}, runLogs),
	command("report", "Write an HTML report", []string{
		"ragdesk report --input <results.json> [--output report.html]",
		"ragdesk report --snapshot <id|latest> [--output report.html]",
	}, runReport),
	command("serve", "Serve the browser front end", []string{
		"ragdesk serve [--addr 127.0.0.1:8080] [--archive]",
	}, runServe),
	command("browse", "Browse evaluations in the terminal", []string{
		"ragdesk browse [--models a,b] [--category <key>] [--snapshot <id|latest>]",
	}, runBrowse),
	command("archive", "List archived snapshots", []string{
		"ragdesk archive [--json] [<snapshot-id>]",
	}, runArchive),
}
