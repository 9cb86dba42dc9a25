package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ragdesk/internal/backend"
)

// runUpload builds the handler for the upload command.
func runUpload(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		subject := fs.String("subject", "", "Subject the document belongs to")
		description := fs.String("description", "", "Optional description")
		ingest := fs.Bool("ingest", false, "Ingest the file after uploading")
		advanced := fs.Bool("advanced", false, "Use advanced parsing when ingesting")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Usage: ragdesk upload --subject <name> <file.pdf>")
			return ExitUsage
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		path := fs.Arg(0)
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open file: %v\n", err)
			return ExitError
		}
		defer file.Close()

		ctx, stop := commandContext()
		defer stop()
		resp, err := sess.client.Upload(ctx, backend.UploadRequest{
			Subject:     strings.TrimSpace(*subject),
			Description: *description,
			Filename:    filepath.Base(path),
			Content:     file,
		})
		if err != nil {
			return reportFailure(stderr, err, "Upload failed")
		}
		fmt.Fprintf(stdout, "Uploaded %s\n", resp.Filename)
		if !*ingest {
			return ExitOK
		}
		ingested, err := sess.client.Ingest(ctx, backend.IngestRequest{
			Subject:         strings.TrimSpace(*subject),
			Filename:        resp.Filename,
			AdvancedParsing: *advanced,
		})
		if err != nil {
			return reportFailure(stderr, err, "Ingestion failed")
		}
		printIngested(stdout, ingested, resp.Filename)
		return ExitOK
	}
}

// runIngest builds the handler for the ingest command.
func runIngest(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		subject := fs.String("subject", "", "Subject the document belongs to")
		filename := fs.String("file", "", "Uploaded filename to ingest")
		advanced := fs.Bool("advanced", false, "Use advanced parsing")
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
		resp, err := sess.client.Ingest(ctx, backend.IngestRequest{
			Subject:         strings.TrimSpace(*subject),
			Filename:        strings.TrimSpace(*filename),
			AdvancedParsing: *advanced,
		})
		if err != nil {
			return reportFailure(stderr, err, "Ingestion failed")
		}
		printIngested(stdout, resp, *filename)
		return ExitOK
	}
}

func printIngested(w io.Writer, resp backend.IngestResponse, filename string) {
	if resp.Message != "" {
		fmt.Fprintln(w, resp.Message)
		return
	}
	fmt.Fprintf(w, "Ingested %s\n", filename)
}

// runPaper builds the handler for the paper command.
func runPaper(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		common := addSessionFlags(fs)
		subject := fs.String("subject", "", "Subject of the paper")
		files := fs.String("files", "", "Comma separated ingested filenames")
		llm := fs.String("llm", "", "LLM id (default: default_llm)")
		types := fs.String("types", "", "Question counts per type, e.g. one_liner=5,descriptive=5")
		total := fs.Int("total", 0, "Total questions (default: sum of --types)")
		difficulty := fs.String("difficulty", "medium", "Difficulty: easy|medium|hard")
		extra := fs.String("extra", "", "Extra instructions for the generator")
		asJSON := fs.Bool("json", false, "Print the paper as JSON")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if !noArgs(cmd, fs, stderr) {
			return ExitUsage
		}
		distribution, err := parseDistribution(*types)
		if err != nil {
			fmt.Fprintf(stderr, "Invalid --types: %v\n", err)
			return ExitUsage
		}
		count := *total
		if count == 0 {
			for _, n := range distribution {
				count += n
			}
		}
		sess, err := common.open(stdout)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}

		ctx, stop := commandContext()
		defer stop()
		paper, err := sess.client.GeneratePaper(ctx, backend.PaperRequest{
			Subject:   strings.TrimSpace(*subject),
			Filenames: splitList(*files),
			LLM:       sess.llm(*llm),
			Config: backend.QuestionConfig{
				TotalQuestions: count,
				Difficulty:     strings.ToLower(strings.TrimSpace(*difficulty)),
				Distribution:   distribution,
			},
			ExtraContext: *extra,
		})
		if err != nil {
			return reportFailure(stderr, err, "Failed to generate question paper")
		}
		for _, issue := range paper.Issues {
			fmt.Fprintf(stderr, "Warning: %s\n", issue)
		}
		if *asJSON {
			return writeJSON(stdout, paper)
		}
		printPaper(stdout, paper)
		return ExitOK
	}
}

// parseDistribution reads "type=n,type=n".
func parseDistribution(value string) (map[string]int, error) {
	out := map[string]int{}
	for _, part := range splitList(value) {
		kind, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("expected type=count, got %q", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("count for %q: %w", kind, err)
		}
		out[strings.TrimSpace(kind)] = n
	}
	return out, nil
}

func printPaper(w io.Writer, paper backend.PaperResponse) {
	if paper.Summary != "" {
		fmt.Fprintf(w, "Summary: %s\n\n", paper.Summary)
	}
	if len(paper.Questions) == 0 {
		if paper.Raw != "" {
			fmt.Fprintln(w, paper.Raw)
		}
		return
	}
	for i, q := range paper.Questions {
		fmt.Fprintf(w, "%d. [%s] %s\n", i+1, q.Type, q.Question)
		for j, option := range q.Options {
			fmt.Fprintf(w, "   %c) %s\n", 'a'+j, option)
		}
		if q.Answer != "" {
			fmt.Fprintf(w, "   Answer: %s\n", q.Answer)
		}
	}
}
