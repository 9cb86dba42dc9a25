package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompter asks interactive questions on out and reads answers from in.
// Running out of input settles on the default when one exists.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// answer reads one line. eof is set when the input is exhausted; a final
// line without a newline is still returned.
func (p *prompter) answer() (line string, eof bool, err error) {
	line, err = p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if errors.Is(err, io.EOF) {
		return line, true, nil
	}
	return line, false, err
}

// text asks for a free-form value. An empty answer takes fallback; with no
// fallback the question repeats until input ends.
func (p *prompter) text(label, fallback string) (string, error) {
	for {
		if fallback != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", label, fallback)
		} else {
			fmt.Fprintf(p.out, "%s: ", label)
		}
		line, eof, err := p.answer()
		switch {
		case err != nil:
			return "", err
		case line != "":
			return line, nil
		case fallback != "":
			return fallback, nil
		case eof:
			return "", fmt.Errorf("no value given for %s", strings.ToLower(label))
		}
	}
}

// confirm asks a yes/no question. An empty answer takes the default.
func (p *prompter) confirm(label string, defaultYes bool) (bool, error) {
	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", label, hint)
		line, eof, err := p.answer()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if eof {
			return false, fmt.Errorf("expected yes or no, got %q", line)
		}
		fmt.Fprintln(p.out, "Please answer yes or no.")
	}
}
