package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// uiMode selects between the live table and plain output.
type uiMode string

const (
	uiAuto  uiMode = "auto"
	uiLive  uiMode = "live"
	uiPlain uiMode = "plain"
)

func parseUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiAuto, nil
	case uiAuto, uiLive, uiPlain:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid ui mode %q (expected auto|live|plain)", value)
	}
}

// uiDecision is the resolved output style. notice is set when a live table
// was asked for but cannot be shown.
type uiDecision struct {
	live   bool
	notice string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// resolveUIMode decides whether output goes to the live table. forcePlain
// covers --verbose and --json, whose output must stay line oriented.
func resolveUIMode(value string, forcePlain bool, stdout io.Writer) (uiDecision, error) {
	mode, err := parseUIMode(value)
	if err != nil {
		return uiDecision{}, err
	}
	if forcePlain || mode == uiPlain {
		return uiDecision{}, nil
	}
	tty := isTerminal(stdout)
	if mode == uiLive && !tty {
		return uiDecision{notice: "Live UI requested but stdout is not a TTY; falling back to plain output."}, nil
	}
	return uiDecision{live: tty}, nil
}

func defaultIsTerminal(stdout io.Writer) bool {
	switch w := stdout.(type) {
	case *os.File:
		return term.IsTerminal(int(w.Fd()))
	case interface{ Fd() uintptr }:
		return term.IsTerminal(int(w.Fd()))
	default:
		return false
	}
}
