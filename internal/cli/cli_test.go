package cli

import (
	"strings"
	"testing"
)

func TestRunDispatch(t *testing.T) {
	cases := []struct {
		name      string
		args      []string
		wantCode  int
		wantOut   string
		wantErr   string
		wantQuiet bool
		wantNoOut bool
	}{
		{name: "no args", args: nil, wantCode: ExitUsage, wantOut: "Usage:", wantQuiet: true},
		{name: "long help", args: []string{"--help"}, wantCode: ExitOK, wantOut: "ragdesk <command> [options]", wantQuiet: true},
		{name: "help word", args: []string{"help"}, wantCode: ExitOK, wantOut: "Commands:", wantQuiet: true},
		{name: "unknown", args: []string{"nope"}, wantCode: ExitUsage, wantErr: "Unknown command: nope", wantNoOut: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, out, errOut := runCLI(tc.args...)
			if code != tc.wantCode {
				t.Fatalf("expected exit %d, got %d", tc.wantCode, code)
			}
			if tc.wantOut != "" && !strings.Contains(out, tc.wantOut) {
				t.Fatalf("expected %q in stdout, got %q", tc.wantOut, out)
			}
			if tc.wantErr != "" && !strings.Contains(errOut, tc.wantErr) {
				t.Fatalf("expected %q in stderr, got %q", tc.wantErr, errOut)
			}
			if tc.wantQuiet && errOut != "" {
				t.Fatalf("expected no stderr, got %q", errOut)
			}
			if tc.wantNoOut && out != "" {
				t.Fatalf("expected no stdout, got %q", out)
			}
		})
	}
}

func TestRootHelpListsEveryCommand(t *testing.T) {
	_, out, _ := runCLI("--help")
	for _, cmd := range commands {
		if !strings.Contains(out, "  "+cmd.Name+" ") {
			t.Fatalf("expected command %q in usage:\n%s", cmd.Name, out)
		}
	}
}

func TestCommandHelp(t *testing.T) {
	for _, cmd := range commands {
		for _, flag := range []string{"--help", "-h"} {
			code, out, errOut := runCLI(cmd.Name, flag)
			if code != ExitOK || errOut != "" {
				t.Fatalf("%s %s: exit %d, stderr %q", cmd.Name, flag, code, errOut)
			}
			for _, line := range cmd.Usage {
				if !strings.HasPrefix(line, "ragdesk "+cmd.Name) {
					t.Fatalf("%s: usage line %q does not name the command", cmd.Name, line)
				}
				if !strings.Contains(out, line) {
					t.Fatalf("%s: expected usage line %q", cmd.Name, line)
				}
			}
			if !strings.Contains(out, cmd.Summary) {
				t.Fatalf("%s: expected summary in help", cmd.Name)
			}
		}
	}
}
