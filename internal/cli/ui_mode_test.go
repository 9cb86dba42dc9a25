package cli

import (
	"io"
	"testing"
)

func TestResolveUIMode(t *testing.T) {
	cases := []struct {
		name       string
		mode       string
		forcePlain bool
		tty        bool
		wantLive   bool
		wantNotice bool
		wantErr    bool
	}{
		{name: "auto on a terminal", mode: "auto", tty: true, wantLive: true},
		{name: "empty means auto", mode: "", tty: true, wantLive: true},
		{name: "auto piped", mode: "auto"},
		{name: "plain", mode: "plain", tty: true},
		{name: "json or verbose", mode: "live", forcePlain: true, tty: true},
		{name: "live on a terminal", mode: "LIVE", tty: true, wantLive: true},
		{name: "live piped", mode: "live", wantNotice: true},
		{name: "unknown", mode: "fancy", tty: true, wantErr: true},
	}

	original := isTerminal
	t.Cleanup(func() { isTerminal = original })

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isTerminal = func(io.Writer) bool { return tc.tty }
			decision, err := resolveUIMode(tc.mode, tc.forcePlain, nil)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if decision.live != tc.wantLive {
				t.Fatalf("expected live=%v, got %v", tc.wantLive, decision.live)
			}
			if (decision.notice != "") != tc.wantNotice {
				t.Fatalf("unexpected notice %q", decision.notice)
			}
		})
	}
}
