package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrompterConfirm(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
		wantErr    bool
	}{
		{input: "\n", defaultYes: true, want: true},
		{input: "", defaultYes: false, want: false},
		{input: "YES\n", want: true},
		{input: "maybe\nn\n", defaultYes: true, want: false},
		{input: "maybe", wantErr: true},
	}
	for _, tc := range cases {
		var out bytes.Buffer
		got, err := newPrompter(strings.NewReader(tc.input), &out).confirm("Proceed?", tc.defaultYes)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.input, tc.want, got)
		}
	}
}

func TestPrompterText(t *testing.T) {
	var out bytes.Buffer
	ask := newPrompter(strings.NewReader("\n\n  http://rag:9000  \n"), &out)
	got, err := ask.text("Backend URL", "http://localhost:8000")
	if err != nil || got != "http://localhost:8000" {
		t.Fatalf("expected default, got %q (%v)", got, err)
	}
	got, err = ask.text("Backend URL", "")
	if err != nil || got != "http://rag:9000" {
		t.Fatalf("expected typed value, got %q (%v)", got, err)
	}
	if !strings.Contains(out.String(), "Backend URL [http://localhost:8000]: ") {
		t.Fatalf("unexpected prompt %q", out.String())
	}
	if _, err := ask.text("Subject", ""); err == nil {
		t.Fatalf("expected error once input runs out")
	}
}
