package main

// Notes:
// - runMain: we test command dispatch and exit codes. Rendering goes through
//   a fake BatchRenderer; the real browser path is covered by the root
//   package integration tests.
// - main() itself is not tested: it only wires os.Args, signals and os.Exit.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
		wantRender bool
	}{
		{
			name:       "no args prints usage",
			args:       nil,
			wantCode:   ExitUsage,
			wantStderr: "Usage: page2pdf",
		},
		{
			name:       "version",
			args:       []string{"version"},
			wantCode:   ExitSuccess,
			wantStdout: "page2pdf " + Version,
		},
		{
			name:       "--version",
			args:       []string{"--version"},
			wantCode:   ExitSuccess,
			wantStdout: "page2pdf " + Version,
		},
		{
			name:       "help",
			args:       []string{"help"},
			wantCode:   ExitSuccess,
			wantStdout: "Commands:",
		},
		{
			name:       "unknown command",
			args:       []string{"convert"},
			wantCode:   ExitUsage,
			wantStderr: "unknown command: convert",
		},
		{
			name:       "render command",
			args:       []string{"render", "https://example.com", "-o", "out.pdf"},
			wantCode:   ExitSuccess,
			wantStdout: "Created out.pdf",
			wantRender: true,
		},
		{
			name:       "URL shorthand renders",
			args:       []string{"https://example.com", "-o", "out.pdf"},
			wantCode:   ExitSuccess,
			wantRender: true,
		},
		{
			name:       "flag shorthand renders",
			args:       []string{"--url", "https://example.com", "-o", "out.pdf"},
			wantCode:   ExitSuccess,
			wantRender: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRenderer{data: []byte("%PDF-1.4")}
			env, stdout, stderr, _ := testEnv(r)

			code := runMain(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want it to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantStderr)
			}
			if rendered := r.calls > 0; rendered != tt.wantRender {
				t.Errorf("rendered = %v, want %v", rendered, tt.wantRender)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerbose - Pre-parse verbose detection
// ---------------------------------------------------------------------------

func TestHasVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"render", "-v"}, true},
		{[]string{"render", "--verbose", "https://example.com"}, true},
		{[]string{"render", "--print-logs"}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := hasVerbose(tt.args); got != tt.want {
			t.Errorf("hasVerbose(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}
