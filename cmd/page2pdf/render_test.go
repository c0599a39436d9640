package main

// Notes:
// - runRender: tested end to end against a fake BatchRenderer and an
//   in-memory file store. Exit codes, reports and hints are asserted on the
//   captured writers.
// - planRender: tested for the flags > env > config file precedence. Tests
//   that set env vars cannot use t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	page2pdf "github.com/alnah/go-page2pdf"
	"github.com/alnah/go-page2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestRunRender - Command behavior
// ---------------------------------------------------------------------------

func TestRunRender_WritesEachOutput(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{data: []byte("%PDF-1.4 fake")}
	env, stdout, stderr, store := testEnv(r)

	code := runRender(context.Background(), []string{
		"--url", "https://a.test", "-o", "a.pdf",
		"--url", "https://b.test", "-o", "out/b.pdf",
	}, env)

	if code != ExitSuccess {
		t.Fatalf("exit code = %d, want 0 (stderr: %s)", code, stderr.String())
	}
	for _, path := range []string{"a.pdf", "out/b.pdf"} {
		if string(store.files[path]) != "%PDF-1.4 fake" {
			t.Errorf("%s = %q, want rendered bytes", path, store.files[path])
		}
		if store.perms[path] != filePermissions {
			t.Errorf("%s perm = %o, want %o", path, store.perms[path], filePermissions)
		}
	}
	if len(r.jobs) != 2 || r.jobs[0].URL != "https://a.test" || r.jobs[1].URL != "https://b.test" {
		t.Errorf("jobs out of order: %+v", r.jobs)
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 0 failed") {
		t.Errorf("missing summary in %q", stdout.String())
	}
}

func TestRunRender_OneFailureContinues(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{
		data: []byte("%PDF"),
		fail: map[string]error{
			"https://b.test": fmt.Errorf("%w: waiting for load: %w", page2pdf.ErrRenderTimeout, context.DeadlineExceeded),
		},
	}
	env, stdout, stderr, store := testEnv(r)

	code := runRender(context.Background(), []string{
		"--url", "https://a.test", "-o", "a.pdf",
		"--url", "https://b.test", "-o", "b.pdf",
		"--url", "https://c.test", "-o", "c.pdf",
	}, env)

	if code != ExitBrowser {
		t.Errorf("exit code = %d, want %d", code, ExitBrowser)
	}
	if len(store.files) != 2 {
		t.Errorf("wrote %d files, want 2", len(store.files))
	}
	if _, ok := store.files["b.pdf"]; ok {
		t.Error("failed job wrote output")
	}
	if !strings.Contains(stdout.String(), "2 succeeded, 1 failed") {
		t.Errorf("missing summary in %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "--job-timeout") {
		t.Errorf("missing timeout hint in %q", stderr.String())
	}
}

func TestRunRender_FailureReport(t *testing.T) {
	t.Parallel()

	failing := map[string]error{"https://a.test": page2pdf.ErrProtocol}

	t.Run("printed when errors are not logged", func(t *testing.T) {
		t.Parallel()

		r := &fakeRenderer{fail: failing}
		env, _, stderr, _ := testEnv(r)

		runRender(context.Background(), []string{"https://a.test", "-o", "a.pdf", "--print-errors=false"}, env)

		if !strings.Contains(stderr.String(), "FAILED https://a.test") {
			t.Errorf("stderr = %q, want FAILED line", stderr.String())
		}
	})

	t.Run("left to the logger by default", func(t *testing.T) {
		t.Parallel()

		r := &fakeRenderer{fail: failing}
		env, _, stderr, _ := testEnv(r)

		runRender(context.Background(), []string{"https://a.test", "-o", "a.pdf"}, env)

		if strings.Contains(stderr.String(), "FAILED https://a.test") {
			t.Errorf("stderr = %q, want no duplicate FAILED line", stderr.String())
		}
	})
}

func TestRunRender_SetupError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		args     []string
		wantHint string
	}{
		{
			name:     "browser not found",
			err:      page2pdf.ErrBrowserNotFound,
			wantHint: "--chrome-binary",
		},
		{
			name:     "spawned browser unreachable",
			err:      fmt.Errorf("%w: 127.0.0.1:31000: %w", page2pdf.ErrConnectionUnavailable, context.DeadlineExceeded),
			wantHint: "--connect-timeout",
		},
		{
			name:     "remote browser unreachable",
			err:      page2pdf.ErrConnectionUnavailable,
			args:     []string{"--remote-host", "chrome.internal"},
			wantHint: "chrome.internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRenderer{setupErr: tt.err}
			env, _, stderr, store := testEnv(r)

			args := append([]string{"https://a.test", "-o", "a.pdf"}, tt.args...)
			code := runRender(context.Background(), args, env)

			if code != ExitBrowser {
				t.Errorf("exit code = %d, want %d", code, ExitBrowser)
			}
			if !strings.Contains(stderr.String(), tt.wantHint) {
				t.Errorf("stderr = %q, want hint containing %q", stderr.String(), tt.wantHint)
			}
			if len(store.files) != 0 {
				t.Error("setup failure wrote output")
			}
		})
	}
}

func TestRunRender_WriteError(t *testing.T) {
	t.Parallel()

	r := &fakeRenderer{data: []byte("%PDF")}
	env, _, stderr, store := testEnv(r)
	store.err = os.ErrPermission

	code := runRender(context.Background(), []string{"https://a.test", "-o", "a.pdf", "--print-errors=false"}, env)

	if code != ExitIO {
		t.Errorf("exit code = %d, want %d", code, ExitIO)
	}
	if !strings.Contains(stderr.String(), "writable") {
		t.Errorf("missing output hint in %q", stderr.String())
	}
}

func TestRunRender_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no url", []string{"-o", "a.pdf"}, ExitUsage, "no URL"},
		{"missing output", []string{"https://a.test"}, ExitUsage, "1 URL(s), 0 output(s)"},
		{"extra output", []string{"--url", "https://a.test", "-o", "a.pdf", "-o", "b.pdf"}, ExitUsage, "1 URL(s), 2 output(s)"},
		{"two positionals", []string{"https://a.test", "https://b.test", "-o", "a.pdf"}, ExitUsage, "at most one positional"},
		{"positional and --url", []string{"https://a.test", "--url", "https://b.test", "-o", "a.pdf"}, ExitUsage, "cannot be combined"},
		{"bad format", []string{"https://a.test", "-o", "a.gif", "--format", "gif"}, ExitUsage, "render.format"},
		{"bad paper size", []string{"https://a.test", "-o", "a.pdf", "--paper-width", "-1"}, ExitUsage, "paperWidth"},
		{"bad window size", []string{"https://a.test", "-o", "a.pdf", "--window-size", "wide"}, ExitUsage, "windowSize"},
		{"bad timeout", []string{"https://a.test", "-o", "a.pdf", "--job-timeout", "soon"}, ExitUsage, "timeouts.job"},
		{"unknown flag", []string{"https://a.test", "--bogus"}, ExitUsage, "bogus"},
		{"output is a directory", []string{"https://a.test", "-o", os.TempDir()}, ExitIO, "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &fakeRenderer{}
			env, _, stderr, _ := testEnv(r)

			code := runRender(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tt.wantErr)
			}
			if r.calls != 0 {
				t.Error("renderer called despite invalid input")
			}
		})
	}
}

func TestRunRender_Help(t *testing.T) {
	t.Parallel()

	env, stdout, _, _ := testEnv(&fakeRenderer{})

	if code := runRender(context.Background(), []string{"--help"}, env); code != ExitSuccess {
		t.Errorf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "Usage: page2pdf render") {
		t.Errorf("stdout = %q, want render usage", stdout.String())
	}
}

func TestRunRender_ConfigNotFoundHint(t *testing.T) {
	t.Parallel()

	env, _, stderr, _ := testEnv(&fakeRenderer{})

	code := runRender(context.Background(), []string{"https://a.test", "-o", "a.pdf", "-c", "no-such-config-name"}, env)

	if code != ExitUsage {
		t.Errorf("exit code = %d, want %d", code, ExitUsage)
	}
	if !strings.Contains(stderr.String(), "--config") {
		t.Errorf("stderr = %q, want config hint", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestPlanRender - Configuration precedence
// ---------------------------------------------------------------------------

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page2pdf.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestPlanRender_Precedence(t *testing.T) {
	path := writeConfig(t, `
browser:
  remoteHost: cfg-host
  flags: ["--from-config"]
render:
  format: png
  landscape: true
  scale: 0.5
log:
  printErrors: false
timeouts:
  job: 1m
`)
	t.Setenv("PAGE2PDF_FORMAT", "jpeg")
	t.Setenv("PAGE2PDF_REMOTE_HOST", "env-host")
	t.Setenv("PAGE2PDF_CHROME_OPTIONS", "--from-env")

	flags, pos, err := parseRenderFlags([]string{
		"https://a.test", "-o", "a.jpg",
		"-c", path,
		"--landscape=false",
		"--chrome-option", "--from-flag",
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env, _, _, _ := testEnv(&fakeRenderer{})

	plan, err := planRender(flags, pos, loadEnvConfig(), env)
	if err != nil {
		t.Fatalf("planRender: %v", err)
	}

	// env beats config
	if plan.opts.Format != page2pdf.FormatJPEG {
		t.Errorf("Format = %q, want jpeg", plan.opts.Format)
	}
	if plan.cfg.Browser.RemoteHost != "env-host" {
		t.Errorf("RemoteHost = %q, want env-host", plan.cfg.Browser.RemoteHost)
	}
	// flag beats config, including an explicit false
	if plan.opts.Landscape == nil || *plan.opts.Landscape {
		t.Errorf("Landscape = %v, want explicit false", plan.opts.Landscape)
	}
	// untouched config values survive
	if plan.opts.Scale == nil || *plan.opts.Scale != 0.5 {
		t.Errorf("Scale = %v, want 0.5", plan.opts.Scale)
	}
	if plan.cfg.Timeouts.Job != "1m" {
		t.Errorf("Timeouts.Job = %q, want 1m", plan.cfg.Timeouts.Job)
	}
	// flags accumulate in layer order
	want := []string{"--from-config", "--from-env", "--from-flag"}
	if strings.Join(plan.cfg.Browser.Flags, " ") != strings.Join(want, " ") {
		t.Errorf("Flags = %v, want %v", plan.cfg.Browser.Flags, want)
	}
	if plan.logs.printErrors || plan.logs.printLogs {
		t.Errorf("logs = %+v, want both off", plan.logs)
	}
}

func TestPlanRender_EnvConfigPath(t *testing.T) {
	path := writeConfig(t, "render:\n  noMargins: true\n")
	t.Setenv("PAGE2PDF_CONFIG", path)

	flags, pos, err := parseRenderFlags([]string{"https://a.test", "-o", "a.pdf"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env, _, _, _ := testEnv(&fakeRenderer{})

	plan, err := planRender(flags, pos, loadEnvConfig(), env)
	if err != nil {
		t.Fatalf("planRender: %v", err)
	}
	if plan.opts.Margins != page2pdf.MarginsZero {
		t.Errorf("Margins = %v, want MarginsZero", plan.opts.Margins)
	}
}

func TestPlanRender_VerboseEnablesLogs(t *testing.T) {
	t.Parallel()

	flags, pos, err := parseRenderFlags([]string{"https://a.test", "-o", "a.pdf", "-v"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env, _, _, _ := testEnv(&fakeRenderer{})

	plan, err := planRender(flags, pos, &envConfig{}, env)
	if err != nil {
		t.Fatalf("planRender: %v", err)
	}
	if !plan.logs.printLogs {
		t.Error("verbose did not enable progress logs")
	}
}

func TestPlanRender_DoesNotMutateDefaultConfig(t *testing.T) {
	t.Parallel()

	flags, pos, err := parseRenderFlags([]string{"https://a.test", "-o", "a.pdf", "--chrome-option", "--x"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env, _, _, _ := testEnv(&fakeRenderer{})
	env.Config.Browser.Flags = []string{"--base"}

	for range 2 {
		if _, err := planRender(flags, pos, &envConfig{}, env); err != nil {
			t.Fatalf("planRender: %v", err)
		}
	}
	if len(env.Config.Browser.Flags) != 1 {
		t.Errorf("shared config mutated: %v", env.Config.Browser.Flags)
	}
}

// ---------------------------------------------------------------------------
// TestBuildRendererOptions - Browser and timeout options
// ---------------------------------------------------------------------------

func TestBuildRendererOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.Config
		want    int
		wantErr error
	}{
		{name: "empty", want: 0},
		{
			name: "everything",
			cfg: config.Config{
				Browser: config.BrowserConfig{
					Binary:     "/usr/bin/chromium",
					Flags:      []string{"--no-sandbox"},
					RemoteHost: "chrome.internal",
					WindowSize: "1280x800",
				},
				Timeouts: config.TimeoutsConfig{Connect: "10s", Job: "30s"},
			},
			want: 6,
		},
		{
			name:    "bad window size",
			cfg:     config.Config{Browser: config.BrowserConfig{WindowSize: "0,0"}},
			wantErr: config.ErrInvalidValue,
		},
		{
			name:    "bad connect timeout",
			cfg:     config.Config{Timeouts: config.TimeoutsConfig{Connect: "-5s"}},
			wantErr: config.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts, err := buildRendererOptions(&tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(opts) != tt.want {
				t.Errorf("got %d options, want %d", len(opts), tt.want)
			}
			// Every option must apply cleanly to a real renderer.
			_ = page2pdf.NewRenderer(opts...)
		})
	}
}

// ---------------------------------------------------------------------------
// TestFileSink - Output writing
// ---------------------------------------------------------------------------

func TestFileSink(t *testing.T) {
	t.Parallel()

	t.Run("writes to path", func(t *testing.T) {
		t.Parallel()

		store := newFileStore()
		sink := fileSink("out.png", store.write)

		if err := sink.Deliver(page2pdf.Result{Data: []byte("png"), Format: page2pdf.FormatPNG}); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
		if string(store.files["out.png"]) != "png" {
			t.Errorf("stored %q", store.files["out.png"])
		}
	})

	t.Run("wraps write errors", func(t *testing.T) {
		t.Parallel()

		store := newFileStore()
		store.err = errors.New("disk full")
		sink := fileSink("out.pdf", store.write)

		err := sink.Deliver(page2pdf.Result{Data: []byte("x")})
		if !errors.Is(err, ErrWriteOutput) {
			t.Fatalf("error = %v, want ErrWriteOutput", err)
		}
		if !strings.Contains(err.Error(), "out.pdf") {
			t.Errorf("error %q does not name the path", err)
		}
	})
}
