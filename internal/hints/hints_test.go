package hints

// Notes:
// - ForBrowserStart tests cannot use t.Parallel() because they:
//   1. Use t.Setenv() which modifies process environment
//   2. Modify the package-level IsInContainer variable

import (
	"strings"
	"testing"
)

func clearCI(t *testing.T) {
	t.Helper()
	for _, k := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL"} {
		t.Setenv(k, "")
	}
}

func TestForBrowserStart_InCI(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	clearCI(t)
	t.Setenv("CI", "true")

	hint := ForBrowserStart(nil)

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--no-sandbox") {
		t.Error("expected --no-sandbox suggestion in CI")
	}
	if !strings.Contains(hint, "--connect-timeout") {
		t.Error("expected --connect-timeout suggestion")
	}
}

func TestForBrowserStart_InDocker(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	clearCI(t)

	if hint := ForBrowserStart(nil); !strings.Contains(hint, "--no-sandbox") {
		t.Error("expected --no-sandbox suggestion in Docker")
	}
}

func TestForBrowserStart_SandboxAlreadyDisabled(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return true }

	clearCI(t)

	hint := ForBrowserStart([]string{"--lang=en", "--no-sandbox"})
	if strings.Contains(hint, "--no-sandbox") {
		t.Error("should not suggest --no-sandbox when already passed")
	}
}

func TestForBrowserStart_Desktop(t *testing.T) {
	orig := IsInContainer
	defer func() { IsInContainer = orig }()
	IsInContainer = func() bool { return false }

	clearCI(t)

	hint := ForBrowserStart(nil)
	if strings.Contains(hint, "--no-sandbox") {
		t.Error("should not suggest --no-sandbox outside CI/Docker")
	}
}

func TestForBrowserNotFound(t *testing.T) {
	t.Parallel()

	hint := ForBrowserNotFound()
	if !strings.Contains(hint, "--chrome-binary") || !strings.Contains(hint, "PAGE2PDF_CHROME_BINARY") {
		t.Errorf("hint = %q", hint)
	}
}

func TestForRemote(t *testing.T) {
	t.Parallel()

	hint := ForRemote("chrome.internal:9222")
	if !strings.Contains(hint, "chrome.internal:9222") || !strings.Contains(hint, "--remote-debugging-port") {
		t.Errorf("hint = %q", hint)
	}
}

func TestForTimeout(t *testing.T) {
	t.Parallel()

	hint := ForTimeout()

	if !strings.Contains(hint, "hint:") {
		t.Error("expected hint prefix")
	}
	if !strings.Contains(hint, "--job-timeout") {
		t.Error("expected --job-timeout flag mention")
	}
}

func TestForConfigNotFound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		paths    []string
		contains string
	}{
		{
			name:     "empty paths",
			paths:    []string{},
			contains: "--config",
		},
		{
			name:     "user config path suggested",
			paths:    []string{"work.yaml", "/home/u/.config/go-page2pdf/work.yaml"},
			contains: "or create /home/u/.config/go-page2pdf/work.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if hint := ForConfigNotFound(tt.paths); !strings.Contains(hint, tt.contains) {
				t.Errorf("hint = %q, want %q", hint, tt.contains)
			}
		})
	}
}

func TestFormatHints(t *testing.T) {
	t.Parallel()

	if got := formatHints(nil); got != "" {
		t.Errorf("formatHints(nil) = %q, want empty", got)
	}
	if got := formatHints([]string{"a", "b"}); got != "\n  hint: a; b" {
		t.Errorf("formatHints() = %q", got)
	}
}
