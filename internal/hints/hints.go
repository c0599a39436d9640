// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"strings"

	"github.com/alnah/go-page2pdf/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// inCI reports whether a known CI environment variable is set.
func inCI() bool {
	return os.Getenv("CI") != "" ||
		os.Getenv("GITHUB_ACTIONS") != "" ||
		os.Getenv("GITLAB_CI") != "" ||
		os.Getenv("JENKINS_URL") != ""
}

// ForBrowserNotFound returns hints when no Chrome executable was detected.
func ForBrowserNotFound() string {
	return format("install Chrome or Chromium, or point --chrome-binary (PAGE2PDF_CHROME_BINARY) at one")
}

// ForBrowserStart returns hints for a browser that failed to start or never
// opened its debug port. Detects CI/Docker and suggests --no-sandbox.
func ForBrowserStart(flags []string) string {
	var hints []string

	if (inCI() || IsInContainer()) && !hasFlag(flags, "--no-sandbox") {
		hints = append(hints, "add --chrome-option=--no-sandbox for Docker/CI")
	}
	hints = append(hints, "raise --connect-timeout on slow machines")

	return formatHints(hints)
}

// ForRemote returns hints for an unreachable remote browser.
func ForRemote(host string) string {
	return format("check that the browser at " + host +
		" runs with --remote-debugging-port and --remote-debugging-address=0.0.0.0")
}

// ForTimeout returns a hint about increasing the timeout for slow pages.
func ForTimeout() string {
	return format("for slow pages, use --job-timeout flag")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in ~/.config/go-page2pdf/.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-page2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file errors.
func ForOutputDirectory() string {
	return format("check parent directory is writable")
}

func hasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name || strings.HasPrefix(f, name+"=") {
			return true
		}
	}
	return false
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
