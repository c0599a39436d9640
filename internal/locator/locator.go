// Package locator resolves which installed Chrome/Chromium executable to launch.
package locator

import (
	"errors"
	"os/exec"
	"runtime"
	"slices"

	"github.com/go-rod/rod/lib/launcher"
)

// ErrBrowserNotFound is returned when no candidate executable exists.
var ErrBrowserNotFound = errors.New("no Chrome/Chromium executable found")

// Candidate groups. The order across groups is fixed on every platform:
// Linux names, then the Windows name, then the macOS app bundles.
var (
	linuxCandidates = []string{
		"google-chrome-unstable",
		"google-chrome-beta",
		"google-chrome-stable",
		"google-chrome",
		"chromium",
		"chromium-browser",
	}

	windowsCandidates = []string{
		"chrome",
	}

	darwinCandidates = []string{
		"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		"/Applications/Google Chrome Dev.app/Contents/MacOS/Google Chrome Dev",
		"/Applications/Google Chrome Beta.app/Contents/MacOS/Google Chrome Beta",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
)

// Candidates returns the ordered candidate list for goos. App bundles are
// only tried on macOS. The returned slice is a copy.
func Candidates(goos string) []string {
	list := slices.Concat(linuxCandidates, windowsCandidates)
	if goos == "darwin" {
		list = append(list, darwinCandidates...)
	}
	return list
}

// Locator tests an ordered candidate list with a single capability check.
type Locator struct {
	// Candidates are executable names or absolute paths, tried in order.
	Candidates []string

	// Exists reports whether a candidate is runnable.
	Exists func(candidate string) bool

	// Fallback is consulted after every candidate failed. May be nil.
	Fallback func() (string, bool)
}

// New returns a Locator for the current platform. Candidates are checked with
// exec.LookPath; go-rod's known install locations are the last resort.
func New() *Locator {
	return &Locator{
		Candidates: Candidates(runtime.GOOS),
		Exists:     lookPathExists,
		Fallback:   launcher.LookPath,
	}
}

// Detect returns the first existing candidate.
func (l *Locator) Detect() (string, error) {
	for _, c := range l.Candidates {
		if l.Exists(c) {
			return c, nil
		}
	}
	if l.Fallback != nil {
		if path, ok := l.Fallback(); ok {
			return path, nil
		}
	}
	return "", ErrBrowserNotFound
}

func lookPathExists(candidate string) bool {
	_, err := exec.LookPath(candidate)
	return err == nil
}
