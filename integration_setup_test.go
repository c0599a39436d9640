//go:build integration

package page2pdf

// Notes:
// - Integration tests need a real Chrome/Chromium. The binary comes from
//   ROD_BROWSER_BIN when set (Docker/CI images), otherwise from detection;
//   tests skip when neither finds one.
// - CI=true or an explicit binary adds --no-sandbox, as containers require.

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/alnah/go-page2pdf/internal/locator"
)

// ---------------------------------------------------------------------------
// Test Configuration
// ---------------------------------------------------------------------------

// testTimeout bounds a whole integration test.
const testTimeout = 60 * time.Second

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRenderer returns a Renderer for the local browser, or skips.
func newTestRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()

	bin := os.Getenv("ROD_BROWSER_BIN")
	if bin == "" {
		var err error
		if bin, err = locator.New().Detect(); err != nil {
			t.Skipf("no browser available: %v", err)
		}
	}

	base := []Option{
		WithChromeBinary(bin),
		WithLogger(NewLogger(testWriter{t}, testing.Verbose(), true)),
	}
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		base = append(base, WithChromeFlags("--no-sandbox"))
	}
	return NewRenderer(append(base, opts...)...)
}

// testWriter routes log output to t.Log.
type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

func assertValidPDF(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("data does not have PDF magic bytes, got prefix: %q", data[:min(10, len(data))])
	}
	if len(data) < 100 {
		t.Errorf("PDF data suspiciously small: %d bytes", len(data))
	}
}

func assertValidPNG(t *testing.T, data []byte) {
	t.Helper()

	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("data does not have PNG magic bytes, got prefix: %q", data[:min(8, len(data))])
	}
}
