package main

import (
	"errors"
	"os"

	page2pdf "github.com/alnah/go-page2pdf"
	"github.com/alnah/go-page2pdf/internal/config"
	"github.com/alnah/go-page2pdf/internal/fileutil"
)

// Exit codes for the page2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Every job rendered and saved
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // Output not writable
	ExitBrowser = 4 // Browser/DevTools errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, page2pdf.ErrBrowserNotFound) ||
		errors.Is(err, page2pdf.ErrPortSelection) ||
		errors.Is(err, page2pdf.ErrBrowserSpawn) ||
		errors.Is(err, page2pdf.ErrConnectionUnavailable) ||
		errors.Is(err, page2pdf.ErrProtocol) ||
		errors.Is(err, page2pdf.ErrRenderTimeout) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, page2pdf.ErrDeliver) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, fileutil.ErrEmptyPath) ||
		errors.Is(err, fileutil.ErrPathIsDir) ||
		errors.Is(err, fileutil.ErrNullInPath) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrOutputMismatch) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, page2pdf.ErrEmptyURL) ||
		errors.Is(err, page2pdf.ErrInvalidFormat) ||
		errors.Is(err, page2pdf.ErrInvalidPaperSize) {
		return ExitUsage
	}

	return ExitGeneral
}
