package page2pdf

import (
	"errors"

	"github.com/alnah/go-page2pdf/internal/devtools"
	"github.com/alnah/go-page2pdf/internal/locator"
	"github.com/alnah/go-page2pdf/internal/port"
	"github.com/alnah/go-page2pdf/internal/process"
	"github.com/alnah/go-page2pdf/internal/render"
)

// Session setup errors. Any of them aborts the whole run.
var (
	ErrBrowserNotFound       = locator.ErrBrowserNotFound
	ErrPortSelection         = port.ErrExhausted
	ErrBrowserSpawn          = process.ErrSpawn
	ErrConnectionUnavailable = devtools.ErrUnavailable
)

// Per-job errors. In a batch they fail one job and the rest continue.
var (
	ErrProtocol      = render.ErrProtocol
	ErrRenderTimeout = render.ErrTimeout
	ErrEmptyURL      = errors.New("url cannot be empty")
	ErrDeliver       = errors.New("failed to deliver result")
)

// Options validation errors.
var (
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidPaperSize = errors.New("invalid paper size")
)
