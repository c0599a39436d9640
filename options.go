package page2pdf

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-page2pdf/internal/render"
)

// Format is the output encoding.
type Format string

// Supported output formats.
const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
)

// ParseFormat resolves a user-supplied format name. Empty means PDF.
func ParseFormat(s string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", "pdf":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %q (must be pdf, png, jpeg or webp)", ErrInvalidFormat, s)
	}
}

// Margins selects the page margins of a PDF.
type Margins int

// Margin presets.
const (
	MarginsDefault Margins = iota // browser default
	MarginsZero                   // all four margins 0
)

// Scale bounds accepted by Page.printToPDF.
const (
	MinScale = 0.1
	MaxScale = 2.0
)

// Options configures a single render. Nil pointers leave the browser default.
// PDF-only fields are ignored for image formats.
type Options struct {
	Format            Format
	Landscape         *bool
	Margins           Margins
	IncludeBackground *bool
	PaperWidth        *float64 // inches
	PaperHeight       *float64 // inches
	PageRanges        string   // e.g. "1-5, 8"
	Scale             *float64 // clamped to [MinScale, MaxScale]
}

// Validate checks the format and paper dimensions.
func (o Options) Validate() error {
	if _, err := ParseFormat(string(o.Format)); err != nil {
		return err
	}
	if err := validDimension("paper width", o.PaperWidth); err != nil {
		return err
	}
	return validDimension("paper height", o.PaperHeight)
}

func validDimension(name string, v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return fmt.Errorf("%w: %s %v (must be positive inches)", ErrInvalidPaperSize, name, *v)
	}
	return nil
}

// format returns the normalized format. Call Validate first.
func (o Options) format() Format {
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return FormatPDF
	}
	return f
}

// captureRequest maps o onto the protocol parameters for url.
// Out-of-range scales are clamped with a warning on log.
func (o Options) captureRequest(url string, log *slog.Logger) render.Request {
	req := render.Request{URL: url}

	f := o.format()
	if f != FormatPDF {
		req.Screenshot = &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormat(f)}
		return req
	}

	pdf := &proto.PagePrintToPDF{PageRanges: o.PageRanges}
	if o.Landscape != nil {
		pdf.Landscape = *o.Landscape
	}
	if o.Margins == MarginsZero {
		pdf.MarginTop = floatPtr(0)
		pdf.MarginBottom = floatPtr(0)
		pdf.MarginLeft = floatPtr(0)
		pdf.MarginRight = floatPtr(0)
	}
	if o.IncludeBackground != nil {
		pdf.PrintBackground = *o.IncludeBackground
	}
	if o.PaperWidth != nil {
		pdf.PaperWidth = floatPtr(*o.PaperWidth)
	}
	if o.PaperHeight != nil {
		pdf.PaperHeight = floatPtr(*o.PaperHeight)
	}
	if o.Scale != nil {
		pdf.Scale = floatPtr(clampScale(*o.Scale, log))
	}
	req.PDF = pdf
	return req
}

func clampScale(s float64, log *slog.Logger) float64 {
	switch {
	case s < MinScale:
		log.Warn("scale cannot be lower than 0.1, using 0.1", "scale", s)
		return MinScale
	case s > MaxScale:
		log.Warn("scale cannot be higher than 2, using 2", "scale", s)
		return MaxScale
	}
	return s
}

func floatPtr(v float64) *float64 {
	return &v
}
