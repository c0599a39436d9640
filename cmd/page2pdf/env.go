package main

import (
	"io"
	"os"

	page2pdf "github.com/alnah/go-page2pdf"
	"github.com/alnah/go-page2pdf/internal/config"
	"github.com/alnah/go-page2pdf/internal/fileutil"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, configuration, the renderer factory and file output.
type Environment struct {
	Stdout io.Writer
	Stderr io.Writer
	Config *config.Config // used when no --config / PAGE2PDF_CONFIG is given

	// NewRenderer builds the renderer for one render command.
	NewRenderer func(opts ...page2pdf.Option) BatchRenderer

	// WriteFile stores one rendered output.
	WriteFile func(path string, data []byte, perm os.FileMode) error
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Config: config.DefaultConfig(),
		NewRenderer: func(opts ...page2pdf.Option) BatchRenderer {
			return page2pdf.NewRenderer(opts...)
		},
		WriteFile: fileutil.WriteFileAtomic,
	}
}
