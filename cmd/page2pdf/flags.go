package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// browserFlags select and configure the browser.
type browserFlags struct {
	binary     string
	options    []string
	remoteHost string
	remotePort int
	windowSize string
}

// pageFlags hold the output settings.
type pageFlags struct {
	format            string
	landscape         bool
	noMargins         bool
	includeBackground bool
	paperWidth        float64
	paperHeight       float64
	pageRanges        string
	scale             float64
}

// logFlags switch the log sink.
type logFlags struct {
	printLogs   bool
	printErrors bool
}

// timeoutFlags hold Go duration strings.
type timeoutFlags struct {
	connect string
	job     string
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common   commonFlags
	urls     []string
	outputs  []string
	browser  browserFlags
	page     pageFlags
	log      logFlags
	timeouts timeoutFlags

	// set records the flags given on the command line, so a false or zero
	// value can still override the config file.
	set map[string]bool
}

// changed reports whether name was given on the command line.
func (f *renderFlags) changed(name string) bool {
	return f.set[name]
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show progress logs and timing")
}

// addBrowserFlags adds browser selection flags to a FlagSet.
func addBrowserFlags(fs *flag.FlagSet, f *browserFlags) {
	fs.StringVar(&f.binary, "chrome-binary", "", "browser executable (skips detection)")
	fs.StringArrayVar(&f.options, "chrome-option", nil, "extra browser flag, repeatable")
	fs.StringVar(&f.remoteHost, "remote-host", "", "attach to a browser at this host instead of spawning one")
	fs.IntVar(&f.remotePort, "remote-port", 0, "debug port of the remote browser (default 9222)")
	fs.StringVar(&f.windowSize, "window-size", "", "browser window size W,H")
}

// addPageFlags adds output setting flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.format, "format", "f", "", "output format: pdf, png, jpeg, webp")
	fs.BoolVar(&f.landscape, "landscape", false, "landscape orientation")
	fs.BoolVar(&f.noMargins, "no-margins", false, "set all PDF margins to 0")
	fs.BoolVar(&f.includeBackground, "include-background", false, "print background graphics")
	fs.Float64Var(&f.paperWidth, "paper-width", 0, "paper width in inches")
	fs.Float64Var(&f.paperHeight, "paper-height", 0, "paper height in inches")
	fs.StringVar(&f.pageRanges, "page-ranges", "", "pages to print, e.g. 1-5, 8")
	fs.Float64Var(&f.scale, "scale", 0, "rendering scale (0.1-2)")
}

// addLogFlags adds log switches to a FlagSet.
func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.BoolVar(&f.printLogs, "print-logs", false, "print progress logs to stderr")
	fs.BoolVar(&f.printErrors, "print-errors", true, "print warnings and errors to stderr")
}

// addTimeoutFlags adds timeout flags to a FlagSet.
func addTimeoutFlags(fs *flag.FlagSet, f *timeoutFlags) {
	fs.StringVar(&f.connect, "connect-timeout", "", "wait for the browser debug port (e.g., 30s)")
	fs.StringVar(&f.job, "job-timeout", "", "bound one page render (e.g., 2m)")
}

// parseRenderFlags parses render flags and returns them with the positional args.
// pflag's own error output is silenced; callers print the returned error.
func parseRenderFlags(args []string) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	f := &renderFlags{set: map[string]bool{}}

	// StringArray, not StringSlice: URLs may contain commas.
	fs.StringArrayVarP(&f.urls, "url", "u", nil, "page to render, repeatable")
	fs.StringArrayVarP(&f.outputs, "output", "o", nil, "output file, paired with --url by order")

	addCommonFlags(fs, &f.common)
	addBrowserFlags(fs, &f.browser)
	addPageFlags(fs, &f.page)
	addLogFlags(fs, &f.log)
	addTimeoutFlags(fs, &f.timeouts)

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })

	return f, fs.Args(), nil
}
