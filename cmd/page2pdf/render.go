package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	page2pdf "github.com/alnah/go-page2pdf"
	"github.com/alnah/go-page2pdf/internal/config"
	"github.com/alnah/go-page2pdf/internal/fileutil"
	"github.com/alnah/go-page2pdf/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrNoInput        = errors.New("no URL specified")
	ErrOutputMismatch = errors.New("each URL needs exactly one output")
	ErrWriteOutput    = errors.New("failed to write output file")
)

// filePermissions is the mode of written outputs: rw-r--r--.
const filePermissions = 0o644

// BatchRenderer is the slice of page2pdf.Renderer the render command uses.
type BatchRenderer interface {
	RenderMany(ctx context.Context, jobs []page2pdf.Job, opts page2pdf.Options) ([]page2pdf.JobResult, error)
}

// Compile-time interface implementation check.
var _ BatchRenderer = (*page2pdf.Renderer)(nil)

// renderPlan is everything resolved from flags, env and config before the
// browser is touched.
type renderPlan struct {
	cfg      *config.Config
	jobs     []page2pdf.Job
	outputs  []string // parallel to jobs
	opts     page2pdf.Options
	renderer []page2pdf.Option
	logs     logSwitches
}

// logSwitches are the resolved printLogs/printErrors values.
type logSwitches struct {
	printLogs   bool
	printErrors bool
}

// runRender executes the render command and returns an exit code.
func runRender(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseRenderFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printRenderUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		fmt.Fprintln(env.Stderr, "Run 'page2pdf help render' for usage.")
		return ExitUsage
	}

	warnUnknownEnvVars(env.Stderr)

	plan, err := planRender(flags, positional, loadEnvConfig(), env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, configHint(err, flags.common.config))
		return exitCodeFor(err)
	}

	log := page2pdf.NewLogger(env.Stderr, plan.logs.printLogs, plan.logs.printErrors)
	renderer := env.NewRenderer(append(plan.renderer, page2pdf.WithLogger(log))...)

	results, err := renderer.RenderMany(ctx, plan.jobs, plan.opts)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, plan.cfg))
		return exitCodeFor(err)
	}

	return printResults(results, plan, flags.common, env)
}

// planRender merges every configuration layer and builds the jobs.
func planRender(flags *renderFlags, positional []string, envCfg *envConfig, env *Environment) (*renderPlan, error) {
	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath, env.Config)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return nil, err
	}
	rendererOpts, err := buildRendererOptions(cfg)
	if err != nil {
		return nil, err
	}
	jobs, outputs, err := buildJobs(flags, positional, env)
	if err != nil {
		return nil, err
	}

	return &renderPlan{
		cfg:      cfg,
		jobs:     jobs,
		outputs:  outputs,
		opts:     opts,
		renderer: rendererOpts,
		logs:     resolveLogSwitches(cfg),
	}, nil
}

// loadConfig picks the config file: --config, then PAGE2PDF_CONFIG, then the
// environment's default. The returned config is a copy the caller may modify.
func loadConfig(flagName, envName string, fallback *config.Config) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name != "" {
		return config.LoadConfig(name)
	}
	if fallback == nil {
		return config.DefaultConfig(), nil
	}
	cfg := *fallback
	cfg.Browser.Flags = slices.Clone(fallback.Browser.Flags)
	return &cfg, nil
}

// mergeFlags applies command-line flags over cfg. Only flags that were
// actually given override, so an explicit false still wins.
func mergeFlags(f *renderFlags, cfg *config.Config) {
	if f.changed("chrome-binary") {
		cfg.Browser.Binary = f.browser.binary
	}
	cfg.Browser.Flags = append(cfg.Browser.Flags, f.browser.options...)
	if f.changed("remote-host") {
		cfg.Browser.RemoteHost = f.browser.remoteHost
	}
	if f.changed("remote-port") {
		cfg.Browser.RemotePort = f.browser.remotePort
	}
	if f.changed("window-size") {
		cfg.Browser.WindowSize = f.browser.windowSize
	}

	if f.changed("format") {
		cfg.Render.Format = f.page.format
	}
	if f.changed("landscape") {
		cfg.Render.Landscape = boolPtr(f.page.landscape)
	}
	if f.changed("no-margins") {
		cfg.Render.NoMargins = f.page.noMargins
	}
	if f.changed("include-background") {
		cfg.Render.IncludeBackground = boolPtr(f.page.includeBackground)
	}
	if f.changed("paper-width") {
		cfg.Render.PaperWidth = floatPtr(f.page.paperWidth)
	}
	if f.changed("paper-height") {
		cfg.Render.PaperHeight = floatPtr(f.page.paperHeight)
	}
	if f.changed("page-ranges") {
		cfg.Render.PageRanges = f.page.pageRanges
	}
	if f.changed("scale") {
		cfg.Render.Scale = floatPtr(f.page.scale)
	}

	if f.changed("connect-timeout") {
		cfg.Timeouts.Connect = f.timeouts.connect
	}
	if f.changed("job-timeout") {
		cfg.Timeouts.Job = f.timeouts.job
	}

	if f.changed("print-logs") {
		cfg.Log.PrintLogs = boolPtr(f.log.printLogs)
	}
	if f.changed("print-errors") {
		cfg.Log.PrintErrors = boolPtr(f.log.printErrors)
	}
	if f.common.verbose {
		cfg.Log.PrintLogs = boolPtr(true)
	}
}

// resolveLogSwitches applies the defaults: no progress logs, errors printed.
func resolveLogSwitches(cfg *config.Config) logSwitches {
	s := logSwitches{printLogs: false, printErrors: true}
	if cfg.Log.PrintLogs != nil {
		s.printLogs = *cfg.Log.PrintLogs
	}
	if cfg.Log.PrintErrors != nil {
		s.printErrors = *cfg.Log.PrintErrors
	}
	return s
}

// buildOptions converts the merged render section to page2pdf.Options.
func buildOptions(cfg *config.Config) (page2pdf.Options, error) {
	format, err := page2pdf.ParseFormat(cfg.Render.Format)
	if err != nil {
		return page2pdf.Options{}, err
	}

	opts := page2pdf.Options{
		Format:            format,
		Landscape:         cfg.Render.Landscape,
		IncludeBackground: cfg.Render.IncludeBackground,
		PaperWidth:        cfg.Render.PaperWidth,
		PaperHeight:       cfg.Render.PaperHeight,
		PageRanges:        cfg.Render.PageRanges,
		Scale:             cfg.Render.Scale,
	}
	if cfg.Render.NoMargins {
		opts.Margins = page2pdf.MarginsZero
	}
	return opts, opts.Validate()
}

// buildRendererOptions converts the browser and timeout sections.
func buildRendererOptions(cfg *config.Config) ([]page2pdf.Option, error) {
	var opts []page2pdf.Option

	if cfg.Browser.Binary != "" {
		opts = append(opts, page2pdf.WithChromeBinary(cfg.Browser.Binary))
	}
	if len(cfg.Browser.Flags) > 0 {
		opts = append(opts, page2pdf.WithChromeFlags(cfg.Browser.Flags...))
	}
	if cfg.Browser.RemoteHost != "" {
		opts = append(opts, page2pdf.WithRemote(cfg.Browser.RemoteHost, cfg.Browser.RemotePort))
	}
	if cfg.Browser.WindowSize != "" {
		w, h, err := config.ParseWindowSize(cfg.Browser.WindowSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
		}
		opts = append(opts, page2pdf.WithWindowSize(w, h))
	}

	connect, err := cfg.ConnectTimeout()
	if err != nil {
		return nil, err
	}
	if connect > 0 {
		opts = append(opts, page2pdf.WithConnectTimeout(connect))
	}
	job, err := cfg.JobTimeout()
	if err != nil {
		return nil, err
	}
	if job > 0 {
		opts = append(opts, page2pdf.WithJobTimeout(job))
	}

	return opts, nil
}

// buildJobs pairs URLs with outputs by order. A single URL may be positional.
func buildJobs(f *renderFlags, positional []string, env *Environment) ([]page2pdf.Job, []string, error) {
	urls := slices.Clone(f.urls)
	switch {
	case len(positional) > 1:
		return nil, nil, fmt.Errorf("%w: at most one positional URL, got %d (use --url)", ErrUsage, len(positional))
	case len(positional) == 1 && len(urls) > 0:
		return nil, nil, fmt.Errorf("%w: positional URL cannot be combined with --url", ErrUsage)
	case len(positional) == 1:
		urls = positional
	}

	if len(urls) == 0 {
		return nil, nil, ErrNoInput
	}
	if len(urls) != len(f.outputs) {
		return nil, nil, fmt.Errorf("%w: %d URL(s), %d output(s)", ErrOutputMismatch, len(urls), len(f.outputs))
	}

	jobs := make([]page2pdf.Job, len(urls))
	for i, u := range urls {
		out := f.outputs[i]
		if err := fileutil.ValidateOutputPath(out); err != nil {
			return nil, nil, fmt.Errorf("output for %s: %w", u, err)
		}
		jobs[i] = page2pdf.Job{URL: u, Sink: fileSink(out, env.WriteFile)}
	}
	return jobs, slices.Clone(f.outputs), nil
}

// fileSink writes a result to path.
func fileSink(path string, write func(string, []byte, os.FileMode) error) page2pdf.Sink {
	return page2pdf.SinkFunc(func(r page2pdf.Result) error {
		if err := write(path, r.Data, filePermissions); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWriteOutput, path, err)
		}
		return nil
	})
}

// printResults reports each job and returns the exit code of the first failure.
// When the logger already prints errors, failures are not repeated here.
func printResults(results []page2pdf.JobResult, plan *renderPlan, common commonFlags, env *Environment) int {
	var (
		firstErr  error
		succeeded int
	)

	for i, r := range results {
		if r.Err != nil {
			if firstErr == nil {
				firstErr = r.Err
			}
			if !plan.logs.printErrors && !plan.logs.printLogs {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.URL, r.Err)
			}
			if h := hintFor(r.Err, plan.cfg); h != "" {
				fmt.Fprintln(env.Stderr, strings.TrimPrefix(h, "\n"))
			}
			continue
		}

		succeeded++
		if common.quiet {
			continue
		}
		if common.verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d bytes, %v)\n", r.URL, plan.outputs[i], r.Size, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", plan.outputs[i])
		}
	}

	if !common.quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, len(results)-succeeded)
	}

	return exitCodeFor(firstErr)
}

// hintFor returns an actionable hint for a render error, or "".
func hintFor(err error, cfg *config.Config) string {
	remote := cfg != nil && cfg.Browser.RemoteHost != ""
	var flags []string
	if cfg != nil {
		flags = cfg.Browser.Flags
	}

	switch {
	case errors.Is(err, page2pdf.ErrBrowserNotFound):
		return hints.ForBrowserNotFound()
	case errors.Is(err, page2pdf.ErrConnectionUnavailable) && remote:
		return hints.ForRemote(cfg.Browser.RemoteHost)
	case errors.Is(err, page2pdf.ErrBrowserSpawn),
		errors.Is(err, page2pdf.ErrConnectionUnavailable):
		return hints.ForBrowserStart(flags)
	case errors.Is(err, page2pdf.ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, page2pdf.ErrDeliver):
		return hints.ForOutputDirectory()
	}
	return ""
}

// configHint suggests where to put a config that was not found. flagName
// is the --config value, if any.
func configHint(err error, flagName string) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	name := flagName
	if name == "" {
		name = os.Getenv("PAGE2PDF_CONFIG")
	}
	if strings.ContainsAny(name, `/\`) {
		return ""
	}
	return hints.ForConfigNotFound(config.SearchPaths(name))
}

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }
