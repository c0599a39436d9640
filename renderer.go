package page2pdf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-page2pdf/internal/devtools"
	"github.com/alnah/go-page2pdf/internal/locator"
	"github.com/alnah/go-page2pdf/internal/port"
	"github.com/alnah/go-page2pdf/internal/process"
	"github.com/alnah/go-page2pdf/internal/render"
)

// Default timeouts.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultJobTimeout     = 2 * time.Minute
)

// Renderer renders pages through a browser session opened per call.
// A Renderer holds no browser between calls and is safe for concurrent use;
// each call then runs its own browser.
type Renderer struct {
	cfg rendererConfig
	log *slog.Logger

	locator   browserLocator
	ports     portSelector
	spawner   spawner
	connector connector

	// newPipeline builds the page renderer for a session logger.
	newPipeline func(*slog.Logger) pageRenderer
}

type rendererConfig struct {
	chromeBinary   string
	chromeFlags    []string
	remote         *devtools.Endpoint
	windowSize     *process.WindowSize
	connectTimeout time.Duration
	jobTimeout     time.Duration
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l
		}
	}
}

// WithChromeBinary skips detection and launches path.
func WithChromeBinary(path string) Option {
	return func(r *Renderer) {
		r.cfg.chromeBinary = path
	}
}

// WithChromeFlags appends flags to the browser command line, verbatim.
func WithChromeFlags(flags ...string) Option {
	return func(r *Renderer) {
		r.cfg.chromeFlags = append(r.cfg.chromeFlags, flags...)
	}
}

// WithRemote attaches to a browser already listening on host:port instead of
// spawning one. A zero port means 9222.
func WithRemote(host string, port int) Option {
	return func(r *Renderer) {
		if port == 0 {
			port = devtools.DefaultRemotePort
		}
		r.cfg.remote = &devtools.Endpoint{Host: host, Port: port}
	}
}

// WithWindowSize sets the --window-size of a spawned browser.
func WithWindowSize(width, height int) Option {
	return func(r *Renderer) {
		r.cfg.windowSize = &process.WindowSize{Width: width, Height: height}
	}
}

// WithConnectTimeout bounds the wait for the debug endpoint.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithConnectTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("page2pdf: WithConnectTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.connectTimeout = d
	}
}

// WithJobTimeout bounds a single render, all wait phases included.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithJobTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("page2pdf: WithJobTimeout duration must be positive")
	}
	return func(r *Renderer) {
		r.cfg.jobTimeout = d
	}
}

// NewRenderer creates a Renderer. Without WithRemote, each call spawns a
// local browser found on the PATH (or set with WithChromeBinary).
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		cfg: rendererConfig{
			connectTimeout: DefaultConnectTimeout,
			jobTimeout:     DefaultJobTimeout,
		},
		log:     slog.New(slog.DiscardHandler),
		locator: locator.New(),
		ports:   port.New(),
		spawner: osSpawner{},
		newPipeline: func(l *slog.Logger) pageRenderer {
			return render.New(l)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.connector = &rodConnector{waiter: devtools.NewWaiter(r.log)}
	return r
}

// RenderOne renders url and hands the result to sink. The browser session is
// torn down before returning, whatever the outcome.
func (r *Renderer) RenderOne(ctx context.Context, url string, sink Sink, opts Options) error {
	if err := checkURL(url); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	s, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	_, err = r.runJob(ctx, s, Job{URL: url, Sink: sink}, opts)
	return err
}

// RenderBuffer renders url and returns the bytes.
func (r *Renderer) RenderBuffer(ctx context.Context, url string, opts Options) ([]byte, error) {
	var data []byte
	sink := SinkFunc(func(res Result) error {
		data = res.Data
		return nil
	})
	if err := r.RenderOne(ctx, url, sink, opts); err != nil {
		return nil, err
	}
	return data, nil
}

// RenderMany renders jobs in order through one browser session.
// A failed job is logged and recorded in its JobResult; the batch goes on.
// The error return is reserved for invalid options and session setup.
// Once ctx ends, the remaining jobs are recorded with ctx's error.
func (r *Renderer) RenderMany(ctx context.Context, jobs []Job, opts Options) ([]JobResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}

	s, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	defer s.close()

	results := make([]JobResult, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			results = append(results, JobResult{URL: job.URL, Err: err})
			continue
		}

		start := time.Now()
		size, err := r.runJob(ctx, s, job, opts)
		results = append(results, JobResult{
			URL:      job.URL,
			Err:      err,
			Duration: time.Since(start),
			Size:     size,
		})
	}
	return results, nil
}

// runJob renders one job on s and delivers it. Failures are logged here so
// batch and single runs report the same way.
func (r *Renderer) runJob(ctx context.Context, s *session, job Job, opts Options) (int, error) {
	size, err := r.renderJob(ctx, s, job, opts)
	if err != nil {
		s.log.Error("FAILED", "url", job.URL, "err", err)
		return 0, err
	}
	s.log.Info("saved", "url", job.URL, "bytes", size)
	return size, nil
}

func (r *Renderer) renderJob(ctx context.Context, s *session, job Job, opts Options) (int, error) {
	if err := checkURL(job.URL); err != nil {
		return 0, err
	}

	data, err := s.render(ctx, r.cfg.jobTimeout, opts.captureRequest(job.URL, s.log))
	if err != nil {
		return 0, err
	}

	if job.Sink == nil {
		return 0, fmt.Errorf("%w: no sink for %s", ErrDeliver, job.URL)
	}
	if err := job.Sink.Deliver(Result{Data: data, Format: opts.format()}); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeliver, err)
	}
	return len(data), nil
}

func checkURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrEmptyURL
	}
	return nil
}
