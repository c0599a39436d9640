package page2pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alnah/go-page2pdf/internal/devtools"
	"github.com/alnah/go-page2pdf/internal/locator"
	"github.com/alnah/go-page2pdf/internal/port"
	"github.com/alnah/go-page2pdf/internal/process"
	"github.com/alnah/go-page2pdf/internal/render"
)

// localHost is where a spawned browser listens.
const localHost = "127.0.0.1"

// browserLocator finds the Chrome executable.
type browserLocator interface {
	Detect() (string, error)
}

// portSelector picks the debug port for a spawned browser.
type portSelector interface {
	SelectFreePort(ctx context.Context) (int, error)
}

// spawner starts a browser process.
type spawner interface {
	spawn(ctx context.Context, spec process.Spec) (terminator, error)
}

// terminator is a running browser process.
type terminator interface {
	Terminate() error
}

// connector waits for a debug endpoint and connects to it.
type connector interface {
	connect(ctx context.Context, ep devtools.Endpoint) (connection, error)
}

// connection is an open protocol connection with its page target.
type connection interface {
	Session() render.Session
	Close() error
}

// pageRenderer runs the wait phases and capture for one page.
type pageRenderer interface {
	Render(ctx context.Context, s render.Session, req render.Request) ([]byte, error)
}

// Compile-time interface implementation checks.
var (
	_ browserLocator = (*locator.Locator)(nil)
	_ portSelector   = (*port.Allocator)(nil)
	_ spawner        = osSpawner{}
	_ terminator     = (*process.Process)(nil)
	_ connector      = (*rodConnector)(nil)
	_ connection     = (*devtools.Conn)(nil)
	_ pageRenderer   = (*render.Pipeline)(nil)
)

// osSpawner starts real browser processes.
type osSpawner struct{}

func (osSpawner) spawn(ctx context.Context, spec process.Spec) (terminator, error) {
	p, err := process.Spawn(ctx, spec)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// rodConnector connects through go-rod.
type rodConnector struct {
	waiter *devtools.Waiter
}

func (c *rodConnector) connect(ctx context.Context, ep devtools.Endpoint) (connection, error) {
	conn, err := c.waiter.WaitAndValidate(ctx, ep)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// session is one browser process (or remote endpoint), one connection and
// one page target. Jobs run on it strictly one after another.
type session struct {
	log  *slog.Logger
	proc terminator // nil in remote mode
	conn connection
	page pageRenderer
}

// open starts or attaches to a browser and connects to it. On error
// everything acquired so far is released.
func (r *Renderer) open(ctx context.Context) (*session, error) {
	log := r.log.With("session", uuid.NewString())
	s := &session{log: log, page: r.newPipeline(log)}

	ep, err := r.endpoint(ctx, s)
	if err != nil {
		s.close()
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, r.cfg.connectTimeout)
	defer cancel()

	conn, err := r.connector.connect(cctx, ep)
	if err != nil {
		s.close()
		return nil, err
	}
	s.conn = conn
	return s, nil
}

// endpoint returns the remote endpoint, or spawns a local browser and
// returns its endpoint.
func (r *Renderer) endpoint(ctx context.Context, s *session) (devtools.Endpoint, error) {
	if r.cfg.remote != nil {
		s.log.Info("using remote browser", "addr", r.cfg.remote.Addr())
		return *r.cfg.remote, nil
	}

	bin := r.cfg.chromeBinary
	if bin == "" {
		var err error
		if bin, err = r.locator.Detect(); err != nil {
			return devtools.Endpoint{}, err
		}
	}

	p, err := r.ports.SelectFreePort(ctx)
	if err != nil {
		return devtools.Endpoint{}, fmt.Errorf("selecting debug port: %w", err)
	}

	proc, err := r.spawner.spawn(ctx, process.Spec{
		Bin:        bin,
		Port:       p,
		Flags:      r.cfg.chromeFlags,
		WindowSize: r.cfg.windowSize,
		Logger:     s.log,
	})
	if err != nil {
		return devtools.Endpoint{}, err
	}
	s.proc = proc
	return devtools.Endpoint{Host: localHost, Port: p}, nil
}

// render runs one job on the session under the job timeout.
func (s *session) render(ctx context.Context, timeout time.Duration, req render.Request) ([]byte, error) {
	jctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.page.Render(jctx, s.conn.Session(), req)
}

// close drops the connection and kills a spawned browser. Errors are logged.
func (s *session) close() {
	var errs []error
	if s.conn != nil {
		errs = append(errs, s.conn.Close())
	}
	if s.proc != nil {
		errs = append(errs, s.proc.Terminate())
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn("session teardown", "err", err)
	}
}
