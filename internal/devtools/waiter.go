package devtools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
	"github.com/ysmood/gson"
)

// ErrUnavailable is returned when the debug endpoint never became reachable.
var ErrUnavailable = errors.New("browser debug endpoint unavailable")

// DefaultPollInterval is the delay between TCP probes of the debug port.
const DefaultPollInterval = 10 * time.Millisecond

// maxVersionBody caps the /json/version response.
const maxVersionBody = 1 << 20

// Waiter polls a debug endpoint until it accepts connections, then opens a
// protocol connection to it.
type Waiter struct {
	Interval time.Duration
	Logger   *slog.Logger

	// Dial opens the TCP probe. Defaults to net.Dialer.DialContext.
	Dial func(ctx context.Context, network, addr string) (net.Conn, error)

	// HTTPClient fetches /json/version. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewWaiter returns a Waiter with the default poll interval.
func NewWaiter(logger *slog.Logger) *Waiter {
	return &Waiter{Interval: DefaultPollInterval, Logger: logger}
}

// WaitForPort blocks until a TCP connection to ep succeeds or ctx ends.
// The probe connection is closed immediately.
func (w *Waiter) WaitForPort(ctx context.Context, ep Endpoint) error {
	addr := ep.Addr()
	sleep := utils.BackoffSleeper(w.interval(), w.interval(), nil)
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, addr, err)
		}
		conn, err := w.dial()(ctx, "tcp", addr)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if err := sleep(ctx); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnavailable, addr, err)
		}
	}
}

// WaitAndValidate waits for ep, connects, checks the browser version and
// opens a blank page target. ctx bounds the wait and the handshake only; the
// returned Conn lives until Close.
func (w *Waiter) WaitAndValidate(ctx context.Context, ep Endpoint) (*Conn, error) {
	log := w.logger().With("addr", ep.Addr())

	log.Info("waiting for browser debug endpoint")
	if err := w.WaitForPort(ctx, ep); err != nil {
		return nil, err
	}

	wsURL, err := w.ResolveURL(ctx, ep)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", ErrUnavailable, ep.Addr(), err)
	}

	life, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(ctx, cancel)

	page, version, err := attach(newBrowser(life).ControlURL(wsURL), log)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, ep.Addr(), ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Handshake done: the connection no longer follows ctx.
	if !stop() {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, ep.Addr(), ctx.Err())
	}

	return &Conn{page: page, cancel: cancel, Version: version}, nil
}

// ResolveURL asks ep for its browser websocket URL through /json/version.
// The browser reports its own bind address, so the host in the answer is
// replaced by ep.
func (w *Waiter) ResolveURL(ctx context.Context, ep Endpoint) (string, error) {
	u := url.URL{Scheme: "http", Host: ep.Addr(), Path: "/json/version"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}

	res, err := w.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: %s", u.Path, res.Status)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, maxVersionBody))
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", u.Path, err)
	}

	body := gson.New(data)
	if !body.Has("webSocketDebuggerUrl") {
		return "", fmt.Errorf("GET %s: no webSocketDebuggerUrl in response", u.Path)
	}
	ws, err := url.Parse(body.Get("webSocketDebuggerUrl").Str())
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", u.Path, err)
	}
	ws.Host = ep.Addr()
	return ws.String(), nil
}

// newBrowser returns an unconnected browser bound to ctx. Pages it opens
// keep the browser's own viewport and user agent.
func newBrowser(ctx context.Context) *rod.Browser {
	return rod.New().Context(ctx).NoDefaultDevice()
}

// attach connects browser, reports its version and opens a blank page target.
func attach(browser *rod.Browser, log *slog.Logger) (*rod.Page, *proto.BrowserGetVersionResult, error) {
	if err := browser.Connect(); err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}

	version, verr := proto.BrowserGetVersion{}.Call(browser)
	ReportVersion(log, version, verr)

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, nil, fmt.Errorf("create page: %w", err)
	}
	return page, version, nil
}

func (w *Waiter) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return DefaultPollInterval
}

func (w *Waiter) dial() func(context.Context, string, string) (net.Conn, error) {
	if w.Dial != nil {
		return w.Dial
	}
	var d net.Dialer
	return d.DialContext
}

func (w *Waiter) httpClient() *http.Client {
	if w.HTTPClient != nil {
		return w.HTTPClient
	}
	return http.DefaultClient
}

func (w *Waiter) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.DiscardHandler)
}
