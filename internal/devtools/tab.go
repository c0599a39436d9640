package devtools

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-page2pdf/internal/render"
)

// Tab drives a single page target over go-rod.
type Tab struct {
	page *rod.Page
}

var _ render.Session = (*Tab)(nil)

// EnableDomains implements render.Session.
func (t *Tab) EnableDomains(ctx context.Context) error {
	p := t.page.Context(ctx)
	if err := (proto.PageEnable{}).Call(p); err != nil {
		return fmt.Errorf("enable page domain: %w", err)
	}
	if err := (proto.LayerTreeEnable{}).Call(p); err != nil {
		return fmt.Errorf("enable layer tree domain: %w", err)
	}
	return nil
}

// Once implements render.Session. The subscription is registered before
// Once returns.
func (t *Tab) Once(ctx context.Context, ev render.Event) <-chan struct{} {
	ch := make(chan struct{})
	wait := t.page.Context(ctx).WaitEvent(protoEvent(ev))
	go func() {
		wait()
		if ctx.Err() == nil {
			close(ch)
		}
	}()
	return ch
}

// Each implements render.Session. Notifications that arrive while the
// consumer is busy are coalesced into one.
func (t *Tab) Each(ctx context.Context, ev render.Event) <-chan struct{} {
	ch := make(chan struct{}, 1)
	notify := func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}

	var cb any
	switch ev {
	case render.EventLoad:
		cb = func(*proto.PageLoadEventFired) { notify() }
	case render.EventBudgetExpired:
		cb = func(*proto.EmulationVirtualTimeBudgetExpired) { notify() }
	default:
		cb = func(*proto.LayerTreeLayerPainted) { notify() }
	}

	wait := t.page.Context(ctx).EachEvent(cb)
	go wait()
	return ch
}

// Navigate implements render.Session. A navigation the browser reports as
// failed (DNS, refused connection) is an error.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	res, err := proto.PageNavigate{URL: url}.Call(t.page.Context(ctx))
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if res.ErrorText != "" {
		return fmt.Errorf("navigate: %s", res.ErrorText)
	}
	return nil
}

// SetVirtualTimePolicy implements render.Session.
func (t *Tab) SetVirtualTimePolicy(ctx context.Context, req *proto.EmulationSetVirtualTimePolicy) error {
	if _, err := req.Call(t.page.Context(ctx)); err != nil {
		return fmt.Errorf("set virtual time policy: %w", err)
	}
	return nil
}

// PrintToPDF implements render.Session.
func (t *Tab) PrintToPDF(ctx context.Context, req *proto.PagePrintToPDF) ([]byte, error) {
	res, err := req.Call(t.page.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return res.Data, nil
}

// CaptureScreenshot implements render.Session.
func (t *Tab) CaptureScreenshot(ctx context.Context, req *proto.PageCaptureScreenshot) ([]byte, error) {
	res, err := req.Call(t.page.Context(ctx))
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return res.Data, nil
}

func protoEvent(ev render.Event) proto.Event {
	switch ev {
	case render.EventLoad:
		return &proto.PageLoadEventFired{}
	case render.EventBudgetExpired:
		return &proto.EmulationVirtualTimeBudgetExpired{}
	default:
		return &proto.LayerTreeLayerPainted{}
	}
}
