package devtools

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-page2pdf/internal/render"
)

// DefaultCloseTimeout bounds closing the page target. Chrome refuses to
// close a page that is still navigating and go-rod retries until it may.
const DefaultCloseTimeout = 2 * time.Second

// Conn is an open protocol connection with one page target.
type Conn struct {
	page   *rod.Page
	cancel context.CancelFunc
	once   sync.Once

	// CloseTimeout bounds Close. Zero means DefaultCloseTimeout.
	CloseTimeout time.Duration

	// Version is the Browser.getVersion result, nil if the query failed.
	Version *proto.BrowserGetVersionResult
}

// Session returns the page target as a render.Session.
func (c *Conn) Session() render.Session {
	return &Tab{page: c.page}
}

// Close closes the page target and drops the websocket. The browser itself
// is left running: a remote browser belongs to someone else and a local one
// is killed by its supervisor. The websocket is dropped even when the page
// did not close in time.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		defer c.cancel()
		err = c.page.Timeout(c.closeTimeout()).Close()
	})
	return err
}

func (c *Conn) closeTimeout() time.Duration {
	if c.CloseTimeout > 0 {
		return c.CloseTimeout
	}
	return DefaultCloseTimeout
}
