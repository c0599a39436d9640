// Package port picks a free TCP port for the browser's remote-debugging listener.
package port

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
)

// Port range used for the debug listener. Ports are drawn from [MinPort, MinPort+Span).
const (
	MinPort = 30000
	Span    = 30000
)

// ErrExhausted is returned when the context ends before a free port was found.
var ErrExhausted = errors.New("no free port found")

// Allocator selects pseudo-random ports and verifies them with a probe listener.
// The zero value is ready to use.
type Allocator struct {
	// Rand returns a value in [0, n). Defaults to math/rand/v2.IntN.
	Rand func(n int) int

	// Listen opens the probe listener. Defaults to net.Listen.
	Listen func(network, address string) (net.Listener, error)
}

// New returns an Allocator using the default random source and listener.
func New() *Allocator {
	return &Allocator{}
}

// SelectFreePort returns a port that accepted a probe bind at selection time.
// A failed bind retries immediately with a new random port; there is no attempt
// limit, only ctx ends the search. The probe listener is closed before returning.
func (a *Allocator) SelectFreePort(ctx context.Context) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrExhausted, err)
		}

		p := MinPort + a.intn(Span)
		ln, err := a.listen("tcp", ":"+strconv.Itoa(p))
		if err != nil {
			continue
		}
		if err := ln.Close(); err != nil {
			continue
		}
		return p, nil
	}
}

func (a *Allocator) intn(n int) int {
	if a.Rand != nil {
		return a.Rand(n)
	}
	return rand.IntN(n) // #nosec G404 -- port choice, not a secret
}

func (a *Allocator) listen(network, address string) (net.Listener, error) {
	if a.Listen != nil {
		return a.Listen(network, address)
	}
	return net.Listen(network, address)
}
