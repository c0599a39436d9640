// Package devtools connects to a browser's remote-debugging endpoint.
//
// It waits for the debug port to accept TCP connections, opens a go-rod
// connection, checks the browser version and exposes a single page target as
// a render.Session.
package devtools

import (
	"net"
	"strconv"
)

// DefaultRemotePort is the conventional Chrome debug port.
const DefaultRemotePort = 9222

// Endpoint is the host and port of a debug listener.
type Endpoint struct {
	Host string
	Port int
}

// Addr returns "host:port".
func (e Endpoint) Addr() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

func (e Endpoint) String() string {
	return e.Addr()
}
