package adapter

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// Doer is a fetch-style primitive: one call in, one response out.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DialFunc opens a raw connection.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Host lists the transport primitives a runtime provides. Nil fields are
// absent primitives.
type Host struct {
	// Client is the fetch-style primitive.
	Client Doer
	// Transport is the XHR-style primitive.
	Transport http.RoundTripper
	// Dial is the socket primitive.
	Dial DialFunc
	// TLS configures TLS for https URLs on the socket primitive.
	TLS *tls.Config
}

// Capabilities records which primitives a host exposes.
type Capabilities struct {
	Fetch  bool
	XHR    bool
	Socket bool
}

// Any reports whether at least one primitive is present.
func (c Capabilities) Any() bool { return c.Fetch || c.XHR || c.Socket }

// Probe inspects host. The result is a pure function of host and is
// computed once per Registry.
func Probe(host Host) Capabilities {
	return Capabilities{
		Fetch:  host.Client != nil,
		XHR:    host.Transport != nil,
		Socket: host.Dial != nil,
	}
}

// DefaultHost exposes all three primitives backed by a clone of
// http.DefaultTransport.
func DefaultHost() Host {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
	return Host{
		Client:    &http.Client{Transport: transport},
		Transport: transport,
		Dial:      dialer.DialContext,
	}
}
