// Package adapter turns a resolved core.Config into a core.Response using
// whichever transport primitive the host exposes.
//
// Three built-in variants exist, in selection priority order:
//
//   - fetch: a high-level Doer such as *http.Client
//   - xhr:   a bare http.RoundTripper driven per call (redirect limits,
//     credential cookies, progress events)
//   - http:  HTTP/1.1 written over a connection from a DialFunc
//
// A Registry probes the Host once at construction, memoizes the default
// adapter, and enforces timeout and cancellation for every variant.
package adapter

import (
	"github.com/kbukum/anyhttp/core"
)

// Built-in adapter names.
const (
	NameFetch = "fetch"
	NameXHR   = "xhr"
	NameHTTP  = "http"
)

// Adapter executes a resolved config with one concrete transport primitive.
//
// Dispatch returns a canonical response for any status code; status
// validation is left to the caller. Failures are canonical errors coded
// ERR_NETWORK, ERR_TIMEOUT, ERR_CANCELED or ERR_BAD_RESPONSE. The config's
// Context must be honored: once it is done no further side effects may occur.
type Adapter interface {
	Name() string
	Dispatch(cfg *core.Config) (*core.Response, error)
}

// Func adapts a function into an Adapter.
type Func struct {
	AdapterName string
	Fn          func(cfg *core.Config) (*core.Response, error)
}

// Name returns the adapter name.
func (f Func) Name() string { return f.AdapterName }

// Dispatch calls Fn.
func (f Func) Dispatch(cfg *core.Config) (*core.Response, error) { return f.Fn(cfg) }

// Descriptor registers an adapter together with the capability it needs.
type Descriptor struct {
	Name string
	// Available reports whether the host supports the adapter. Nil means always.
	Available func(Capabilities) bool
	Adapter   Adapter
}

func (d Descriptor) available(c Capabilities) bool {
	return d.Adapter != nil && (d.Available == nil || d.Available(c))
}

// Builtins returns the built-in descriptors for host in priority order.
func Builtins(host Host) []Descriptor {
	return []Descriptor{
		{
			Name:      NameFetch,
			Available: func(c Capabilities) bool { return c.Fetch },
			Adapter:   NewFetch(host.Client),
		},
		{
			Name:      NameXHR,
			Available: func(c Capabilities) bool { return c.XHR },
			Adapter:   NewXHR(host.Transport),
		},
		{
			Name:      NameHTTP,
			Available: func(c Capabilities) bool { return c.Socket },
			Adapter:   NewSocket(host.Dial, host.TLS),
		},
	}
}
