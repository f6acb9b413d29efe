package adapter

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/kbukum/anyhttp/core"
)

type socketAdapter struct {
	dial DialFunc
	tls  *tls.Config
}

// NewSocket returns the http adapter. It writes one HTTP/1.1 request per
// connection obtained from dial and does not follow redirects. https URLs
// are wrapped in TLS using tlsCfg.
func NewSocket(dial DialFunc, tlsCfg *tls.Config) Adapter {
	return &socketAdapter{dial: dial, tls: tlsCfg}
}

func (a *socketAdapter) Name() string { return NameHTTP }

func (a *socketAdapter) Dispatch(cfg *core.Config) (*core.Response, error) {
	req, err := newHTTPRequest(cfg)
	if err != nil {
		return nil, err
	}
	trackUpload(req, cfg.OnUploadProgress)
	req.Close = true

	ctx := cfg.Ctx()
	conn, err := a.connect(ctx, req)
	if err != nil {
		return nil, core.From(err, core.CodeNetwork, cfg, req, nil)
	}
	// A done context unblocks pending reads and writes.
	stop := context.AfterFunc(ctx, func() { conn.Close() })

	fail := func(err error) (*core.Response, error) {
		stop()
		conn.Close()
		return nil, core.From(err, core.CodeNetwork, cfg, req, nil)
	}

	if err := req.Write(conn); err != nil {
		return fail(err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), req)
	if err != nil {
		return fail(err)
	}
	resp.Body = &connBody{ReadCloser: resp.Body, conn: conn, stop: stop}
	return settle(cfg, req, resp)
}

func (a *socketAdapter) connect(ctx context.Context, req *http.Request) (net.Conn, error) {
	conn, err := a.dial(ctx, "tcp", hostPort(req))
	if err != nil {
		return nil, err
	}
	if req.URL.Scheme != "https" {
		return conn, nil
	}

	var tc *tls.Config
	if a.tls != nil {
		tc = a.tls.Clone()
	} else {
		tc = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if tc.ServerName == "" {
		tc.ServerName = req.URL.Hostname()
	}
	tlsConn := tls.Client(conn, tc)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

func hostPort(req *http.Request) string {
	if port := req.URL.Port(); port != "" {
		return net.JoinHostPort(req.URL.Hostname(), port)
	}
	if req.URL.Scheme == "https" {
		return net.JoinHostPort(req.URL.Hostname(), "443")
	}
	return net.JoinHostPort(req.URL.Hostname(), "80")
}

// connBody closes the connection together with the response body.
type connBody struct {
	io.ReadCloser
	conn net.Conn
	stop func() bool
	once sync.Once
}

func (b *connBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		b.stop()
		b.conn.Close()
	})
	return err
}
