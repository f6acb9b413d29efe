package adapter

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/anyhttp/core"
)

type xhrAdapter struct {
	transport http.RoundTripper
	jar       http.CookieJar
}

// NewXHR returns the xhr adapter. It drives transport with a per-call client
// so redirect limits, credential cookies and progress events follow the
// config. Cookies are kept in an adapter-owned jar and only sent when
// WithCredentials is set.
func NewXHR(transport http.RoundTripper) Adapter {
	a := &xhrAdapter{transport: transport}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		a.jar = jar
	}
	return a
}

func (a *xhrAdapter) Name() string { return NameXHR }

func (a *xhrAdapter) Dispatch(cfg *core.Config) (*core.Response, error) {
	req, err := newHTTPRequest(cfg)
	if err != nil {
		return nil, err
	}
	trackUpload(req, cfg.OnUploadProgress)

	client := &http.Client{
		Transport:     a.transport,
		CheckRedirect: redirectPolicy(cfg.MaxRedirects),
	}
	if cfg.WithCredentials != nil && *cfg.WithCredentials && a.jar != nil {
		client.Jar = a.jar
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.From(err, core.CodeNetwork, cfg, req, nil)
	}
	return settle(cfg, req, resp)
}

// redirectPolicy follows at most *max redirects. Zero returns the redirect
// response itself; nil keeps net/http's default of 10.
func redirectPolicy(max *int) func(*http.Request, []*http.Request) error {
	if max == nil {
		return nil
	}
	limit := *max
	return func(_ *http.Request, via []*http.Request) error {
		if limit <= 0 {
			return http.ErrUseLastResponse
		}
		if len(via) > limit {
			return fmt.Errorf("maximum number of redirects (%d) exceeded", limit)
		}
		return nil
	}
}
