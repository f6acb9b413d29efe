package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kbukum/anyhttp/core"
)

// RequestOption configures a single request.
type RequestOption func(*core.Config)

// WithHeader sets a header, replacing inherited values.
func WithHeader(key, value string) RequestOption {
	return func(c *core.Config) { c.Headers.Set(key, value) }
}

// WithParam sets a query parameter.
func WithParam(key string, value any) RequestOption {
	return func(c *core.Config) { c.Params.Set(key, value) }
}

// WithTimeout bounds the transport call. Use core.NoTimeout to disable an
// inherited timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(c *core.Config) { c.Timeout = d }
}

// WithResponseType selects how the body is decoded.
func WithResponseType(rt core.ResponseType) RequestOption {
	return func(c *core.Config) { c.ResponseType = rt }
}

// WithAdapter forces a named adapter.
func WithAdapter(name string) RequestOption {
	return func(c *core.Config) { c.Adapter = name }
}

// WithValidateStatus overrides which status codes succeed.
func WithValidateStatus(fn core.StatusValidator) RequestOption {
	return func(c *core.Config) { c.ValidateStatus = fn }
}

// WithBaseURL overrides the base URL.
func WithBaseURL(u string) RequestOption {
	return func(c *core.Config) { c.BaseURL = u }
}

// WithBasicAuth sends HTTP Basic credentials.
func WithBasicAuth(username, password string) RequestOption {
	return func(c *core.Config) { c.Auth = &core.BasicAuth{Username: username, Password: password} }
}

// WithConfig applies an arbitrary edit to the request config.
func WithConfig(fn func(*core.Config)) RequestOption {
	return fn
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodGet, url, nil, opts)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, url string, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodDelete, url, nil, opts)
}

// Head performs a HEAD request.
func (c *Client) Head(ctx context.Context, url string, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodHead, url, nil, opts)
}

// Options performs an OPTIONS request.
func (c *Client) Options(ctx context.Context, url string, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodOptions, url, nil, opts)
}

// Post performs a POST request. See BodyOf for how body is encoded.
func (c *Client) Post(ctx context.Context, url string, body any, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodPost, url, body, opts)
}

// Put performs a PUT request with body.
func (c *Client) Put(ctx context.Context, url string, body any, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodPut, url, body, opts)
}

// Patch performs a PATCH request with body.
func (c *Client) Patch(ctx context.Context, url string, body any, opts ...RequestOption) (*core.Response, error) {
	return c.do(ctx, http.MethodPatch, url, body, opts)
}

func (c *Client) do(ctx context.Context, method, url string, body any, opts []RequestOption) (*core.Response, error) {
	cfg := core.Config{Method: method, URL: url, Body: BodyOf(body)}
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.Request(ctx, cfg)
}

// BodyOf picks a body kind from v's type: core.Body as is, nil as no body,
// io.Reader as a stream, []byte as binary, string as text, core.Params as a
// form, core.Multipart as multipart. Anything else is sent as JSON.
func BodyOf(v any) core.Body {
	switch b := v.(type) {
	case nil:
		return core.Body{}
	case core.Body:
		return b
	case io.Reader:
		return core.StreamBody(b)
	case []byte:
		return core.BinaryBody(b)
	case string:
		return core.TextBody(b)
	case core.Params:
		return core.FormBody(b)
	case core.Multipart:
		return core.MultipartBody(b)
	default:
		return core.JSONBody(v)
	}
}
