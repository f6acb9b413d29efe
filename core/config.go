package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NoTimeout disables a timeout inherited from an earlier config layer.
const NoTimeout time.Duration = -1

// Unlimited disables a MaxContentLength inherited from an earlier config layer.
const Unlimited int64 = -1

// CommonHeaders is the MethodHeaders key applied to every method.
const CommonHeaders = "common"

// ResponseType selects how a response body is decoded.
type ResponseType string

const (
	// ResponseAuto decodes text, parsing JSON when the content type declares it.
	ResponseAuto ResponseType = ""
	// ResponseJSON requires a JSON body.
	ResponseJSON ResponseType = "json"
	// ResponseText decodes the body as a string.
	ResponseText ResponseType = "text"
	// ResponseBytes returns the raw body as []byte.
	ResponseBytes ResponseType = "bytes"
	// ResponseStream returns the unread body as an io.ReadCloser.
	ResponseStream ResponseType = "stream"
)

// Valid reports whether t is a known response type.
func (t ResponseType) Valid() bool {
	switch t {
	case ResponseAuto, ResponseJSON, ResponseText, ResponseBytes, ResponseStream:
		return true
	default:
		return false
	}
}

var methods = []string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch,
	http.MethodHead, http.MethodOptions, http.MethodConnect, http.MethodTrace,
}

// IsMethod reports whether m is a recognized HTTP verb (case-insensitive).
func IsMethod(m string) bool {
	for _, known := range methods {
		if strings.EqualFold(m, known) {
			return true
		}
	}
	return false
}

// BasicAuth holds HTTP Basic credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Progress reports transfer progress. Total is -1 when unknown.
type Progress struct {
	Loaded int64
	Total  int64
	Upload bool
}

// StatusValidator decides whether a status code counts as success.
type StatusValidator func(status int) bool

// RequestTransformer rewrites the request body before dispatch.
type RequestTransformer func(body Body, headers *Header) (Body, error)

// ResponseTransformer rewrites decoded response data.
type ResponseTransformer func(data any, headers Header, status int) (any, error)

// Config describes one HTTP call. Zero-valued fields are "undefined" and are
// filled from earlier layers by Merge. A Config is treated as immutable once
// dispatch begins.
type Config struct {
	Method  string
	URL     string
	BaseURL string
	// AllowAbsoluteURLs lets an absolute URL bypass BaseURL. Defaults to true.
	AllowAbsoluteURLs *bool

	Headers Header
	// MethodHeaders holds per-method header sets keyed by lower-case verb,
	// plus CommonHeaders. Resolve flattens them into Headers.
	MethodHeaders map[string]Header

	Params           Params
	ParamsSerializer func(Params) string

	Body Body

	// Timeout bounds the transport call. Zero inherits, negative disables.
	Timeout        time.Duration
	TimeoutMessage string

	ResponseType ResponseType
	// MaxContentLength bounds the response body size. Zero inherits, negative disables.
	MaxContentLength int64
	MaxRedirects     *int
	WithCredentials  *bool
	Auth             *BasicAuth

	// Context is the cancellation token. The client sets it from the call's
	// context; request interceptors may replace it with a derived context.
	Context context.Context

	// Adapter names an explicit adapter, bypassing capability-based selection.
	Adapter string

	ValidateStatus    StatusValidator
	TransformRequest  []RequestTransformer
	TransformResponse []ResponseTransformer

	OnUploadProgress   func(Progress)
	OnDownloadProgress func(Progress)
}

// Defaults returns the library-level defaults: GET, a 2xx status validator
// and a common Accept header.
func Defaults() Config {
	return Config{
		Method: http.MethodGet,
		MethodHeaders: map[string]Header{
			CommonHeaders: NewHeader("Accept", "application/json, text/plain, */*"),
		},
		ValidateStatus: DefaultValidateStatus,
	}
}

// DefaultValidateStatus accepts 2xx status codes.
func DefaultValidateStatus(status int) bool {
	return status >= 200 && status < 300
}

// Ctx returns the cancellation context, or context.Background when unset.
func (c *Config) Ctx() context.Context {
	if c == nil || c.Context == nil {
		return context.Background()
	}
	return c.Context
}

// Clone returns a copy whose headers, params and method headers can be
// modified without touching c.
func (c *Config) Clone() *Config {
	out := *c
	out.Headers = c.Headers.Clone()
	out.Params = c.Params.Clone()
	if c.MethodHeaders != nil {
		out.MethodHeaders = make(map[string]Header, len(c.MethodHeaders))
		for k, h := range c.MethodHeaders {
			out.MethodHeaders[k] = h.Clone()
		}
	}
	return &out
}

// Validate checks that c can be dispatched.
func (c *Config) Validate() error {
	if c.URL == "" && c.BaseURL == "" {
		return NewConfigError("url or baseURL is required", c)
	}
	if !IsMethod(c.Method) {
		return NewConfigError(fmt.Sprintf("unsupported method %q", c.Method), c)
	}
	if !c.ResponseType.Valid() {
		return NewConfigError(fmt.Sprintf("unsupported response type %q", c.ResponseType), c)
	}
	if _, err := c.FullURL(); err != nil {
		return err
	}
	return nil
}

func (c *Config) view() any {
	if c == nil {
		return nil
	}
	field := func(v any) any { return safeValue(func() any { return v }) }
	out := map[string]any{
		"method":       c.Method,
		"url":          c.URL,
		"baseURL":      c.BaseURL,
		"headers":      field(c.Headers.view()),
		"params":       c.Params.view(),
		"data":         safeValue(c.Body.view),
		"timeout":      c.Timeout.Milliseconds(),
		"responseType": string(c.ResponseType),
		"adapter":      c.Adapter,
	}
	if c.MaxContentLength != 0 {
		out["maxContentLength"] = c.MaxContentLength
	}
	if c.MaxRedirects != nil {
		out["maxRedirects"] = *c.MaxRedirects
	}
	if c.WithCredentials != nil {
		out["withCredentials"] = *c.WithCredentials
	}
	return out
}
