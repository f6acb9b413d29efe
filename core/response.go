package core

import (
	"io"
	"net/http"
)

// Response is the canonical response produced by every adapter.
type Response struct {
	// Status is the HTTP status code.
	Status int
	// StatusText is the reason phrase, e.g. "Not Found".
	StatusText string
	// Headers are the response headers.
	Headers Header
	// Data is the decoded body; its type follows Config.ResponseType.
	Data any
	// Config is the resolved configuration that produced the response.
	Config *Config
	// Request is an opaque handle to the transport request (usually *http.Request).
	Request any
}

// NewResponse builds a response with the standard reason phrase for status.
func NewResponse(status int, headers Header, data any, cfg *Config) *Response {
	return &Response{
		Status:     status,
		StatusText: http.StatusText(status),
		Headers:    headers,
		Data:       data,
		Config:     cfg,
	}
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Close releases a streamed body. It is a no-op for decoded bodies.
func (r *Response) Close() error {
	if c, ok := r.Data.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *Response) view() any {
	if r == nil {
		return nil
	}
	return map[string]any{
		"status":     r.Status,
		"statusText": r.StatusText,
		"headers":    safeValue(func() any { return r.Headers.view() }),
		"data":       safeValue(func() any { return r.Data }),
	}
}
