package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kbukum/anyhttp/core"
)

// TypedResponse wraps a response with a decoded body of type T.
type TypedResponse[T any] struct {
	// Status is the HTTP status code.
	Status int
	// Headers are the response headers.
	Headers core.Header
	// Data is the decoded response body.
	Data T
	// Response is the underlying canonical response.
	Response *core.Response
}

// GetJSON performs a GET request and decodes the JSON response into type T.
func GetJSON[T any](c *Client, ctx context.Context, url string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodGet, url, nil, opts...)
}

// PostJSON performs a POST request with a JSON body and decodes the response into type T.
func PostJSON[T any](c *Client, ctx context.Context, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPost, url, body, opts...)
}

// PutJSON performs a PUT request with a JSON body and decodes the response into type T.
func PutJSON[T any](c *Client, ctx context.Context, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPut, url, body, opts...)
}

// PatchJSON performs a PATCH request with a JSON body and decodes the response into type T.
func PatchJSON[T any](c *Client, ctx context.Context, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodPatch, url, body, opts...)
}

// DeleteJSON performs a DELETE request and decodes the JSON response into type T.
func DeleteJSON[T any](c *Client, ctx context.Context, url string, opts ...RequestOption) (*TypedResponse[T], error) {
	return doTyped[T](c, ctx, http.MethodDelete, url, nil, opts...)
}

// doTyped executes a request with a JSON body and decodes the raw response.
// A rejected response whose body still decodes is returned with the error.
func doTyped[T any](c *Client, ctx context.Context, method, url string, body any, opts ...RequestOption) (*TypedResponse[T], error) {
	cfg := core.Config{Method: method, URL: url}
	if body != nil {
		cfg.Body = core.JSONBody(body)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.ResponseType = core.ResponseBytes

	resp, err := c.Request(ctx, cfg)
	if err != nil {
		var ce *core.Error
		if errors.As(err, &ce) && ce.Response != nil {
			if typed, decErr := decodeTyped[T](ce.Response); decErr == nil {
				return typed, err
			}
		}
		return nil, err
	}

	typed, err := decodeTyped[T](resp)
	if err != nil {
		return nil, core.From(fmt.Errorf("decode response: %w", err), core.CodeBadResponse, resp.Config, resp.Request, resp)
	}
	return typed, nil
}

func decodeTyped[T any](resp *core.Response) (*TypedResponse[T], error) {
	var data T
	raw, _ := resp.Data.([]byte)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, err
		}
	}
	return &TypedResponse[T]{
		Status:   resp.Status,
		Headers:  resp.Headers,
		Data:     data,
		Response: resp,
	}, nil
}
