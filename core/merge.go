package core

import (
	"net/http"
	"slices"
	"strings"
)

// Merge layers configs left to right and returns a new Config; the inputs are
// not modified. Call it as Merge(defaults, instance, request).
//
//   - Headers: case-insensitive union; Set values override, Add values concatenate.
//   - Scalars: the last defined value wins.
//   - Params and MethodHeaders: shallow per-key merge.
//   - Functions and transformer lists: replaced wholesale.
func Merge(layers ...Config) Config {
	var out Config
	for i := range layers {
		out.mergeFrom(&layers[i])
	}
	return out
}

// Resolve merges the layers, flattens method headers, normalizes the method
// and validates the result.
func Resolve(layers ...Config) (*Config, error) {
	cfg := Merge(layers...)
	if cfg.Method == "" {
		cfg.Method = http.MethodGet
	}
	cfg.Method = strings.ToUpper(cfg.Method)
	cfg.flattenHeaders()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) mergeFrom(src *Config) {
	if src.Method != "" {
		c.Method = src.Method
	}
	if src.URL != "" {
		c.URL = src.URL
	}
	if src.BaseURL != "" {
		c.BaseURL = src.BaseURL
	}
	if src.AllowAbsoluteURLs != nil {
		v := *src.AllowAbsoluteURLs
		c.AllowAbsoluteURLs = &v
	}

	c.Headers.merge(src.Headers)
	if src.MethodHeaders != nil {
		if c.MethodHeaders == nil {
			c.MethodHeaders = make(map[string]Header, len(src.MethodHeaders))
		}
		for method, h := range src.MethodHeaders {
			key := strings.ToLower(method)
			merged := c.MethodHeaders[key].Clone()
			merged.merge(h)
			c.MethodHeaders[key] = merged
		}
	}

	c.Params.merge(src.Params)
	if src.ParamsSerializer != nil {
		c.ParamsSerializer = src.ParamsSerializer
	}

	if !src.Body.IsZero() {
		c.Body = src.Body
	}
	if src.Timeout != 0 {
		c.Timeout = src.Timeout
	}
	if src.TimeoutMessage != "" {
		c.TimeoutMessage = src.TimeoutMessage
	}
	if src.ResponseType != ResponseAuto {
		c.ResponseType = src.ResponseType
	}
	if src.MaxContentLength != 0 {
		c.MaxContentLength = src.MaxContentLength
	}
	if src.MaxRedirects != nil {
		v := *src.MaxRedirects
		c.MaxRedirects = &v
	}
	if src.WithCredentials != nil {
		v := *src.WithCredentials
		c.WithCredentials = &v
	}
	if src.Auth != nil {
		auth := *src.Auth
		c.Auth = &auth
	}
	if src.Context != nil {
		c.Context = src.Context
	}
	if src.Adapter != "" {
		c.Adapter = src.Adapter
	}

	if src.ValidateStatus != nil {
		c.ValidateStatus = src.ValidateStatus
	}
	if src.TransformRequest != nil {
		c.TransformRequest = slices.Clone(src.TransformRequest)
	}
	if src.TransformResponse != nil {
		c.TransformResponse = slices.Clone(src.TransformResponse)
	}
	if src.OnUploadProgress != nil {
		c.OnUploadProgress = src.OnUploadProgress
	}
	if src.OnDownloadProgress != nil {
		c.OnDownloadProgress = src.OnDownloadProgress
	}
}

// flattenHeaders folds MethodHeaders into Headers: common, then the
// method-specific set, then the explicit headers.
func (c *Config) flattenHeaders() {
	if len(c.MethodHeaders) == 0 {
		return
	}
	var h Header
	h.merge(c.MethodHeaders[CommonHeaders])
	h.merge(c.MethodHeaders[strings.ToLower(c.Method)])
	h.merge(c.Headers)
	c.Headers = h
	c.MethodHeaders = nil
}
