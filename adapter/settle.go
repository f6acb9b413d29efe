package adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elnormous/contenttype"

	"github.com/kbukum/anyhttp/core"
)

var jsonMediaType = contenttype.NewMediaType(contentTypeJSON)

var errContentTooLarge = errors.New("content too large")

// settle converts a transport response into a canonical response, reading
// and decoding the body per cfg.ResponseType. Streams are handed over unread.
func settle(cfg *core.Config, req *http.Request, resp *http.Response) (*core.Response, error) {
	if resp.Request != nil {
		req = resp.Request
	}
	out := &core.Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    core.HeaderFrom(resp.Header),
		Config:     cfg,
		Request:    req,
	}

	body := io.Reader(resp.Body)
	if cfg.OnDownloadProgress != nil {
		body = &progressReader{r: resp.Body, total: resp.ContentLength, fn: cfg.OnDownloadProgress}
	}

	if cfg.ResponseType == core.ResponseStream {
		out.Data = progressReadCloserOf(body, resp.Body)
		return out, nil
	}
	defer resp.Body.Close()

	raw, err := readLimited(body, cfg.MaxContentLength)
	if errors.Is(err, errContentTooLarge) {
		msg := fmt.Sprintf("maxContentLength size of %d exceeded", cfg.MaxContentLength)
		return nil, core.NewError(core.CodeBadResponse, msg, cfg, req, out)
	}
	if err != nil {
		return nil, core.From(err, core.CodeNetwork, cfg, req, nil)
	}

	data, err := decode(cfg.ResponseType, out.Headers.Get("Content-Type"), raw)
	if err != nil {
		return nil, core.From(err, core.CodeBadResponse, cfg, req, out)
	}
	out.Data = data
	return out, nil
}

func progressReadCloserOf(r io.Reader, c io.ReadCloser) io.ReadCloser {
	if pr, ok := r.(*progressReader); ok {
		return progressReadCloser{progressReader: pr, c: c}
	}
	return c
}

// readLimited reads r fully. A positive limit bounds the size.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	raw, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > limit {
		return nil, errContentTooLarge
	}
	return raw, nil
}

// decode shapes raw per the requested response type. The automatic mode
// parses JSON when the content type says so and falls back to text.
func decode(rt core.ResponseType, contentType string, raw []byte) (any, error) {
	switch rt {
	case core.ResponseBytes:
		return raw, nil
	case core.ResponseText:
		return string(raw), nil
	case core.ResponseJSON:
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil, nil
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode json response: %w", err)
		}
		return v, nil
	}

	if isJSON(contentType) && len(bytes.TrimSpace(raw)) > 0 {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
	}
	return string(raw), nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt := contenttype.NewMediaType(contentType)
	return mt.Matches(jsonMediaType) || strings.HasSuffix(mt.Subtype, "+json")
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}
