package adapter

import (
	"io"
	"net/http"

	"github.com/kbukum/anyhttp/core"
	"github.com/kbukum/anyhttp/version"
)

// newHTTPRequest builds the transport request for cfg. Body encoding
// failures are reported as ERR_BAD_OPTION.
func newHTTPRequest(cfg *core.Config) (*http.Request, error) {
	full, err := cfg.FullURL()
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(cfg.Body)
	if err != nil {
		return nil, core.From(err, core.CodeBadOption, cfg, nil, nil)
	}

	req, err := http.NewRequestWithContext(cfg.Ctx(), cfg.Method, full, body)
	if err != nil {
		return nil, core.From(err, core.CodeBadOption, cfg, nil, nil)
	}

	cfg.Headers.Each(func(name string, values []string) {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	})

	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}

	switch {
	case body == nil:
		req.Header.Del("Content-Type")
	case contentType != "" && req.Header.Get("Content-Type") == "":
		req.Header.Set("Content-Type", contentType)
	}

	if cfg.Auth != nil {
		req.SetBasicAuth(cfg.Auth.Username, cfg.Auth.Password)
	}
	return req, nil
}

// progressReader reports bytes read to fn.
type progressReader struct {
	r      io.Reader
	loaded int64
	total  int64
	upload bool
	fn     func(core.Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.fn(core.Progress{Loaded: p.loaded, Total: p.total, Upload: p.upload})
	}
	return n, err
}

type progressReadCloser struct {
	*progressReader
	c io.Closer
}

func (p progressReadCloser) Close() error { return p.c.Close() }

// trackUpload wraps the request body so reads emit upload progress.
func trackUpload(req *http.Request, fn func(core.Progress)) {
	if fn == nil || req.Body == nil || req.Body == http.NoBody {
		return
	}
	body := req.Body
	req.Body = progressReadCloser{
		progressReader: &progressReader{r: body, total: req.ContentLength, upload: true, fn: fn},
		c:              body,
	}
	req.GetBody = nil
}
