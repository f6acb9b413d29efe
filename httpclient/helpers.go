package httpclient

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/anyhttp/core"
)

// GetURI returns the URL cfg would be sent to, after merging with the
// instance defaults and encoding params. Nothing is dispatched.
func (c *Client) GetURI(cfg core.Config) (string, error) {
	resolved, err := core.Resolve(core.Defaults(), c.defaults, cfg)
	if err != nil {
		return "", err
	}
	return resolved.FullURL()
}

// IsCancel reports whether err is a canonical ERR_CANCELED error.
func IsCancel(err any) bool { return core.IsCancel(err) }

// IsCanonicalError reports whether v is, wraps or is marked as a canonical
// error.
func IsCanonicalError(v any) bool { return core.IsCanonicalError(v) }

// Call is one request for All.
type Call func(ctx context.Context) (*core.Response, error)

// All runs calls concurrently and returns their responses in argument order.
// The first failure cancels the calls still running and is returned.
func All(ctx context.Context, calls ...Call) ([]*core.Response, error) {
	g, gctx := errgroup.WithContext(ctx)
	out := make([]*core.Response, len(calls))
	for i, call := range calls {
		g.Go(func() error {
			resp, err := call(gctx)
			if err != nil {
				return err
			}
			out[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Spread adapts a variadic function to take a slice, as returned by All.
func Spread[T, R any](fn func(...T) R) func([]T) R {
	return func(args []T) R { return fn(args...) }
}
