package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const canceledMessage = "canceled"

// CancelReason is the cause recorded when a CancelSource is canceled.
type CancelReason struct {
	Message string
}

func (r *CancelReason) Error() string {
	if r.Message == "" {
		return canceledMessage
	}
	return r.Message
}

// CancelSource is a cancellation token that carries a reason.
type CancelSource struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	once   sync.Once
}

// NewCancelSource derives a cancelable context from parent.
func NewCancelSource(parent context.Context) *CancelSource {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)
	return &CancelSource{ctx: ctx, cancel: cancel}
}

// Context returns the token to pass to a request.
func (s *CancelSource) Context() context.Context { return s.ctx }

// Cancel aborts requests using the token. Only the first call has an effect.
func (s *CancelSource) Cancel(reason string) {
	s.once.Do(func() {
		s.cancel(&CancelReason{Message: reason})
	})
}

// TimeoutCause is the context cause recorded when a request timeout fires.
type TimeoutCause struct {
	Timeout time.Duration
	Message string
}

// NewTimeoutCause builds the timeout cause for cfg.
func NewTimeoutCause(cfg *Config) *TimeoutCause {
	msg := cfg.TimeoutMessage
	if msg == "" {
		msg = fmt.Sprintf("timeout of %s exceeded", cfg.Timeout)
	}
	return &TimeoutCause{Timeout: cfg.Timeout, Message: msg}
}

func (t *TimeoutCause) Error() string { return t.Message }

// ContextError converts a done context into ERR_TIMEOUT or ERR_CANCELED.
// It returns nil while ctx is still live.
func ContextError(ctx context.Context, cfg *Config, req any) *Error {
	if ctx.Err() == nil {
		return nil
	}
	cause := context.Cause(ctx)

	var tc *TimeoutCause
	if errors.As(cause, &tc) {
		return From(cause, CodeTimeout, cfg, req, nil)
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		return From(cause, CodeTimeout, cfg, req, nil)
	}
	var reason *CancelReason
	if errors.As(cause, &reason) {
		return From(cause, CodeCanceled, cfg, req, nil)
	}
	return NewError(CodeCanceled, canceledMessage, cfg, req, nil)
}
