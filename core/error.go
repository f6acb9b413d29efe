package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const (
	// UnknownErrorMessage replaces an empty message during normalization.
	UnknownErrorMessage = "an unknown error occurred"
	// Unserializable marks a ToJSON field whose value could not be encoded.
	Unserializable = "[Unserializable]"

	errorName       = "CanonicalError"
	canonicalMarker = "isCanonicalError"
	maxStackDepth   = 32
)

// Error is the canonical failure representation. It is built once at a
// failure boundary and is not mutated afterwards.
type Error struct {
	// Message describes the failure.
	Message string
	// Code classifies the failure.
	Code Code
	// Config is the request configuration that produced the failure, if known.
	Config *Config
	// Request is an opaque handle to the transport request (usually *http.Request).
	Request any
	// Response is set when a response was obtained, e.g. for CodeBadResponse.
	Response *Response
	// Cause is the underlying error.
	Cause error
	// Stack is the diagnostic trace captured at construction or inherited from Cause.
	Stack string
}

// stackCarrier is implemented by errors that carry their own diagnostic trace.
type stackCarrier interface {
	StackTrace() string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("anyhttp: %s: %s", e.Code, e.Message)
	}
	return "anyhttp: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// StackTrace returns the captured diagnostic trace.
func (e *Error) StackTrace() string { return e.Stack }

// Status returns the response status code, or 0 when no response was obtained.
func (e *Error) Status() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// NewError creates a canonical error with a freshly captured stack.
func NewError(code Code, message string, cfg *Config, req any, resp *Response) *Error {
	if message == "" {
		message = UnknownErrorMessage
	}
	return &Error{
		Message:  message,
		Code:     code,
		Config:   cfg,
		Request:  req,
		Response: resp,
		Stack:    captureStack(3),
	}
}

// NewConfigError creates a CodeBadOption error for malformed configuration.
func NewConfigError(message string, cfg *Config) *Error {
	return &Error{
		Message: message,
		Code:    CodeBadOption,
		Config:  cfg,
		Stack:   captureStack(3),
	}
}

// From normalizes v into a canonical error.
//
// A *Error is returned unchanged. An error wrapping a *Error inherits any of the
// code, config, request and response not supplied here. Any other value keeps
// its message, with UnknownErrorMessage standing in for an empty one.
func From(v any, code Code, cfg *Config, req any, resp *Response) *Error {
	if ce, ok := v.(*Error); ok {
		if ce != nil {
			return ce
		}
		v = nil
	}

	e := &Error{Code: code, Config: cfg, Request: req, Response: resp}
	switch x := v.(type) {
	case nil:
	case error:
		e.Message = x.Error()
		e.Cause = x
		var inner *Error
		if errors.As(x, &inner) {
			e.inherit(inner)
		}
		var sc stackCarrier
		if errors.As(x, &sc) {
			e.Stack = sc.StackTrace()
		}
	case string:
		e.Message = x
	case fmt.Stringer:
		e.Message = x.String()
	default:
		e.Message = fmt.Sprint(x)
	}

	if e.Message == "" {
		e.Message = UnknownErrorMessage
	}
	if e.Stack == "" {
		e.Stack = captureStack(3)
	}
	return e
}

func (e *Error) inherit(inner *Error) {
	if e.Code == "" {
		e.Code = inner.Code
	}
	if e.Config == nil {
		e.Config = inner.Config
	}
	if e.Request == nil {
		e.Request = inner.Request
	}
	if e.Response == nil {
		e.Response = inner.Response
	}
}

// ToJSON returns a JSON-ready report of the error. Every field is encoded
// independently: a field that cannot be serialized is replaced with
// Unserializable and the others are kept.
func (e *Error) ToJSON() map[string]any {
	out := map[string]any{
		"name":    errorName,
		"message": e.Message,
		"code":    string(e.Code),
		"stack":   e.Stack,
		"status":  nil,
	}
	if e.Response != nil {
		out["status"] = e.Response.Status
	}
	out["config"] = safeValue(func() any { return e.Config.view() })
	out["response"] = safeValue(func() any { return e.Response.view() })
	return out
}

// MarshalJSON implements json.Marshaler using ToJSON.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToJSON())
}

// IsCanonicalError reports whether v is a canonical error, or a plain record
// carrying a boolean "isCanonicalError" marker. Only the marker's presence and
// type are checked.
//
// A plain record means a map[string]any, the shape decoded JSON takes. Other
// map types and structs are not inspected and report false.
func IsCanonicalError(v any) bool {
	switch x := v.(type) {
	case *Error:
		return x != nil
	case map[string]any:
		marker, ok := x[canonicalMarker]
		if !ok {
			return false
		}
		_, isBool := marker.(bool)
		return isBool
	case error:
		var ce *Error
		return errors.As(x, &ce)
	default:
		return false
	}
}

// IsCancel reports whether v is a canonical cancellation error.
func IsCancel(v any) bool { return hasCode(v, CodeCanceled) }

// IsConfigError reports whether v is a canonical configuration error.
func IsConfigError(v any) bool { return hasCode(v, CodeBadOption) }

// IsTimeout reports whether v is a canonical timeout error.
func IsTimeout(v any) bool { return hasCode(v, CodeTimeout) }

// IsNetwork reports whether v is a canonical network error.
func IsNetwork(v any) bool { return hasCode(v, CodeNetwork) }

// IsBadResponse reports whether v is a canonical bad-response error.
func IsBadResponse(v any) bool { return hasCode(v, CodeBadResponse) }

func hasCode(v any, code Code) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var ce *Error
	return errors.As(err, &ce) && ce.Code == code
}

// safeValue evaluates fn and returns its result only if it encodes as JSON.
func safeValue(fn func() any) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = Unserializable
		}
	}()
	v := fn()
	if _, err := json.Marshal(v); err != nil {
		return Unserializable
	}
	return v
}

func captureStack(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}
