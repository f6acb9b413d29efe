package core

// Code is a machine-readable error code carried by every canonical error.
type Code string

// Configuration errors. These fail fast and never reach the interceptor chain.
const (
	// CodeBadOption indicates malformed or unsupported request configuration.
	CodeBadOption Code = "ERR_BAD_OPTION"
)

// Transport errors produced by adapters and the dispatcher.
const (
	// CodeNetwork indicates a transport failure before any response was received.
	CodeNetwork Code = "ERR_NETWORK"
	// CodeTimeout indicates the configured timeout elapsed before the call settled.
	CodeTimeout Code = "ERR_TIMEOUT"
	// CodeCanceled indicates the call was canceled through its context.
	CodeCanceled Code = "ERR_CANCELED"
	// CodeBadResponse indicates a response was obtained but failed validation or decoding.
	CodeBadResponse Code = "ERR_BAD_RESPONSE"
)

// String returns the code value.
func (c Code) String() string { return string(c) }

// IsTransport reports whether the code belongs to the adapter contract.
func (c Code) IsTransport() bool {
	switch c {
	case CodeNetwork, CodeTimeout, CodeCanceled, CodeBadResponse:
		return true
	default:
		return false
	}
}
