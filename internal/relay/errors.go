package relay

import "fmt"

// Kind classifies a failed relay attempt. Every upstream or transport
// failure is classified exactly once at the call site and the handler
// switches on the kind to pick an HTTP status.
type Kind int

const (
	// KindInternal is the catch-all for failures nothing else claims
	KindInternal Kind = iota
	// KindConfig means no upstream API key is configured
	KindConfig
	// KindAuth means the upstream rejected our credentials (401)
	KindAuth
	// KindRateLimited means the upstream returned 429
	KindRateLimited
	// KindUnavailable covers any other non-200 upstream status
	KindUnavailable
	// KindFormat means a 200 response had no usable choices
	KindFormat
	// KindTimeout means the upstream call exceeded the hard timeout
	KindTimeout
	// KindNetwork covers other transport-level failures
	KindNetwork
)

// String returns the metric/log label for the kind
func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindFormat:
		return "format"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	default:
		return "internal"
	}
}

// Status returns the HTTP status the client receives for this kind.
// Auth failures deliberately map to 500 so upstream credential problems are
// never presented as a client authentication issue.
func (k Kind) Status() int {
	switch k {
	case KindRateLimited:
		return 429
	case KindUnavailable, KindNetwork:
		return 503
	case KindTimeout:
		return 504
	default:
		return 500
	}
}

// Message returns the human-readable error string for the client. These are
// the only strings a caller ever sees; upstream detail stays in the logs.
func (k Kind) Message() string {
	switch k {
	case KindConfig:
		return "API configuration error. Please contact support."
	case KindAuth:
		return "API authentication failed. Please check configuration."
	case KindRateLimited:
		return "Rate limit exceeded. Please try again in a moment."
	case KindUnavailable:
		return "API service unavailable. Please try again later."
	case KindFormat:
		return "Invalid response from AI service."
	case KindTimeout:
		return "Request timeout. Please try again."
	case KindNetwork:
		return "Network error. Please check your connection and try again."
	default:
		return "An unexpected error occurred. Please try again."
	}
}

// Error is the tagged result of a failed relay attempt
type Error struct {
	Kind  Kind
	cause error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// Error implements the error interface with the internal detail included;
// this string is for logs, not for clients.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("relay %s: %v", e.Kind, e.cause)
	}
	return "relay " + e.Kind.String()
}

// Unwrap exposes the underlying cause
func (e *Error) Unwrap() error {
	return e.cause
}
