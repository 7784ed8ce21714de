package api

import "errors"

// ErrorKind classifies every failure the client can surface.
type ErrorKind string

const (
	// KindTimeout - the request exceeded the configured bound and was cancelled
	KindTimeout ErrorKind = "timeout"
	// KindNetwork - no response was obtained at all
	KindNetwork ErrorKind = "network"
	// KindHTTP - the server returned a structured failure envelope
	KindHTTP ErrorKind = "http"
	// KindUnauthenticated - token renewal failed or no refresh token was available
	KindUnauthenticated ErrorKind = "unauthenticated"
)

// Fallback messages used when the server provides none. The strings are
// user-facing; callers display them verbatim.
const (
	timeoutMessage         = "Request timeout"
	networkMessage         = "Network error"
	genericFailureMessage  = "Request failed"
	unauthenticatedMessage = "Session expired, please log in again"
)

// Error is the single error type crossing the client boundary. Message is
// always populated and safe to show to a user; StatusCode is set only for
// KindHTTP.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

func newTimeoutError() *Error {
	return &Error{Kind: KindTimeout, Message: timeoutMessage}
}

func newNetworkError() *Error {
	return &Error{Kind: KindNetwork, Message: networkMessage}
}

func newHTTPError(statusCode int, message string) *Error {
	if message == "" {
		message = genericFailureMessage
	}
	return &Error{Kind: KindHTTP, StatusCode: statusCode, Message: message}
}

func newUnauthenticatedError() *Error {
	return &Error{Kind: KindUnauthenticated, Message: unauthenticatedMessage}
}

// AsError extracts the typed client error from err's chain, or nil.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsUnauthenticated reports whether err is a terminal authentication failure.
func IsUnauthenticated(err error) bool {
	apiErr := AsError(err)
	return apiErr != nil && apiErr.Kind == KindUnauthenticated
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	apiErr := AsError(err)
	return apiErr != nil && apiErr.Kind == KindTimeout
}
