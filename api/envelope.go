package api

import "encoding/json"

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Message string          `json:"message"`
	Code    int             `json:"code"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Envelope is the uniform wrapper every backend response uses. Data is kept
// raw so callers decode it into their own types.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorBody      `json:"error,omitempty"`
}

// errorMessage returns the server-provided failure message, if any.
func (e *Envelope) errorMessage() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}
