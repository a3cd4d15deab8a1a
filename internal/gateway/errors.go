package gateway

import (
	"encoding/json"
	"fmt"
)

// genericFailure is surfaced when the server supplies no message of its own.
const genericFailure = "request failed"

// Error is the single failure shape for all remote calls: a transport
// failure, a non-2xx status, or an unparseable response body.
type Error struct {
	StatusCode int    // 0 for transport and decode failures
	Detail     string // server-supplied message, when present
	Body       string // raw response body tail, for diagnostics
	Err        error  // underlying transport or decode error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("gateway: %v", e.Err)
	case e.Detail != "":
		return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Detail)
	default:
		return fmt.Sprintf("gateway: HTTP %d: %s", e.StatusCode, e.Body)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-visible failure text: the server-supplied detail
// when present, otherwise a generic fallback.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return genericFailure
}

// statusError builds an *Error from a non-2xx response body, extracting the
// detail field of the service's error envelope when the body parses.
func statusError(statusCode int, body []byte) *Error {
	e := &Error{StatusCode: statusCode, Body: string(body)}

	var envelope struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Detail != "" {
		e.Detail = envelope.Detail
	}
	return e
}

func transportError(err error) *Error {
	return &Error{Err: err}
}

func decodeError(err error) *Error {
	return &Error{Err: fmt.Errorf("malformed response: %w", err)}
}
