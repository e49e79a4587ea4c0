package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Kind classifies a failed exchange into one of a fixed set of categories.
// UI layers branch on Kind (or just print Message), never on raw status codes.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindAuth
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// defaultMessage is the user-facing copy shown when the server did not
// supply a message of its own.
func (k Kind) defaultMessage() string {
	switch k {
	case KindNetwork:
		return "Network request failed. Check your connection."
	case KindTimeout:
		return "The request timed out. Please try again."
	case KindAuth:
		return "Authentication required. Please log in."
	case KindValidation:
		return "Invalid request. Please check your input."
	case KindNotFound:
		return "The requested resource was not found."
	case KindConflict:
		return "The resource already exists."
	case KindRateLimited:
		return "Too many requests. Please try again later."
	case KindServer:
		return "Server error. Please try again later."
	default:
		return "An unexpected error occurred."
	}
}

// Error is the typed failure surfaced by the API layer. Match with errors.As.
type Error struct {
	Kind    Kind
	Status  int             // HTTP status, 0 for transport-level failures
	Message string          // human-readable, always set
	Code    string          // optional machine code from the server
	Details json.RawMessage // raw error body, when the server sent one
	Err     error           // underlying cause, when not an HTTP error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// retryable reports whether the failure happened before any server-side
// state could have changed: connection-level problems and timeouts.
func (e *Error) retryable() bool {
	return e.Kind == KindNetwork || e.Kind == KindTimeout
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: kind.defaultMessage(), Err: err}
}

// kindForStatus maps an HTTP status code to an error Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == 400 || status == 422:
		return KindValidation
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 409:
		return KindConflict
	case status == 429:
		return KindRateLimited
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// errorBody is the error envelope the backend uses for non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

// newHTTPError builds an Error from a non-2xx response. The body is parsed
// best-effort: a malformed body degrades to the Kind's default message.
func newHTTPError(status int, body []byte) *Error {
	kind := kindForStatus(status)
	e := &Error{Kind: kind, Status: status, Message: kind.defaultMessage()}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		if eb.Message != "" {
			e.Message = eb.Message
		}
		e.Code = eb.Code
		e.Details = json.RawMessage(append([]byte(nil), body...))
	}
	return e
}

// Classify converts any failure into a typed *Error. Passing an *Error
// through is a no-op; nil stays nil. The function is pure: no I/O, no
// side effects.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// Cancellation and deadline expiry both mean the exchange was aborted.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindTimeout, err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return newError(KindTimeout, err)
	}

	// url.Error wraps everything http.Client.Do can fail with: DNS,
	// connection refused, TLS handshake, etc.
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return newError(KindNetwork, err)
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		return newError(KindNetwork, err)
	}

	return newError(KindUnknown, err)
}
