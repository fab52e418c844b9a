package httpclient

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
)

// Error codes attached to failures that carry no upstream code of their own
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeRequestError = "REQUEST_ERROR"
	CodeCircuitOpen  = "CIRCUIT_OPEN"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid http client configuration")
	// ErrDecode indicates a successful response whose body could not be decoded
	ErrDecode = errors.New("failed to decode response body")
)

// Kind classifies an Error
type Kind int

const (
	// KindUnknown is the zero value and never produced by Classify
	KindUnknown Kind = iota
	// KindClient is a 4xx response; never retried
	KindClient
	// KindServer is any other non-2xx response; retried with backoff
	KindServer
	// KindNetwork means the request was sent but no response arrived; retried with backoff
	KindNetwork
	// KindConfig means the request could not be built or dispatched; never retried
	KindConfig
)

// String returns the string representation of a Kind
func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Failure is the raw outcome of a failed call, before classification.
// It is one of ResponseFailure, NoResponseFailure or ConfigFailure.
type Failure interface {
	failure()
}

// ResponseFailure is a call that received a non-2xx response
type ResponseFailure struct {
	StatusCode int
	Code       string
	Body       []byte
}

// NoResponseFailure is a call that was dispatched but got no response (transport error, timeout)
type NoResponseFailure struct {
	Err error
}

// ConfigFailure is a call that failed before it was dispatched
type ConfigFailure struct {
	Err  error
	Code string
}

func (ResponseFailure) failure()   {}
func (NoResponseFailure) failure() {}
func (ConfigFailure) failure()     {}

// Error is a classified request failure.
// Status is non-zero only when the failure came from a received response.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Code    string
	Data    []byte
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("http error: status %d: %s", e.Status, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("http error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("http error: %s", e.Message)
}

// Unwrap returns the underlying transport or configuration error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error is a 404 response
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsClientError checks if the error is a 4xx response
func (e *Error) IsClientError() bool {
	return e.Status >= 400 && e.Status < 500
}

// IsRetryable reports whether another attempt could succeed
func (e *Error) IsRetryable() bool {
	return e.Kind == KindServer || e.Kind == KindNetwork
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request - Invalid parameters",
	http.StatusUnauthorized:        "Unauthorized - Authentication required",
	http.StatusForbidden:           "Forbidden - Access denied",
	http.StatusNotFound:            "Not Found - Resource does not exist",
	http.StatusTooManyRequests:     "Too Many Requests - Rate limit exceeded",
	http.StatusInternalServerError: "Internal Server Error",
	http.StatusBadGateway:          "Bad Gateway - Server error",
	http.StatusServiceUnavailable:  "Service Unavailable",
}

// StatusMessage returns the human readable message for an HTTP status
func StatusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("HTTP Error %d", status)
}

// Classify maps a raw failure to an Error. It has no side effects and
// returns equal records for equal inputs.
func Classify(f Failure) *Error {
	switch f := f.(type) {
	case ResponseFailure:
		kind := KindServer
		if f.StatusCode >= 400 && f.StatusCode < 500 {
			kind = KindClient
		}
		return &Error{
			Kind:    kind,
			Message: StatusMessage(f.StatusCode),
			Status:  f.StatusCode,
			Code:    f.Code,
			Data:    bytes.Clone(f.Body),
		}
	case NoResponseFailure:
		return &Error{
			Kind:    KindNetwork,
			Message: "Network Error - No response received",
			Code:    CodeNetworkError,
			Err:     f.Err,
		}
	case ConfigFailure:
		msg := "Request configuration error"
		if f.Err != nil && f.Err.Error() != "" {
			msg = f.Err.Error()
		}
		code := f.Code
		if code == "" {
			code = CodeRequestError
		}
		return &Error{
			Kind:    KindConfig,
			Message: msg,
			Code:    code,
			Err:     f.Err,
		}
	default:
		return &Error{
			Kind:    KindConfig,
			Message: "Request configuration error",
			Code:    CodeRequestError,
		}
	}
}
