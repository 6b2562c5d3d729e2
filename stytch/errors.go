package stytch

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error
type Kind int

const (
	// KindOther wraps transport failures: network errors, timeouts and bodies
	// that could not be decoded.
	KindOther Kind = iota
	// KindResponse means the service rejected the request with an ErrorResponse
	KindResponse
	// KindInvalidHeaderValue means the credentials could not be encoded as a header
	KindInvalidHeaderValue
	// KindInvalidURL means the base URL could not be parsed
	KindInvalidURL
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindInvalidHeaderValue:
		return "invalid header value"
	case KindInvalidURL:
		return "invalid url"
	default:
		return "other"
	}
}

// Sentinel errors matched by errors.Is against an *Error of the same kind
var (
	ErrInvalidHeaderValue = errors.New("stytch: invalid header value")
	ErrInvalidURL         = errors.New("stytch: invalid url")
)

// Error is the single error type returned by every request
type Error struct {
	Kind Kind
	// Response is set when Kind is KindResponse
	Response *ErrorResponse
	// Err is the underlying cause for every other kind
	Err error
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewResponseError wraps an application level rejection
func NewResponseError(resp *ErrorResponse) *Error {
	return &Error{Kind: KindResponse, Response: resp}
}

// NewOtherError wraps a transport failure without reinterpreting it
func NewOtherError(err error) *Error {
	return newError(KindOther, err)
}

// NewInvalidHeaderError reports credentials that are not a valid header value
func NewInvalidHeaderError(err error) *Error {
	return newError(KindInvalidHeaderValue, err)
}

// NewInvalidURLError reports an unusable base URL
func NewInvalidURLError(err error) *Error {
	return newError(KindInvalidURL, err)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Kind == KindResponse && e.Response != nil {
		return e.Response.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("stytch: %s", e.Kind)
	}
	return fmt.Sprintf("stytch: %s: %v", e.Kind, e.Err)
}

// Unwrap exposes the ErrorResponse or the underlying cause
func (e *Error) Unwrap() error {
	if e.Kind == KindResponse && e.Response != nil {
		return e.Response
	}
	return e.Err
}

// Is matches the kind sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidHeaderValue:
		return e.Kind == KindInvalidHeaderValue
	case ErrInvalidURL:
		return e.Kind == KindInvalidURL
	}
	return false
}

// ErrorResponse is the body Stytch returns with a non-2xx status
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	RequestID  string `json:"request_id"`

	ErrorType    string `json:"error_type"`
	ErrorMessage string `json:"error_message"`
	ErrorURL     string `json:"error_url"`
}

// RequiredFields lists the keys an error body must carry. A missing
// status_code is filled from the HTTP status.
func (*ErrorResponse) RequiredFields() []string {
	return []string{"request_id", "error_type", "error_message"}
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("stytch API error: status %d: %s: %s (request %s)",
		e.StatusCode, e.ErrorType, e.ErrorMessage, e.RequestID)
}

// IsNotFound checks if the error indicates a not found response
func (e *ErrorResponse) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *ErrorResponse) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// AsResponse extracts the ErrorResponse carried by err, if any
func AsResponse(err error) (*ErrorResponse, bool) {
	var resp *ErrorResponse
	if errors.As(err, &resp) {
		return resp, true
	}
	return nil, false
}
