// Package errors defines the coded errors shared by the CLI and the API
// server.
//
// Every failure a user can act on carries a [Code]. The CLI prints the
// message, the API sends the code in the JSON error body and picks the
// response status with [HTTPStatus]. Codes group by prefix: INVALID_* for
// bad input, *NOT_FOUND for missing files and maps, NETWORK_ERROR, TIMEOUT
// and RATE_LIMITED for the transport, GENERATION_FAILED when the generator
// returns nothing usable.
//
//	if err := errors.ValidateDepth(d); errors.Is(err, errors.ErrCodeInvalidDepth) {
//	    ...
//	}
//
//	return errors.Wrap(errors.ErrCodeGeneration, err, "generate map for %q", topic)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidDepth  Code = "INVALID_DEPTH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidGraph  Code = "INVALID_GRAPH"
	ErrCodeInvalidMapID  Code = "INVALID_MAP_ID"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeMapNotFound Code = "MAP_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Generation errors
	ErrCodeGeneration Code = "GENERATION_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error       { return e.Cause }
func (e *Error) ErrorCode() Code     { return e.Code }
func (e *Error) userMessage() string { return e.Message }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return Wrap(code, nil, format, args...)
}

// Wrap returns an Error with a formatted message around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// coder is implemented by the error types of this package.
type coder interface {
	error
	ErrorCode() Code
}

// Is reports whether err carries the given code, looking through the
// error chain as [GetCode] does.
func Is(err error, code Code) bool {
	c := GetCode(err)
	return c != "" && c == code
}

// GetCode returns the code of the first coded error in err's chain, or ""
// when there is none.
func GetCode(err error) Code {
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns err's message without the code prefix. Uncoded
// errors are returned as they print.
func UserMessage(err error) string {
	var m interface{ userMessage() string }
	if errors.As(err, &m) {
		if msg := m.userMessage(); msg != "" {
			return msg
		}
	}
	return err.Error()
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
// Unknown and empty codes map to 500.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeInvalidDepth, ErrCodeInvalidFormat,
		ErrCodeInvalidGraph, ErrCodeInvalidMapID, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeMapNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNetwork, ErrCodeGeneration:
		return http.StatusBadGateway
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// RateLimitedError is returned when a request was refused for exceeding a
// rate limit. RetryAfter is in seconds; zero means unknown.
type RateLimitedError struct {
	RetryAfter int
	Message    string
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitedError) ErrorCode() Code     { return ErrCodeRateLimited }
func (e *RateLimitedError) userMessage() string { return e.Message }
