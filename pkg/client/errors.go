package client

import (
	"errors"
	"fmt"
)

// ErrorClass represents a classification of fetch failures.
type ErrorClass string

const (
	// ErrorClassTimeout means no response arrived before the fetch deadline.
	ErrorClassTimeout ErrorClass = "timeout"

	// ErrorClassTransport represents connection, DNS and HTTP status failures.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassParse means the body was not a JSON object or null.
	ErrorClassParse ErrorClass = "parse"
)

// Sentinels for errors.Is checks against a FetchError's class.
var (
	// ErrTimeout matches any FetchError of class timeout.
	ErrTimeout = errors.New("fetch timed out")

	// ErrTransport matches any FetchError of class transport.
	ErrTransport = errors.New("transport failure")

	// ErrParse matches any FetchError of class parse.
	ErrParse = errors.New("malformed response body")
)

// FetchError describes why fetching a single address failed.
type FetchError struct {
	URL        string
	Class      ErrorClass
	StatusCode int // 0 when no response was received
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s error (status %d): %v", e.URL, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s error: %v", e.URL, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's class.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Class == ErrorClassTimeout
	case ErrTransport:
		return e.Class == ErrorClassTransport
	case ErrParse:
		return e.Class == ErrorClassParse
	default:
		return false
	}
}

func newFetchError(url string, class ErrorClass, status int, err error) *FetchError {
	return &FetchError{URL: url, Class: class, StatusCode: status, Err: err}
}
