package fdp

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a metadata fetch failed.
type ErrorKind string

const (
	KindTimeout    ErrorKind = "timeout"    // No response within the configured timeout
	KindConnection ErrorKind = "connection" // Network failure or non-2xx status
	KindParse      ErrorKind = "parse"      // Body could not be parsed as RDF
)

// Sentinels for matching a FetchError by kind with errors.Is.
var (
	ErrTimeout    = &FetchError{Kind: KindTimeout}
	ErrConnection = &FetchError{Kind: KindConnection}
	ErrParse      = &FetchError{Kind: KindParse}
)

// FetchError is returned by every fetching operation of the client.
type FetchError struct {
	Kind       ErrorKind
	URI        string
	StatusCode int   // Set for non-2xx responses
	Cause      error // Underlying error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	var msg string
	switch {
	case e.Kind == KindTimeout:
		msg = fmt.Sprintf("Request to %s timed out", e.URI)
	case e.Kind == KindParse:
		msg = fmt.Sprintf("Could not parse RDF from %s", e.URI)
	case e.StatusCode != 0:
		msg = fmt.Sprintf("HTTP error for %s: %d", e.URI, e.StatusCode)
	default:
		msg = fmt.Sprintf("Could not connect to %s", e.URI)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Is matches any FetchError of the same kind, so errors.Is(err, ErrTimeout)
// works regardless of URI or cause.
func (e *FetchError) Is(target error) bool {
	t, ok := target.(*FetchError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsRetryable implements the retry.RetryableError interface. Timeouts and
// server-side HTTP failures are worth another attempt; parse failures and
// client errors are not.
func (e *FetchError) IsRetryable() bool {
	switch e.Kind {
	case KindTimeout:
		return true
	case KindConnection:
		return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// RetryClass implements retry.ClassifiedError: the kind, plus the status
// code for HTTP failures.
func (e *FetchError) RetryClass() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("http_%d", e.StatusCode)
	}
	return string(e.Kind)
}

// newTimeoutError, newConnectionError, newStatusError and newParseError build
// the four failure shapes.
func newTimeoutError(uri string, cause error) *FetchError {
	return &FetchError{Kind: KindTimeout, URI: uri, Cause: cause}
}

func newConnectionError(uri string, cause error) *FetchError {
	return &FetchError{Kind: KindConnection, URI: uri, Cause: cause}
}

func newStatusError(uri string, status int) *FetchError {
	return &FetchError{Kind: KindConnection, URI: uri, StatusCode: status}
}

func newParseError(uri string, cause error) *FetchError {
	return &FetchError{Kind: KindParse, URI: uri, Cause: cause}
}

// KindOf returns the kind of a FetchError anywhere in err's chain, or "" when
// err is not a fetch failure.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
