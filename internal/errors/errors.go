// Package errors defines the crawler's single concrete error type and its
// sentinels. All errors carry a machine-readable Code that callers can
// inspect without string matching, and optionally wrap an underlying cause
// so that errors.Is / errors.As chains still work across package
// boundaries.
package errors

import (
	"errors"
	"fmt"
)

// CrawlError is the crawler's single concrete error type.
type CrawlError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CrawlError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// Is matches CrawlError sentinels by Code, ignoring Message and Cause, so a
// wrapped sentinel (see Wrap) still satisfies errors.Is against the bare one.
func (e *CrawlError) Is(target error) bool {
	var t *CrawlError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Wrap returns a new CrawlError sharing base's code and message, recording
// cause as the underlying error.
func Wrap(base *CrawlError, cause error) *CrawlError {
	return &CrawlError{Code: base.Code, Message: base.Message, Cause: cause}
}

// ErrInvalidSeed is returned when the seed URL cannot be parsed into a root authority.
var ErrInvalidSeed = &CrawlError{
	Code:    "invalid_seed",
	Message: "seed URL could not be parsed",
}

// ErrTransportFailure marks a dropped URL whose fetch failed at the
// transport layer (DNS, connect, read, TLS, protocol). Never fatal; logged
// at debug level and the worker continues.
var ErrTransportFailure = &CrawlError{
	Code:    "transport_failure",
	Message: "fetch failed at the transport layer",
}

// ErrEngineUnavailable marks a request whose explicitly-requested challenge
// or browser engine isn't available, so the policy falls back to plain.
var ErrEngineUnavailable = &CrawlError{
	Code:    "engine_unavailable",
	Message: "requested fetch engine is unavailable, falling back to plain",
}

// ErrParseFailure marks an unparseable response body: the extractor treats
// it as empty and emits no findings from it.
var ErrParseFailure = &CrawlError{
	Code:    "parse_failure",
	Message: "response body could not be parsed",
}
