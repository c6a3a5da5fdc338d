// Package fetch implements the crawler's interchangeable fetch engines
// (plain HTTP, challenge-tolerant HTTP, headless browser) and the adaptive
// policy that escalates between them on hostile-looking responses.
package fetch

import (
	"context"
	"net/http"
)

// Kind names one of the three fetch engines.
type Kind int

const (
	// Plain is a reusable HTTP client with UA rotation.
	Plain Kind = iota
	// Challenge layers cookie-echo tolerance for soft HTTP-level challenges
	// on top of Plain.
	Challenge
	// Browser performs a full headless page load.
	Browser
)

func (k Kind) String() string {
	switch k {
	case Challenge:
		return "challenge"
	case Browser:
		return "browser"
	default:
		return "plain"
	}
}

// Result is what every engine returns from a Fetch call. A Status of 0
// signals network failure; valid HTTP status codes are always >= 100.
type Result struct {
	Status   int
	Body     string
	FinalURL string
	Headers  http.Header
}

// Absent reports whether this result represents a transport failure.
func (r Result) Absent() bool {
	return r.Status == 0
}

// Engine is the shared contract every fetch engine implements.
type Engine interface {
	Kind() Kind
	Fetch(ctx context.Context, url string) Result
	Available() bool
	Close()
}
