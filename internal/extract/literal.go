// Package extract implements the HTML and JavaScript extractors that turn a
// fetched body into new work items and OSINT evidence.
package extract

import "regexp"

// urlLiteralPattern matches an absolute http(s) URL literal: the scheme
// prefix followed by a maximal run of characters, stopping at the first one
// that can't plausibly be part of the URL (whitespace, quotes, angle
// brackets, parens).
var urlLiteralPattern = regexp.MustCompile(`https?://[^\s"'<>()]+`)

// ScanURLLiterals returns every URL-shaped literal found in body, in the
// order they appear. Callers are responsible for cleaning and routing each
// match; this function never filters by origin.
func ScanURLLiterals(body string) []string {
	return urlLiteralPattern.FindAllString(body, -1)
}
