// Package urlcanon implements the crawler's URL cleanup, normalisation,
// and classification rules. Every URL that enters a finding set or the
// work queue has passed through Clean and Normalize first.
package urlcanon

import (
	"net/url"
	"strings"
)

// Clean strips surrounding quotes/backslashes and garbage prefixes from a
// raw string pulled out of HTML or JS source. Links embedded in JS string
// literals are routinely prefixed with stray characters or a bare protocol
// fragment, so Clean looks for the first "http" occurrence and keeps the
// suffix from there.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = strings.Trim(s, `"'`)
	s = strings.ReplaceAll(s, `\`, "")

	if idx := strings.Index(s, "http"); idx >= 0 {
		s = s[idx:]
	}

	return strings.TrimSpace(s)
}

// Normalize parses u and returns its canonical form: empty path becomes
// "/", a single trailing slash is stripped from non-root paths, and the
// fragment is dropped. Scheme, authority, and query are preserved.
//
// Normalize is idempotent: Normalize(Normalize(u)) == Normalize(u).
func Normalize(raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	parsed.Fragment = ""

	if parsed.Path == "" {
		parsed.Path = "/"
	} else if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}

	return parsed.String(), nil
}

// SameOrigin reports whether u's network authority (host[:port], scheme as
// written) equals root exactly. No DNS resolution or suffix matching is
// performed.
func SameOrigin(raw, root string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return Authority(parsed) == root
}

// Authority returns the network authority a URL belongs to: scheme://host[:port].
func Authority(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

// RootOf derives the crawl's root authority from a seed URL.
func RootOf(seed string) (string, error) {
	parsed, err := url.Parse(seed)
	if err != nil {
		return "", err
	}
	return Authority(parsed), nil
}

// LooksJS reports whether u's path (query stripped, case-folded) ends in ".js".
func LooksJS(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".js")
}

// endpointMarkers are the case-folded substrings that mark a path+query as
// an API-shaped endpoint.
var endpointMarkers = []string{"/api/", "/rest/", "/v1/", "/v2/", "/graphql", "/admin", "/auth"}

// LooksEndpoint reports whether pathAndQuery (case-folded) contains any
// endpoint marker, or contains a query string at all.
func LooksEndpoint(pathAndQuery string) bool {
	if strings.Contains(pathAndQuery, "?") {
		return true
	}
	lower := strings.ToLower(pathAndQuery)
	for _, marker := range endpointMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// apiMarkers further narrows endpoints down to API-shaped ones.
var apiMarkers = []string{"/api/", "/rest/", "graphql"}

// LooksAPI reports whether pathAndQuery (case-folded) contains an API marker.
func LooksAPI(pathAndQuery string) bool {
	lower := strings.ToLower(pathAndQuery)
	for _, marker := range apiMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// PathAndQuery returns the path+query portion of a parsed URL, the form
// LooksEndpoint and LooksAPI classify against.
func PathAndQuery(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}
	return u.Path + "?" + u.RawQuery
}

// HasQuery reports whether raw's normalised form carries a non-empty query.
func HasQuery(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.RawQuery != ""
}
