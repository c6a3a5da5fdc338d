package extract

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reconcrawl/surfacecrawl/internal/crawlstate"
	"github.com/reconcrawl/surfacecrawl/internal/findings"
	"github.com/reconcrawl/surfacecrawl/internal/urlcanon"
)

// Context carries everything an extractor needs to resolve, classify, and
// enqueue the links and script references it finds in a fetched body. One
// Context is built per worker cycle, scoped to the URL that was just
// fetched.
type Context struct {
	Root     string // network authority of the seed; see urlcanon.SameOrigin
	MaxDepth int
	Depth    int // depth of the URL currently being extracted
	Base     *url.URL

	Visited  *crawlstate.VisitedSets
	Queue    *crawlstate.Queue
	Findings *findings.Findings
	Logger   *zerolog.Logger // optional; nil in tests that don't care about logging
}

// routeAnchor handles an <a href> value: resolve against Base, clean,
// normalise; off-origin goes to OSINT, in-origin is enqueued as html
// subject to depth and dedup.
func (c Context) routeAnchor(href string) {
	resolved := resolveAgainst(c.Base, href)
	if resolved == "" {
		return
	}

	cleaned := urlcanon.Clean(resolved)
	normalised, err := urlcanon.Normalize(cleaned)
	if err != nil {
		return
	}

	if !urlcanon.SameOrigin(normalised, c.Root) {
		c.Findings.AddOSINT(normalised)
		return
	}

	c.enqueueIfRoom(normalised, crawlstate.KindHTML)
}

// routeScriptSrc handles a <script src> value: same resolve/clean/normalise
// treatment as an anchor, but enqueued under the js kind.
func (c Context) routeScriptSrc(src string) {
	resolved := resolveAgainst(c.Base, src)
	if resolved == "" {
		return
	}

	cleaned := urlcanon.Clean(resolved)
	normalised, err := urlcanon.Normalize(cleaned)
	if err != nil {
		return
	}

	if !urlcanon.SameOrigin(normalised, c.Root) {
		c.Findings.AddOSINT(normalised)
		return
	}

	c.enqueueIfRoom(normalised, crawlstate.KindJS)
}

// routeScriptLiteral handles a URL pulled out of a script body: resolve the
// raw match against the script's own URL, clean it, then route. Off-origin
// matches go to OSINT as-is; in-origin matches are normalised, classified
// by LooksJS, and enqueued. Unlike anchors, the origin check here runs on
// the cleaned form, before normalisation.
func (c Context) routeScriptLiteral(raw string) {
	resolved := resolveAgainst(c.Base, raw)
	if resolved == "" {
		return
	}
	cleaned := urlcanon.Clean(resolved)

	if !urlcanon.SameOrigin(cleaned, c.Root) {
		c.Findings.AddOSINT(cleaned)
		return
	}

	normalised, err := urlcanon.Normalize(cleaned)
	if err != nil {
		return
	}

	kind := crawlstate.KindHTML
	if urlcanon.LooksJS(normalised) {
		kind = crawlstate.KindJS
	}
	c.enqueueIfRoom(normalised, kind)
}

// enqueueIfRoom enqueues u under kind if depth+1 <= MaxDepth and the URL is
// not already queued or visited under that kind.
func (c Context) enqueueIfRoom(u string, kind crawlstate.Kind) {
	if c.Depth+1 > c.MaxDepth {
		return
	}
	if !c.Visited.TryMarkQueued(u, kind) {
		return
	}
	c.Queue.Push(crawlstate.WorkItem{URL: u, Depth: c.Depth + 1, Kind: kind})
}

// resolveAgainst resolves href against base, rejecting fragment-only,
// javascript:, mailto:, data:, and non-http(s) targets. Returns "" when href
// is not a usable crawl target.
func resolveAgainst(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") || strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}

	return resolved.String()
}
