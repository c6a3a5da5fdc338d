package crawler

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/reconcrawl/surfacecrawl/internal/crawlstate"
	crawlerrors "github.com/reconcrawl/surfacecrawl/internal/errors"
	"github.com/reconcrawl/surfacecrawl/internal/extract"
	"github.com/reconcrawl/surfacecrawl/internal/urlcanon"
)

// idleTimeout is how long a worker waits on an empty queue before exiting.
const idleTimeout = 2 * time.Second

// runWorker is the per-worker loop. It dequeues until idle, marking every
// dequeued item done on every exit path.
func (c *Crawler) runWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, ok := c.queue.Pop(idleTimeout)
		if !ok {
			return
		}

		c.processItem(ctx, item)
	}
}

// processItem handles a single dequeued item: mark visited, fetch, record,
// classify, extract.
func (c *Crawler) processItem(ctx context.Context, item crawlstate.WorkItem) {
	defer c.queue.Done()

	if !c.visited.TryMarkVisited(item.URL, item.Kind) {
		return
	}

	result := c.policy.Fetch(ctx, item.URL)
	if result.Absent() || result.Body == "" {
		c.logTransportFailure(item.URL, result.Absent())
		return
	}
	if result.Status < 200 || result.Status > 599 {
		return
	}

	finalURL := result.FinalURL
	if finalURL == "" {
		finalURL = item.URL
	}

	canonicalFinal, err := urlcanon.Normalize(urlcanon.Clean(finalURL))
	if err != nil {
		canonicalFinal = item.URL
	}

	// A redirect chain can land outside the crawl's origin. The in-origin
	// finding sets only ever hold same-origin URLs, so an off-origin final
	// URL is recorded as OSINT evidence and goes no further.
	if !urlcanon.SameOrigin(canonicalFinal, c.cfg.Root) {
		c.findings.AddOSINT(canonicalFinal)
		return
	}

	c.findings.RecordAlive(canonicalFinal, result.Status)

	parsedFinal, err := url.Parse(canonicalFinal)
	if err != nil {
		return
	}
	c.classify(canonicalFinal, parsedFinal)

	if result.Status < 200 || result.Status >= 300 {
		return
	}

	extractCtx := extract.Context{
		Root:     c.cfg.Root,
		MaxDepth: c.cfg.Depth,
		Depth:    item.Depth,
		Base:     parsedFinal,
		Visited:  c.visited,
		Queue:    c.queue,
		Findings: c.findings,
		Logger:   c.logger,
	}

	switch item.Kind {
	case crawlstate.KindHTML:
		extract.HTML(result.Body, extractCtx)
	case crawlstate.KindJS:
		extract.JS(result.Body, extractCtx)
	}
}

// classify applies the param/endpoint/api/js classifications to the final
// URL, independent of whether the response was 2xx.
func (c *Crawler) classify(canonicalURL string, parsed *url.URL) {
	if urlcanon.HasQuery(canonicalURL) {
		c.findings.AddParam(canonicalURL)
	}

	pathAndQuery := urlcanon.PathAndQuery(parsed)
	if urlcanon.LooksEndpoint(pathAndQuery) {
		c.findings.AddEndpoint(canonicalURL)
		if urlcanon.LooksAPI(pathAndQuery) {
			c.findings.AddAPIEndpoint(canonicalURL)
		}
	}

	if urlcanon.LooksJS(canonicalURL) {
		c.findings.AddJSFile(canonicalURL)
	}
}

// logTransportFailure logs a dropped fetch at debug level: transport
// failures are expected and non-fatal. The URL stays visited so it is not
// retried this crawl.
func (c *Crawler) logTransportFailure(rawURL string, absent bool) {
	if c.logger == nil {
		return
	}

	cause := errors.New("empty response body")
	if absent {
		cause = errors.New("no response")
	}

	cerr := crawlerrors.Wrap(crawlerrors.ErrTransportFailure, cause)
	c.logger.Debug().Err(cerr).Str("url", rawURL).Msg("dropping URL after transport failure")
}
