// Package crawler ties the fetch, extract, crawlstate, and findings
// packages together into the worker-pool crawl engine.
package crawler

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reconcrawl/surfacecrawl/internal/config"
	"github.com/reconcrawl/surfacecrawl/internal/crawlstate"
	crawlerrors "github.com/reconcrawl/surfacecrawl/internal/errors"
	"github.com/reconcrawl/surfacecrawl/internal/fetch"
	"github.com/reconcrawl/surfacecrawl/internal/findings"
	"github.com/reconcrawl/surfacecrawl/internal/urlcanon"
)

// Crawler holds all of a crawl's mutable state on a single value:
// visited/queue state, the fetch policy, and the finding collections are
// all reached from here rather than from package globals.
type Crawler struct {
	cfg config.SeedConfig

	policy   *fetch.Policy
	queue    *crawlstate.Queue
	visited  *crawlstate.VisitedSets
	findings *findings.Findings
	logger   *zerolog.Logger
}

// New constructs a Crawler ready to Run. Optional-engine availability is
// discovered here, once, not per request.
func New(cfg config.SeedConfig, logger *zerolog.Logger) *Crawler {
	policy := fetch.NewPolicy(cfg.Mode, fetch.Options{
		Timeout:   cfg.Timeout,
		ProxyURL:  cfg.ProxyURL,
		TLSVerify: true,
		RateLimit: cfg.RateLimit,
	}, logger)

	return &Crawler{
		cfg:      cfg,
		policy:   policy,
		queue:    crawlstate.NewQueue(),
		visited:  crawlstate.NewVisitedSets(),
		findings: findings.NewFindings(),
		logger:   logger,
	}
}

// Run seeds the queue with the canonicalised seed URL, starts cfg.Threads
// workers, blocks until every worker has exited its own idle timeout, and
// returns a frozen snapshot of the findings.
func (c *Crawler) Run(ctx context.Context) (findings.Snapshot, error) {
	defer c.policy.Close()
	defer c.queue.Close()

	seed := urlcanon.Clean(c.cfg.Seed)
	normalised, err := urlcanon.Normalize(seed)
	if err != nil {
		return findings.Snapshot{}, crawlerrors.Wrap(crawlerrors.ErrInvalidSeed, err)
	}

	if c.visited.TryMarkQueued(normalised, crawlstate.KindHTML) {
		c.queue.Push(crawlstate.WorkItem{URL: normalised, Depth: 0, Kind: crawlstate.KindHTML})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < c.cfg.Threads; i++ {
		g.Go(func() error {
			c.runWorker(gctx)
			return nil
		})
	}

	// Workers never return an error; transport and parse failures are
	// dropped item by item. The errgroup gives every worker a shared
	// cancellable context.
	_ = g.Wait()

	return c.findings.Freeze(), nil
}

// VisitedCount exposes the number of URLs visited so far, useful for a
// progress line in the CLI.
func (c *Crawler) VisitedCount() int {
	return c.visited.VisitedCount()
}
