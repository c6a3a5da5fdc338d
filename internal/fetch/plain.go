package fetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// userAgentPool is the fixed pool of desktop UA strings the plain engine
// rotates through per request.
var userAgentPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Options configures every engine built by this package.
type Options struct {
	Timeout   time.Duration
	ProxyURL  string // when set, both http and https traffic is routed through it
	TLSVerify bool
	// RateLimit is the aggregate requests-per-second the Policy's rate
	// limiter enforces across all workers, independent of engine. Zero
	// means unlimited.
	RateLimit int
}

// PlainEngine is a reusable HTTP client with connection reuse, redirects
// followed, and per-request User-Agent rotation.
type PlainEngine struct {
	client *http.Client
	opts   Options
}

// NewPlainEngine builds a PlainEngine. If opts.ProxyURL is set, traffic for
// both schemes is routed through it and TLS verification is disabled: an
// intercepting proxy terminates TLS with its own certificate.
func NewPlainEngine(opts Options) *PlainEngine {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !opts.TLSVerify || opts.ProxyURL != "",
		},
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	if opts.ProxyURL != "" {
		if proxy, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(proxy)
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("stopped after %d redirects", len(via))
			}
			return nil
		},
	}

	return &PlainEngine{client: client, opts: opts}
}

// Kind implements Engine.
func (e *PlainEngine) Kind() Kind { return Plain }

// Available implements Engine. Plain is always available.
func (e *PlainEngine) Available() bool { return true }

// Close implements Engine. The underlying transport's idle connections are
// released on process exit; nothing to do here.
func (e *PlainEngine) Close() {}

// Fetch performs a single GET with rotated headers.
func (e *PlainEngine) Fetch(ctx context.Context, target string) Result {
	return doPlainFetch(ctx, e.client, target)
}

// doPlainFetch is shared by PlainEngine and ChallengeEngine (which wraps a
// second *http.Client sharing this request-building logic).
func doPlainFetch(ctx context.Context, client *http.Client, target string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{}
	}

	req.Header.Set("User-Agent", userAgentPool[rand.Intn(len(userAgentPool))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")

	resp, err := client.Do(req)
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Result{
		Status:   resp.StatusCode,
		Body:     string(body),
		FinalURL: finalURL,
		Headers:  resp.Header,
	}
}

// lowerHeader folds a header name for WAF-marker matching.
func lowerHeader(name string) string {
	return strings.ToLower(name)
}
