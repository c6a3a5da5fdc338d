package fetch

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserEngine performs a full headless page load via go-rod: launch,
// navigate, wait for the page to settle, read back the rendered DOM.
//
// go-rod talks to the browser over the Chrome DevTools Protocol, so this
// engine only ever attempts a Chromium-compatible binary; when none can be
// launched it reports itself unavailable rather than trying a Gecko or
// WebKit binary it has no protocol to drive.
type BrowserEngine struct {
	opts      Options
	bin       string
	available bool
}

// NewBrowserEngine looks for an installed Chromium-family browser binary
// once, at construction time. When no binary is on the system the engine
// reports itself absent instead of letting the launcher download a managed
// browser mid-crawl.
func NewBrowserEngine(opts Options) *BrowserEngine {
	e := &BrowserEngine{opts: opts}
	if bin, has := launcher.LookPath(); has {
		e.bin = bin
		e.available = true
	}
	return e
}

// Kind implements Engine.
func (e *BrowserEngine) Kind() Kind { return Browser }

// Available implements Engine.
func (e *BrowserEngine) Available() bool { return e.available }

// Close implements Engine. Browser resources are scoped to a single Fetch
// call, so there is no persistent session to tear down here.
func (e *BrowserEngine) Close() {}

// Fetch launches a fresh browser, loads target, waits for the network to
// quiesce, and returns the rendered DOM. Status is always synthesised to
// 200 on success: the DevTools protocol does not reliably surface the
// main document's real HTTP status.
func (e *BrowserEngine) Fetch(ctx context.Context, target string) Result {
	if !e.available {
		return Result{}
	}

	l := launcher.New().Bin(e.bin).Headless(true).NoSandbox(true)
	defer l.Cleanup()

	controlURL, err := l.Launch()
	if err != nil {
		return Result{}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return Result{}
	}
	defer browser.Close()

	browser = browser.Context(ctx)

	page, err := browser.Page(proto.TargetCreateTarget{URL: target})
	if err != nil {
		return Result{}
	}
	defer page.Close()

	timeout := e.opts.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	page = page.Timeout(timeout)

	if err := page.WaitLoad(); err != nil {
		return Result{}
	}
	// Best-effort network-idle wait; a slow long-poll page should not fail
	// the whole fetch.
	_ = page.WaitIdle(timeout)

	body, err := page.HTML()
	if err != nil {
		return Result{}
	}

	finalURL := target
	if info, infoErr := page.Info(); infoErr == nil && info != nil {
		finalURL = info.URL
	}

	return Result{
		Status:   200,
		Body:     body,
		FinalURL: finalURL,
		Headers:  nil,
	}
}
