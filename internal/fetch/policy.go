package fetch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	crawlerrors "github.com/reconcrawl/surfacecrawl/internal/errors"
)

// Mode selects how the adaptive policy picks an engine.
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModePlain     Mode = "plain"
	ModeChallenge Mode = "challenge"
	ModeBrowser   Mode = "browser"
)

// Policy is the adaptive fetch policy: in auto mode it starts on Plain and
// escalates to Challenge then Browser when a response looks WAF-like,
// stickily keeping the escalated engine for the rest of the crawl. In any
// other mode the named engine is used unconditionally; if that engine is
// unavailable the request falls back to plain with a one-time log notice.
//
// mu guards the mutable current-engine slot during an adaptive switch.
type Policy struct {
	mode Mode

	mu      sync.Mutex
	current Kind

	engines map[Kind]Engine

	// limiter bounds the aggregate request rate across every worker sharing
	// this policy, regardless of which engine ends up serving a given
	// request. nil means unlimited.
	limiter *rate.Limiter

	logger            *zerolog.Logger
	notifiedFallbacks map[Kind]bool
}

// NewPolicy wires up all three engines (browser/challenge availability is
// probed once, here, at construction) and resolves the starting engine for
// the given mode.
func NewPolicy(mode Mode, opts Options, logger *zerolog.Logger) *Policy {
	p := newPolicy(mode, logger, map[Kind]Engine{
		Plain:     NewPlainEngine(opts),
		Challenge: NewChallengeEngine(opts),
		Browser:   NewBrowserEngine(opts),
	})

	if opts.RateLimit > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateLimit)
	}

	return p
}

// newPolicy is the shared constructor; tests inject fake engines through it.
// It leaves the rate limiter unset (unlimited), since unit tests exercise
// escalation logic against an in-memory fakeEngine and have no target to be
// polite to.
func newPolicy(mode Mode, logger *zerolog.Logger, engines map[Kind]Engine) *Policy {
	p := &Policy{
		mode:              mode,
		engines:           engines,
		logger:            logger,
		notifiedFallbacks: make(map[Kind]bool),
	}

	switch mode {
	case ModeChallenge:
		p.current = Challenge
	case ModeBrowser:
		p.current = Browser
	default:
		p.current = Plain
	}

	return p
}

// engineFor returns the Engine for a Kind.
func (p *Policy) engineFor(kind Kind) Engine {
	return p.engines[kind]
}

// Close releases all engines' resources.
func (p *Policy) Close() {
	for _, e := range p.engines {
		e.Close()
	}
}

// Fetch executes the adaptive policy for a single URL, first waiting on the
// aggregate rate limiter so no engine swap can bypass it.
func (p *Policy) Fetch(ctx context.Context, url string) Result {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return Result{}
		}
	}

	if p.mode != ModeAuto {
		return p.fetchWithFallback(ctx, p.fixedKind(), url)
	}
	return p.fetchAuto(ctx, url)
}

// fixedKind resolves the single engine used for every request in a non-auto mode.
func (p *Policy) fixedKind() Kind {
	switch p.mode {
	case ModeChallenge:
		return Challenge
	case ModeBrowser:
		return Browser
	default:
		return Plain
	}
}

// fetchWithFallback fetches with the requested engine, falling back to
// Plain (with a one-time log notice) if that engine is unavailable.
func (p *Policy) fetchWithFallback(ctx context.Context, kind Kind, url string) Result {
	engine := p.engineFor(kind)
	if engine.Available() {
		return engine.Fetch(ctx, url)
	}

	p.mu.Lock()
	alreadyNotified := p.notifiedFallbacks[kind]
	p.notifiedFallbacks[kind] = true
	p.mu.Unlock()

	if !alreadyNotified && p.logger != nil {
		cerr := crawlerrors.Wrap(crawlerrors.ErrEngineUnavailable, errors.New(kind.String()+" engine not available"))
		p.logger.Warn().Err(cerr).Str("engine", kind.String()).Msg("engine unavailable, falling back to plain")
	}

	return p.engineFor(Plain).Fetch(ctx, url)
}

// fetchAuto implements the escalation ladder: plain -> challenge -> browser,
// each tried once, sticky across the rest of the crawl.
func (p *Policy) fetchAuto(ctx context.Context, url string) Result {
	p.mu.Lock()
	startKind := p.current
	p.mu.Unlock()

	result := p.engineFor(startKind).Fetch(ctx, url)

	// Once escalated, the engine choice is sticky: a call that starts on
	// Challenge or Browser returns whatever that engine produced, with no
	// re-testing. The ladder below only runs from a Plain start.
	if startKind != Plain {
		return result
	}

	if !IsWAFLike(result) {
		return result
	}

	if p.engineFor(Challenge).Available() {
		p.escalate(Challenge, url)
		result = p.engineFor(Challenge).Fetch(ctx, url)

		// A transport failure on the challenge engine must not
		// short-circuit before browser is tried.
		if !result.Absent() && !IsWAFLike(result) {
			return result
		}
	}

	if p.engineFor(Browser).Available() {
		p.escalate(Browser, url)
		result = p.engineFor(Browser).Fetch(ctx, url)
	}

	return result
}

// escalate switches the sticky current engine under p.mu and logs the switch.
func (p *Policy) escalate(to Kind, triggerURL string) {
	p.mu.Lock()
	if p.current == to {
		p.mu.Unlock()
		return
	}
	p.current = to
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.Info().Str("engine", to.String()).Str("trigger_url", triggerURL).
			Msg("escalating fetch engine after WAF-like response")
	}
}

// CurrentEngine reports the sticky engine currently in effect (auto mode only).
func (p *Policy) CurrentEngine() Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}
