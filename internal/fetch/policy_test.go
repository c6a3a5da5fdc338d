package fetch

import (
	"context"
	"testing"
)

// fakeEngine is a scripted Engine used to exercise Policy's escalation logic
// without a real network or browser.
type fakeEngine struct {
	kind      Kind
	available bool
	results   []Result
	calls     int
}

func (f *fakeEngine) Kind() Kind { return f.kind }

func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Close() {}

func (f *fakeEngine) Fetch(ctx context.Context, url string) Result {
	i := f.calls
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	f.calls++
	return f.results[i]
}

func TestPolicyFixedModeUsesNamedEngine(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 200, Body: "ok"}}}
	browser := &fakeEngine{kind: Browser, available: true, results: []Result{{Status: 200, Body: "rendered"}}}

	p := newPolicy(ModeBrowser, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: &fakeEngine{kind: Challenge, available: true, results: []Result{{Status: 200}}},
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "rendered" {
		t.Fatalf("expected fixed browser mode to use the browser engine, got body %q", got.Body)
	}
	if plain.calls != 0 {
		t.Error("expected plain engine to never be called in fixed browser mode")
	}
}

func TestPolicyFixedModeFallsBackWhenUnavailable(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 200, Body: "fallback"}}}
	browser := &fakeEngine{kind: Browser, available: false}

	p := newPolicy(ModeBrowser, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: &fakeEngine{kind: Challenge, available: true},
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "fallback" {
		t.Fatalf("expected fallback to plain when browser unavailable, got body %q", got.Body)
	}
}

func TestPolicyAutoStaysOnPlainWhenClean(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 200, Body: "clean"}}}
	challenge := &fakeEngine{kind: Challenge, available: true}
	browser := &fakeEngine{kind: Browser, available: true}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "clean" {
		t.Fatalf("unexpected body %q", got.Body)
	}
	if challenge.calls != 0 || browser.calls != 0 {
		t.Error("expected no escalation for a clean plain response")
	}
	if p.CurrentEngine() != Plain {
		t.Errorf("expected sticky engine to stay Plain, got %v", p.CurrentEngine())
	}
}

func TestPolicyAutoEscalatesThroughChallengeToBrowser(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 403, Body: "blocked"}}}
	challenge := &fakeEngine{kind: Challenge, available: true, results: []Result{{Status: 403, Body: "still blocked"}}}
	browser := &fakeEngine{kind: Browser, available: true, results: []Result{{Status: 200, Body: "rendered"}}}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "rendered" {
		t.Fatalf("expected escalation to browser, got body %q", got.Body)
	}
	if challenge.calls != 1 || browser.calls != 1 {
		t.Errorf("expected one call each to challenge and browser, got challenge=%d browser=%d", challenge.calls, browser.calls)
	}
	if p.CurrentEngine() != Browser {
		t.Errorf("expected sticky engine to become Browser, got %v", p.CurrentEngine())
	}
}

func TestPolicyAutoStaysEscalatedOnSubsequentCalls(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 403, Body: "blocked"}}}
	challenge := &fakeEngine{kind: Challenge, available: true, results: []Result{{Status: 200, Body: "cleared"}}}
	browser := &fakeEngine{kind: Browser, available: true}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	first := p.Fetch(context.Background(), "http://example.com/a")
	if first.Body != "cleared" {
		t.Fatalf("expected challenge engine to clear the block, got %q", first.Body)
	}
	if p.CurrentEngine() != Challenge {
		t.Fatalf("expected sticky engine to become Challenge, got %v", p.CurrentEngine())
	}

	second := p.Fetch(context.Background(), "http://example.com/b")
	if plain.calls != 1 {
		t.Errorf("expected plain to not be retried once escalated, got %d calls", plain.calls)
	}
	if challenge.calls != 2 {
		t.Errorf("expected second fetch to go straight to challenge, got %d calls", challenge.calls)
	}
	_ = second
}

func TestPolicyAutoDoesNotReTestOnceOnChallenge(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 403, Body: "blocked"}}}
	challenge := &fakeEngine{kind: Challenge, available: true, results: []Result{
		{Status: 200, Body: "cleared"},
		{Status: 403, Body: "blocked again"},
	}}
	browser := &fakeEngine{kind: Browser, available: true, results: []Result{{Status: 200, Body: "rendered"}}}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	first := p.Fetch(context.Background(), "http://example.com/a")
	if first.Body != "cleared" {
		t.Fatalf("expected challenge engine to clear the block, got %q", first.Body)
	}
	if p.CurrentEngine() != Challenge {
		t.Fatalf("expected sticky engine to become Challenge, got %v", p.CurrentEngine())
	}

	second := p.Fetch(context.Background(), "http://example.com/b")
	if second.Body != "blocked again" {
		t.Fatalf("expected the sticky challenge result to be returned as-is, got %q", second.Body)
	}
	if browser.calls != 0 {
		t.Errorf("expected no browser attempt for a WAF-like response on the sticky engine, got %d calls", browser.calls)
	}
	if p.CurrentEngine() != Challenge {
		t.Errorf("expected sticky engine to stay Challenge, got %v", p.CurrentEngine())
	}
}

func TestPolicyAutoEscalatesToBrowserOnChallengeTransportFailure(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 403, Body: "blocked"}}}
	challenge := &fakeEngine{kind: Challenge, available: true, results: []Result{{}}} // Absent: transport failure
	browser := &fakeEngine{kind: Browser, available: true, results: []Result{{Status: 200, Body: "rendered"}}}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "rendered" {
		t.Fatalf("expected a failed challenge attempt to still escalate to browser, got body %q", got.Body)
	}
	if challenge.calls != 1 || browser.calls != 1 {
		t.Errorf("expected one call each to challenge and browser, got challenge=%d browser=%d", challenge.calls, browser.calls)
	}
	if p.CurrentEngine() != Browser {
		t.Errorf("expected sticky engine to become Browser, got %v", p.CurrentEngine())
	}
}

func TestPolicyAutoSkipsUnavailableChallenge(t *testing.T) {
	plain := &fakeEngine{kind: Plain, available: true, results: []Result{{Status: 403, Body: "blocked"}}}
	challenge := &fakeEngine{kind: Challenge, available: false}
	browser := &fakeEngine{kind: Browser, available: true, results: []Result{{Status: 200, Body: "rendered"}}}

	p := newPolicy(ModeAuto, nil, map[Kind]Engine{
		Plain:     plain,
		Challenge: challenge,
		Browser:   browser,
	})

	got := p.Fetch(context.Background(), "http://example.com/")
	if got.Body != "rendered" {
		t.Fatalf("expected escalation straight to browser when challenge unavailable, got %q", got.Body)
	}
	if p.CurrentEngine() != Browser {
		t.Errorf("expected sticky engine Browser, got %v", p.CurrentEngine())
	}
}
