// Package findings holds the crawl's six result collections, independent of
// both the extractor and worker packages so either can depend on it without
// an import cycle.
package findings

import "sync"

// Findings holds the crawl's six result collections. Each container is
// internally thread-safe under its own lock, so finding writes from one
// worker never contend with another worker's unrelated category.
type Findings struct {
	aliveMu sync.Mutex
	alive   map[string]int

	paramsMu sync.Mutex
	params   map[string]struct{}

	endpointsMu sync.Mutex
	endpoints   map[string]struct{}

	apiEndpointsMu sync.Mutex
	apiEndpoints   map[string]struct{}

	jsFilesMu sync.Mutex
	jsFiles   map[string]struct{}

	osintMu sync.Mutex
	osint   map[string]struct{}
}

// NewFindings constructs an empty Findings set.
func NewFindings() *Findings {
	return &Findings{
		alive:        make(map[string]int),
		params:       make(map[string]struct{}),
		endpoints:    make(map[string]struct{}),
		apiEndpoints: make(map[string]struct{}),
		jsFiles:      make(map[string]struct{}),
		osint:        make(map[string]struct{}),
	}
}

// RecordAlive sets alive[url] = status. Last write wins on duplicate insert.
func (f *Findings) RecordAlive(url string, status int) {
	f.aliveMu.Lock()
	defer f.aliveMu.Unlock()
	f.alive[url] = status
}

// AddParam adds url to the params set.
func (f *Findings) AddParam(url string) {
	f.paramsMu.Lock()
	defer f.paramsMu.Unlock()
	f.params[url] = struct{}{}
}

// AddEndpoint adds url to the endpoints set.
func (f *Findings) AddEndpoint(url string) {
	f.endpointsMu.Lock()
	defer f.endpointsMu.Unlock()
	f.endpoints[url] = struct{}{}
}

// AddAPIEndpoint adds url to the api_endpoints set. Callers are expected to
// have also called AddEndpoint, keeping api_endpoints ⊆ endpoints.
func (f *Findings) AddAPIEndpoint(url string) {
	f.apiEndpointsMu.Lock()
	defer f.apiEndpointsMu.Unlock()
	f.apiEndpoints[url] = struct{}{}
}

// AddJSFile adds url to the js_files set.
func (f *Findings) AddJSFile(url string) {
	f.jsFilesMu.Lock()
	defer f.jsFilesMu.Unlock()
	f.jsFiles[url] = struct{}{}
}

// AddOSINT adds url to the osint_strings set.
func (f *Findings) AddOSINT(url string) {
	if url == "" {
		return
	}
	f.osintMu.Lock()
	defer f.osintMu.Unlock()
	f.osint[url] = struct{}{}
}

// Snapshot is an immutable copy of the findings, taken at run completion and
// handed to the result sink.
type Snapshot struct {
	Alive        map[string]int
	Params       []string
	Endpoints    []string
	APIEndpoints []string
	JSFiles      []string
	OSINT        []string
}

// Freeze copies all findings out into a Snapshot. Called once, after the
// crawl's queue has drained.
func (f *Findings) Freeze() Snapshot {
	f.aliveMu.Lock()
	alive := make(map[string]int, len(f.alive))
	for k, v := range f.alive {
		alive[k] = v
	}
	f.aliveMu.Unlock()

	return Snapshot{
		Alive:        alive,
		Params:       keysOf(&f.paramsMu, f.params),
		Endpoints:    keysOf(&f.endpointsMu, f.endpoints),
		APIEndpoints: keysOf(&f.apiEndpointsMu, f.apiEndpoints),
		JSFiles:      keysOf(&f.jsFilesMu, f.jsFiles),
		OSINT:        keysOf(&f.osintMu, f.osint),
	}
}

func keysOf(mu *sync.Mutex, set map[string]struct{}) []string {
	mu.Lock()
	defer mu.Unlock()
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
