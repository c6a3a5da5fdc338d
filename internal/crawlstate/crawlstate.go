// Package crawlstate holds the crawl's shared mutable state: the
// visited/queued dedup sets and the bounded-depth work queue. Every method
// here is safe for concurrent use by multiple workers.
package crawlstate

import "sync"

// Kind classifies a work item by which extractor should run on its body.
type Kind int

const (
	// KindHTML marks a work item whose body should be parsed as HTML.
	KindHTML Kind = iota
	// KindJS marks a work item whose body should be scanned as JavaScript.
	KindJS
)

func (k Kind) String() string {
	if k == KindJS {
		return "js"
	}
	return "html"
}

// WorkItem is a single unit of crawl work: a canonical URL, the depth it
// was discovered at, and the kind of extractor it requires.
type WorkItem struct {
	URL   string
	Depth int
	Kind  Kind
}

// VisitedSets tracks the crawl's four dedup sets: visited and queued,
// partitioned by kind. A URL appears in at most one of {queued, visited}
// for its kind at any observation point. All check-then-insert pairs run
// under one mutex.
type VisitedSets struct {
	mu          sync.Mutex
	visited     [2]map[string]bool
	queued      [2]map[string]bool
	visitedSize int
}

// NewVisitedSets constructs an empty set of visited/queued trackers.
func NewVisitedSets() *VisitedSets {
	return &VisitedSets{
		visited: [2]map[string]bool{make(map[string]bool), make(map[string]bool)},
		queued:  [2]map[string]bool{make(map[string]bool), make(map[string]bool)},
	}
}

// TryMarkQueued atomically checks whether url is already queued or visited
// under kind, and if not, marks it queued. Returns true if the caller should
// enqueue the item.
func (v *VisitedSets) TryMarkQueued(url string, kind Kind) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.queued[kind][url] || v.visited[kind][url] {
		return false
	}
	v.queued[kind][url] = true
	return true
}

// TryMarkVisited atomically checks whether url has already been visited
// under kind, and if not, marks it visited. Returns true if the caller
// (a worker) should proceed to fetch it. Once true is returned for a URL,
// no subsequent call for the same (url, kind) pair will return true again
// during this crawl.
//
// Visiting a URL also clears its queued mark, keeping the invariant that a
// URL appears in at most one of {queued, visited} for its kind.
func (v *VisitedSets) TryMarkVisited(url string, kind Kind) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.visited[kind][url] {
		return false
	}
	delete(v.queued[kind], url)
	v.visited[kind][url] = true
	v.visitedSize++
	return true
}

// VisitedCount returns the total number of URLs marked visited across both kinds.
func (v *VisitedSets) VisitedCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visitedSize
}
