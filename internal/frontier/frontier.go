// Package frontier manages crawl state and ordering: a bounded FIFO queue
// of URLs plus the set of URLs that have actually been dequeued for
// fetching. It knows nothing about fetching, extraction, or storage — it is
// a data structure + admission policy module, not a pipeline executor.
package frontier

import (
	"net/url"
	"sync"

	"github.com/rohmanhakim/searchcrawl/internal/config"
	"github.com/rohmanhakim/searchcrawl/pkg/urlutil"
)

// Frontier is the single shared queue of URLs waiting to be crawled. It
// enforces two independent admission rules against two distinct counters:
//
//   - Enqueue bounds how many URLs the queue may hold at once: available =
//     maxLimit - queue.Size(). A URL sitting in the queue, not yet fetched,
//     counts toward this limit.
//   - Dequeue populates VisitedSet, the set of URLs actually pulled off the
//     queue for fetching. Once VisitedSet reaches maxLimit, no further URL
//     is ever dequeued — this is what caps the crawl, not queue occupancy.
//
// Conflating the two (capping the crawl on enqueue rather than dequeue)
// makes the crawler stop short of maxLimit fetches whenever more than one
// qualifying link is discovered per page.
type Frontier struct {
	mu      sync.Mutex
	queue   FIFOQueue[url.URL]
	queued  Set[string] // enqueue-time dedup only: URLs queued or already visited
	visited Set[string] // VisitedSet: URLs dequeued for fetching

	maxLimit int
}

// NewFrontier builds an empty Frontier bounded by cfg's MaxLimit.
func NewFrontier(cfg config.Config) *Frontier {
	return &Frontier{
		queue:    FIFOQueue[url.URL]{},
		queued:   NewSet[string](),
		visited:  NewSet[string](),
		maxLimit: cfg.MaxLimit(),
	}
}

// Enqueue admits u into the frontier queue. It reports false without
// modifying state if the queue is already at maxLimit capacity, u has
// already been fetched, or u is already sitting in the queue.
//
// This is the enqueue-side admission policy (available = maxLimit -
// queue.Size()) and is independent of VisitedSet, which only grows on
// Dequeue/DequeueBatch. The queued-set check is an enqueue-time dedup
// optimization, not the crawl's correctness floor — VisitedSet is.
func (f *Frontier) Enqueue(u url.URL) bool {
	key := urlutil.Canonicalize(u).String()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.maxLimit > 0 && f.queue.Size() >= f.maxLimit {
		return false
	}
	if f.visited.Contains(key) {
		return false
	}
	if f.queued.Contains(key) {
		return false
	}
	f.queued.Add(key)
	f.queue.Enqueue(u)
	return true
}

// Dequeue removes the next URL in FIFO order that has not already been
// fetched, adding it to VisitedSet. ok is false if the frontier is empty or
// VisitedSet has already reached maxLimit.
func (f *Frontier) Dequeue() (url.URL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dequeueLocked()
}

// dequeueLocked implements the crawl's drain step: pop the next queued URL,
// skip it if it was somehow already fetched, and otherwise add it to
// VisitedSet. It refuses to dequeue at all once VisitedSet has reached
// maxLimit — that is the crawl's actual termination condition.
func (f *Frontier) dequeueLocked() (url.URL, bool) {
	for {
		if f.maxLimit > 0 && f.visited.Size() >= f.maxLimit {
			return url.URL{}, false
		}
		u, ok := f.queue.Dequeue()
		if !ok {
			return url.URL{}, false
		}
		key := urlutil.Canonicalize(u).String()
		if f.visited.Contains(key) {
			continue
		}
		f.visited.Add(key)
		return u, true
	}
}

// DequeueBatch drains up to n URLs from the frontier in FIFO order,
// populating VisitedSet as it goes. It returns fewer than n (possibly zero)
// if the frontier empties out, or once VisitedSet reaches maxLimit — a
// dequeued URL that would push VisitedSet past maxLimit is simply never
// added to the batch, capping the crawl at exactly maxLimit fetches.
func (f *Frontier) DequeueBatch(n int) []url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()

	batch := make([]url.URL, 0, n)
	for i := 0; i < n; i++ {
		u, ok := f.dequeueLocked()
		if !ok {
			break
		}
		batch = append(batch, u)
	}
	return batch
}

// Size returns the number of URLs currently queued (not yet dequeued).
func (f *Frontier) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Size()
}

// VisitedCount returns the number of distinct URLs dequeued for fetching so
// far. It never decreases.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}

// AtCapacity reports whether VisitedSet has reached maxLimit, i.e. whether
// the crawl has already fetched as many distinct URLs as MAX_LIMIT allows.
// This is what the crawler's outer loop checks to terminate — frontier
// queue occupancy is a separate, unrelated bound enforced at Enqueue.
func (f *Frontier) AtCapacity() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxLimit > 0 && f.visited.Size() >= f.maxLimit
}
