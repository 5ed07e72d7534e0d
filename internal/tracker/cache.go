package tracker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ssibachir/offer-crm/pkg/job"
)

// Handle identifies one cached table. It is minted per Tracker and carries
// no reference to the remote client.
type Handle uint64

var lastHandle atomic.Uint64

// NewHandle returns a process-unique handle.
func NewHandle() Handle { return Handle(lastHandle.Add(1)) }

type snapshot struct {
	records   []job.Record
	fetchedAt time.Time
}

// SnapshotCache holds table snapshots for a fixed TTL.
type SnapshotCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[Handle]snapshot
}

// NewSnapshotCache returns a cache whose entries expire after ttl. A zero or
// negative ttl disables caching.
func NewSnapshotCache(ttl time.Duration, now func() time.Time) *SnapshotCache {
	if now == nil {
		now = time.Now
	}
	return &SnapshotCache{ttl: ttl, now: now, entries: make(map[Handle]snapshot)}
}

// Get returns a copy of the snapshot for h if it is still fresh.
func (c *SnapshotCache) Get(h Handle) ([]job.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[h]
	if !ok {
		return nil, false
	}
	if c.ttl <= 0 || c.now().Sub(s.fetchedAt) >= c.ttl {
		delete(c.entries, h)
		return nil, false
	}
	return job.CloneAll(s.records), true
}

// Put stores a copy of records under h.
func (c *SnapshotCache) Put(h Handle, records []job.Record) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[h] = snapshot{records: job.CloneAll(records), fetchedAt: c.now()}
}

// Invalidate drops the snapshot for h.
func (c *SnapshotCache) Invalidate(h Handle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, h)
}

// Age reports how old the snapshot for h is.
func (c *SnapshotCache) Age(h Handle) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[h]
	if !ok {
		return 0, false
	}
	return c.now().Sub(s.fetchedAt), true
}
