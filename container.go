// Package bilist implements a bi-indexed, TTL-expiring associative
// container keyed by pairs of strings (k1, k2), with range retrieval by
// either component. Two composite-key skip list indices share one
// doubly-linked entry ring, lazily evicted on access and proactively
// evicted by a background sweeper armed through the host.Scheduler
// interface.
package bilist

import (
	"fmt"
	"sync"

	"github.com/mattkeenan/bilist/host"
	"github.com/mattkeenan/bilist/internal/prand"
	"github.com/mattkeenan/bilist/internal/skiplist"
)

// Tuning constants for the background sweeper and key synthesis.
const (
	BatchSize            = 20
	PruneThreshold       = 5
	SweepPeriodMS        = 1000
	MaxCounterIncrement  = 0x4C
	ckeyAlphabet         = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_-"
	indexSeedPrimarySalt = 0x9E3779B97F4A7C15
	indexSeedSecondSalt  = 0xC2B2AE3D27D4EB4F
)

// Pair is one result of a prefix scan: the opposite key component and
// the stored value.
type Pair struct {
	Key   string
	Value string
}

// AllEntry is one result of a full container walk.
type AllEntry struct {
	K1, K2, Value string
	// TTLRemaining is -1 for entries that never expire, otherwise the
	// number of whole seconds remaining, rounded up (ceil), so that an
	// entry one millisecond from expiring still reports at least 1
	// rather than 0.
	TTLRemaining int64
}

// Container is a single bi-indexed expiring map. The zero value is not
// usable; construct with New or Load.
type Container struct {
	mu sync.Mutex

	primary   *skiplist.Index[*Entry]
	secondary *skiplist.Index[*Entry]

	head        *Entry
	sweepCursor *Entry
	count       int

	counter uint32
	stride  uint32
	prng    *prand.State

	clock       host.Clock
	scheduler   host.Scheduler
	timerArmed  bool
	cancelSweep func()
}

// New creates an empty container. clock supplies wall-clock time for
// TTL computation; scheduler arms the background sweeper. Both must be
// non-nil for a container that will ever hold entries with a TTL;
// a nil scheduler is accepted for tests that only exercise foreground
// operations and never need the sweeper to fire.
func New(clock host.Clock, scheduler host.Scheduler) *Container {
	seed := uint64(clock.NowMS())

	c := &Container{
		primary:   skiplist.New[*Entry](seed ^ indexSeedPrimarySalt),
		secondary: skiplist.New[*Entry](seed ^ indexSeedSecondSalt),
		prng:      prand.New(seed),
		clock:     clock,
		scheduler: scheduler,
	}
	c.counter = c.prng.Next32()
	c.stride = c.prng.Next32()%MaxCounterIncrement + 1
	return c
}

// Close cancels any armed sweeper timer. Safe to call on a container
// that never armed one.
func (c *Container) Close() {
	c.mu.Lock()
	cancel := c.cancelSweep
	c.timerArmed = false
	c.cancelSweep = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Set creates or replaces the entry at (k1, k2). ttlSeconds == 0 means
// the entry never expires; otherwise it expires ttlSeconds from now.
func (c *Container) Set(k1, k2, value string, ttlSeconds int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	replacing := false
	if old := c.primary.Find(k1, k2); old != nil {
		oldEntry := old.Data()
		c.unlinkRing(oldEntry)
		c.secondary.Delete(k2, k1)
		replacing = true
	}

	var expireAt int64
	if ttlSeconds != 0 {
		expireAt = c.clock.NowMS() + ttlSeconds*1000
	}

	entry := &Entry{
		K1:       []byte(k1),
		K2:       []byte(k2),
		Value:    []byte(value),
		ExpireAt: expireAt,
	}

	c.linkHead(entry)
	c.primary.Insert(k1, k2, entry)
	c.secondary.Insert(k2, k1, entry)

	if !replacing {
		c.count++
	}
	c.armSweeper()
}

// Get returns the value stored at (k1, k2). ok is false if the pair is
// absent or has expired; an expired entry is evicted as a side effect.
func (c *Container) Get(k1, k2 string) (value string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.primary.Find(k1, k2)
	if node == nil {
		return "", false
	}

	entry := node.Data()
	if entry.expired(c.clock.NowMS()) {
		c.evict(entry)
		return "", false
	}
	return string(entry.Value), true
}

// ScanByPrimary returns every live (k2, value) pair whose primary key
// equals k1, in ascending k2 order. Entries found expired during the
// walk are evicted and excluded from the result.
func (c *Container) ScanByPrimary(k1 string) []Pair {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.NowMS()
	var out []Pair
	for node := c.primary.FindFirst(k1); node != nil && node.Primary() == k1; {
		next := node.Next()
		entry := node.Data()
		if entry.expired(now) {
			c.evict(entry)
		} else {
			out = append(out, Pair{Key: string(entry.K2), Value: string(entry.Value)})
		}
		node = next
	}
	return out
}

// ScanBySecondary returns every live (k1, value) pair whose secondary
// key equals k2, in ascending k1 order. Entries found expired during
// the walk are evicted and excluded from the result.
func (c *Container) ScanBySecondary(k2 string) []Pair {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.NowMS()
	var out []Pair
	for node := c.secondary.FindFirst(k2); node != nil && node.Primary() == k2; {
		next := node.Next()
		entry := node.Data()
		if entry.expired(now) {
			c.evict(entry)
		} else {
			out = append(out, Pair{Key: string(entry.K1), Value: string(entry.Value)})
		}
		node = next
	}
	return out
}

// Del removes the entry at (k1, k2), reporting whether one was present.
func (c *Container) Del(k1, k2 string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := c.primary.Find(k1, k2)
	if node == nil {
		return false
	}
	c.evict(node.Data())
	return true
}

// Count returns the number of live entries.
func (c *Container) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// All walks the ring from the newest entry, evicting any expired entry
// it encounters, and returns the live survivors.
func (c *Container) All() []AllEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.NowMS()
	var out []AllEntry
	for e := c.head; e != nil; {
		next := e.next
		if e.expired(now) {
			c.evict(e)
		} else {
			out = append(out, AllEntry{
				K1:           string(e.K1),
				K2:           string(e.K2),
				Value:        string(e.Value),
				TTLRemaining: ttlRemainingSeconds(e.ExpireAt, now),
			})
		}
		e = next
	}
	return out
}

func ttlRemainingSeconds(expireAt, nowMS int64) int64 {
	if expireAt == 0 {
		return -1
	}
	remainMS := expireAt - nowMS
	if remainMS <= 0 {
		return 0
	}
	return (remainMS + 999) / 1000
}

// CKey synthesizes a fresh identifier: n characters drawn uniformly
// from the 64-character alphabet, followed by an 8-hex-digit counter.
// The counter then advances by a pseudo-random stride so repeated calls
// never collide within a container's lifetime.
func (c *Container) CKey(n int) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	buf := make([]byte, 0, n+8)
	for i := 0; i < n; i++ {
		buf = append(buf, ckeyAlphabet[c.prng.Next32()%uint32(len(ckeyAlphabet))])
	}
	buf = append(buf, fmt.Sprintf("%08x", c.counter)...)

	c.counter += uint32(c.prng.Next()%uint64(c.stride)) + 1
	return string(buf)
}

// evict removes entry from both indices and the ring, and decrements
// count. The caller must hold c.mu.
func (c *Container) evict(e *Entry) {
	c.primary.Delete(string(e.K1), string(e.K2))
	c.secondary.Delete(string(e.K2), string(e.K1))
	c.unlinkRing(e)
	c.count--
}

// linkHead inserts e at the head of the ring. The caller must hold c.mu.
func (c *Container) linkHead(e *Entry) {
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	e.prev = nil
}

// unlinkRing removes e from the ring, adjusting sweepCursor if it was
// pointing at e. The caller must hold c.mu.
func (c *Container) unlinkRing(e *Entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else if c.head == e {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}

	if c.sweepCursor == e {
		c.sweepCursor = e.next
		if c.sweepCursor == nil {
			c.sweepCursor = c.head
		}
	}

	e.prev, e.next = nil, nil
}
