package bilist

import (
	"github.com/mattkeenan/bilist/host"
	"github.com/mattkeenan/bilist/internal/prand"
	"github.com/mattkeenan/bilist/internal/skiplist"
)

// SnapshotTypeName and SnapshotVersion identify this module's on-disk
// format, mirroring the RedisModuleType name and encoding version a
// persistence framing layer would register this container under.
const (
	SnapshotTypeName = "bilist-jt"
	SnapshotVersion  = 0
)

// Save writes counter, stride, entry count, PRNG state, and then every
// live entry in ring order (newest first), to codec. It does not
// evict expired entries first; Load drops anything already expired at
// load time instead.
func (c *Container) Save(codec host.Codec) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := codec.WriteUint64(uint64(c.counter)); err != nil {
		return err
	}
	if err := codec.WriteUint64(uint64(c.stride)); err != nil {
		return err
	}
	if err := codec.WriteUint64(uint64(c.count)); err != nil {
		return err
	}
	if err := codec.WriteUint64(c.prng.Uint64()); err != nil {
		return err
	}

	for e := c.head; e != nil; e = e.next {
		if err := codec.WriteBytes(e.K1); err != nil {
			return err
		}
		if err := codec.WriteBytes(e.K2); err != nil {
			return err
		}
		if err := codec.WriteBytes(e.Value); err != nil {
			return err
		}
		if err := codec.WriteInt64(e.ExpireAt); err != nil {
			return err
		}
	}
	return nil
}

// Load rebuilds a container from a snapshot written by Save. Entries
// whose ExpireAt has already passed (relative to clock) are dropped.
// The sweeper is not armed by Load; it arms on the first Set, the same
// as a freshly constructed container. The rebuilt indices get fresh
// level-selection seeds derived from clock — the reference
// implementation never reseeded them deterministically either, so a
// reloaded container's skip list shape is intentionally not
// reproducible from the snapshot alone.
func Load(codec host.Codec, clock host.Clock, scheduler host.Scheduler) (*Container, error) {
	counter, err := codec.ReadUint64()
	if err != nil {
		return nil, err
	}
	stride, err := codec.ReadUint64()
	if err != nil {
		return nil, err
	}
	items, err := codec.ReadUint64()
	if err != nil {
		return nil, err
	}
	prngState, err := codec.ReadUint64()
	if err != nil {
		return nil, err
	}

	seed := uint64(clock.NowMS())
	c := &Container{
		primary:   skiplist.New[*Entry](seed ^ indexSeedPrimarySalt),
		secondary: skiplist.New[*Entry](seed ^ indexSeedSecondSalt),
		prng:      prand.New(prngState),
		clock:     clock,
		scheduler: scheduler,
		counter:   uint32(counter),
		stride:    uint32(stride),
	}

	now := clock.NowMS()
	var tail *Entry
	for i := uint64(0); i < items; i++ {
		k1, err := codec.ReadBytes()
		if err != nil {
			return nil, err
		}
		k2, err := codec.ReadBytes()
		if err != nil {
			return nil, err
		}
		value, err := codec.ReadBytes()
		if err != nil {
			return nil, err
		}
		expireAt, err := codec.ReadInt64()
		if err != nil {
			return nil, err
		}

		if expireAt != 0 && expireAt < now {
			continue
		}

		e := &Entry{K1: k1, K2: k2, Value: value, ExpireAt: expireAt}
		if tail == nil {
			c.head = e
		} else {
			tail.next = e
			e.prev = tail
		}
		tail = e

		// Both indices get the live entry pointer — the reference
		// implementation's loader inserted NULL into the primary
		// index here instead, a bug this implementation does not
		// replicate.
		c.primary.Insert(string(k1), string(k2), e)
		c.secondary.Insert(string(k2), string(k1), e)
		c.count++
	}

	return c, nil
}
