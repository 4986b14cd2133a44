package bilist

import "testing"

func TestSweeperArmsOnFirstSetAndPrunes(t *testing.T) {
	c, clock, sched := newTestContainer()

	c.Set("a", "b", "v", 1)
	if !c.timerArmed {
		t.Fatal("expected sweeper to arm on first Set")
	}

	clock.Advance(1100)
	sched.fire()

	if n := c.Count(); n != 0 {
		t.Fatalf("expected sweep tick to prune expired entry, got count %d", n)
	}
}

func TestSweeperDisarmsWhenEmpty(t *testing.T) {
	c, clock, sched := newTestContainer()

	c.Set("a", "b", "v", 1)
	clock.Advance(1100)
	sched.fire()

	if c.timerArmed {
		t.Fatal("expected sweeper to disarm once container became empty")
	}

	c.Set("c", "d", "v2", 0)
	if !c.timerArmed {
		t.Fatal("expected Set to rearm the sweeper")
	}
}

func TestSweeperBatchesAcrossManyExpired(t *testing.T) {
	c, clock, sched := newTestContainer()

	const n = BatchSize*2 + PruneThreshold + 3
	for i := 0; i < n; i++ {
		c.Set(keyFor("k", i), "s", "v", 1)
	}

	clock.Advance(1100)
	sched.fire()

	if got := c.Count(); got != 0 {
		t.Fatalf("expected all %d entries pruned across batches within one tick, got %d remaining", n, got)
	}
}

func TestSweeperLeavesLiveEntriesAlone(t *testing.T) {
	c, clock, sched := newTestContainer()

	c.Set("a", "b", "expiring", 1)
	c.Set("c", "d", "forever", 0)

	clock.Advance(1100)
	sched.fire()

	if n := c.Count(); n != 1 {
		t.Fatalf("expected exactly the non-expiring entry to survive, count=%d", n)
	}
	if v, ok := c.Get("c", "d"); !ok || v != "forever" {
		t.Fatalf("expected forever entry intact, got %q ok=%v", v, ok)
	}
}

func TestCloseCancelsSweeper(t *testing.T) {
	c, _, sched := newTestContainer()

	c.Set("a", "b", "v", 1)
	c.Close()

	if !sched.cancelled {
		t.Fatal("expected Close to cancel the armed timer")
	}
}
