package bilist

// armSweeper schedules the next sweep tick if one isn't already armed
// and a scheduler was supplied. The caller must hold c.mu.
func (c *Container) armSweeper() {
	if c.timerArmed || c.scheduler == nil {
		return
	}
	c.timerArmed = true
	c.cancelSweep = c.scheduler.Schedule(SweepPeriodMS, c.sweepTick)
}

// sweepTick is the background sweeper's callback. It inspects batches
// of BatchSize entries starting at the sweep cursor, evicting expired
// ones, and keeps working while a batch prunes more than
// PruneThreshold entries — this amortizes a burst of simultaneous
// expirations instead of spreading it over many 1-second ticks.
//
// Unlike the reference implementation, which rearms itself
// unconditionally, this sweeper stops rearming once the container is
// empty; Set rearms it on the next mutation.
func (c *Container) sweepTick() {
	c.mu.Lock()

	if c.sweepCursor == nil {
		c.sweepCursor = c.head
	}
	for {
		pruned := 0
		for i := 0; i < BatchSize; i++ {
			if c.sweepCursor == nil {
				c.sweepCursor = c.head
				break
			}
			cur := c.sweepCursor
			next := cur.next
			if cur.expired(c.clock.NowMS()) {
				c.evict(cur)
				pruned++
			}
			c.sweepCursor = next
		}
		if pruned <= PruneThreshold {
			break
		}
	}

	empty := c.count == 0
	c.timerArmed = !empty
	c.mu.Unlock()

	if !empty {
		cancel := c.scheduler.Schedule(SweepPeriodMS, c.sweepTick)
		c.mu.Lock()
		c.cancelSweep = cancel
		c.mu.Unlock()
	}
}
