// ABOUTME: Driver counters and status snapshot
// ABOUTME: Counters are atomics so any goroutine may read them
package sound

import "sync/atomic"

// Stats holds driver counters
type Stats struct {
	Accepted    uint64 // samples accepted by Feed
	Rejected    uint64 // Feed calls refused for lack of room
	Chunks      uint64 // transfers launched
	Completions uint64 // completion handler invocations
	Drained     uint64 // transitions to idle because the buffer ran dry
}

type counters struct {
	accepted    atomic.Uint64
	rejected    atomic.Uint64
	chunks      atomic.Uint64
	completions atomic.Uint64
	drained     atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Accepted:    c.accepted.Load(),
		Rejected:    c.rejected.Load(),
		Chunks:      c.chunks.Load(),
		Completions: c.completions.Load(),
		Drained:     c.drained.Load(),
	}
}

// Status is a point-in-time view of the driver
type Status struct {
	Frequency uint32
	Capacity  int
	Free      int
	Active    bool
	Stats     Stats
}
