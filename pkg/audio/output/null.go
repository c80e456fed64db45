// ABOUTME: Discarding output
// ABOUTME: Counts samples for headless runs and tests
package output

import "sync/atomic"

// Null discards everything written to it
type Null struct {
	open    atomic.Bool
	written atomic.Uint64
}

// NewNull creates a new null output
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Open(sampleRate, channels int) error {
	n.open.Store(true)
	return nil
}

func (n *Null) Write(samples []int32) error {
	if !n.open.Load() {
		return ErrNotOpen
	}
	n.written.Add(uint64(len(samples)))
	return nil
}

func (n *Null) Close() error {
	n.open.Store(false)
	return nil
}

// Written returns the number of samples discarded so far
func (n *Null) Written() uint64 { return n.written.Load() }
