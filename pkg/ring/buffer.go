// ABOUTME: Circular buffer with separately published write cursor
// ABOUTME: Contiguous-run helpers hand physically contiguous spans to a consumer
package ring

import (
	"fmt"
	"sync/atomic"
)

// Buffer is a fixed-capacity ring of samples.
//
// The write cursor is owned by the producer and the read cursor by the
// consumer; free is written by both and is therefore only modified under the
// caller's exclusion. All three are atomics so the opposite context may read
// them at any time.
type Buffer[T any] struct {
	data  []T
	read  atomic.Uint32
	write atomic.Uint32
	free  atomic.Uint32
}

// New allocates an empty buffer holding capacity samples
func New[T any](capacity int) *Buffer[T] {
	if capacity <= 0 || uint64(capacity) > uint64(^uint32(0)) {
		panic(fmt.Sprintf("ring: invalid capacity %d", capacity))
	}

	b := &Buffer[T]{data: make([]T, capacity)}
	b.Reset()
	return b
}

// Cap returns the fixed capacity
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Free returns the number of samples that may currently be written
func (b *Buffer[T]) Free() int { return int(b.free.Load()) }

// Occupied returns the number of unread samples
func (b *Buffer[T]) Occupied() int { return len(b.data) - b.Free() }

// ReadCursor returns the index of the oldest unread sample
func (b *Buffer[T]) ReadCursor() int { return int(b.read.Load()) }

// WriteCursor returns the index the next write starts at
func (b *Buffer[T]) WriteCursor() int { return int(b.write.Load()) }

// Reset empties the buffer. Both contexts must be quiescent.
func (b *Buffer[T]) Reset() {
	b.read.Store(0)
	b.write.Store(0)
	b.free.Store(uint32(len(b.data)))
}

// Write copies samples into the buffer starting at the write cursor, wrapping
// at the end of the array, and returns the write cursor that results.
//
// The cursor is not published; call Commit with the returned value. Write
// performs no capacity check: the caller must have verified
// len(samples) <= Free().
func (b *Buffer[T]) Write(samples []T) int {
	w := b.WriteCursor()

	n := copy(b.data[w:], samples)
	if n < len(samples) {
		// Remainder goes to the start of the array
		copy(b.data, samples[n:])
	}

	return b.wrap(w + len(samples))
}

// Commit publishes a write: the write cursor moves to cursor and count
// samples of free capacity are consumed.
func (b *Buffer[T]) Commit(cursor, count int) {
	b.write.Store(uint32(cursor))
	b.free.Add(^uint32(count - 1))
}

// ContiguousRun returns the largest number of samples that can be consumed
// from the read cursor without crossing the write cursor or the physical end
// of the array.
func (b *Buffer[T]) ContiguousRun() int {
	if b.Occupied() == 0 {
		return 0
	}

	r, w := b.ReadCursor(), b.WriteCursor()
	if r < w {
		return w - r
	}
	// Data wraps (or the buffer is full): the run stops at the array end
	return len(b.data) - r
}

// Span returns n samples starting at the read cursor. n must not exceed
// ContiguousRun(). The slice aliases the buffer storage.
func (b *Buffer[T]) Span(n int) []T {
	r := b.ReadCursor()
	return b.data[r : r+n : r+n]
}

// AdvanceRead releases count consumed samples back to the producer
func (b *Buffer[T]) AdvanceRead(count int) {
	if count == 0 {
		return
	}
	b.read.Store(uint32(b.wrap(b.ReadCursor() + count)))
	b.free.Add(uint32(count))
}

// wrap folds an index that may have passed the end of the array
func (b *Buffer[T]) wrap(i int) int {
	if i >= len(b.data) {
		i -= len(b.data)
	}
	return i
}
