// ABOUTME: Single-producer circular sample buffer for DMA-fed outputs
// ABOUTME: Tracks read/write cursors and free capacity across two contexts
// Package ring implements the fixed-capacity circular buffer that sits
// between a producer loop and a transfer-completion handler.
//
// The buffer is shared by exactly two execution contexts:
//   - the producer, which calls Free, Write and Commit
//   - the completion handler, which calls ContiguousRun, Span and AdvanceRead
//
// The buffer itself does no locking. Write copies into free space only, so it
// may run concurrently with the consumer; Commit must be bracketed by the
// caller so that it never interleaves with AdvanceRead.
//
// Example:
//
//	buf := ring.New[uint16](4096)
//	if len(data) <= buf.Free() {
//	    cursor := buf.Write(data)
//	    // mask the consumer
//	    buf.Commit(cursor, len(data))
//	    // unmask the consumer
//	}
package ring
