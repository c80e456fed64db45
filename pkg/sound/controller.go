// ABOUTME: Transfer controller state machine (Idle / Armed)
// ABOUTME: Completion handler advances the buffer and re-arms or disarms the engine
package sound

import "github.com/Sendspin/sendspin-dac/pkg/hal"

// kick starts a pipeline that was Idle. The producer calls it right after a
// successful write, with the completion signal masked.
func (d *Driver) kick() {
	d.active.Store(true)

	if !d.hw.Engine.LevelTriggered() {
		// No synthetic completion will arrive: start the first chunk here
		d.arm(d.hw.Engine)
	}

	// On level-sensitive engines the remaining count is zero, so this raises
	// the completion signal at once and onComplete launches the first chunk
	d.hw.Engine.EnableCompletion()
}

// onComplete runs in the completion context each time the engine finishes
// the chunk it was given.
func (d *Driver) onComplete(engine hal.TransferEngine) {
	d.stats.completions.Add(1)

	d.buf.AdvanceRead(d.pending)

	if d.arm(engine) {
		return
	}

	// Out of data. The signal must be disabled here: left enabled, the zero
	// remaining count would fire again with a stale chunk size.
	d.pending = 0
	d.active.Store(false)
	engine.DisableCompletion()
	d.stats.drained.Add(1)
}

// arm launches the next contiguous chunk, if any. A chunk never crosses the
// physical end of the buffer.
func (d *Driver) arm(engine hal.TransferEngine) bool {
	run := d.buf.ContiguousRun()
	if run == 0 {
		return false
	}
	if run > d.config.MaxChunk {
		run = d.config.MaxChunk
	}

	d.pending = run
	engine.Launch(d.buf.Span(run))
	d.stats.chunks.Add(1)
	return true
}
