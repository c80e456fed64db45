// ABOUTME: Deterministic fake peripherals for driver tests
// ABOUTME: Models a level-sensitive or edge-triggered completion interrupt
package sound

import (
	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/hal"
)

// fakeHW implements every hal interface on one goroutine. Interrupts are
// delivered synchronously from the call that asserts them, which is how the
// completion context preempts the producer.
type fakeHW struct {
	cpuHz uint32
	level bool

	timer      fakeTimer
	converter  fakeConverter
	engineInit bool

	handler     hal.CompletionHandler
	lineEnabled bool
	cleared     int

	completionEnabled bool
	edgePending       bool
	inHandler         bool

	chunk    []audio.Sample
	launches []int
	aborts   int
	output   []audio.Sample
}

func newFakeHW(level bool) *fakeHW {
	return &fakeHW{cpuHz: 84000000, level: level}
}

func (f *fakeHW) hardware() Hardware {
	return Hardware{Clock: f, Timer: &f.timer, Converter: &f.converter, Engine: f, IRQ: f}
}

type fakeTimer struct {
	initialized bool
	started     bool
	a, c        uint32
	sets        int
}

func (t *fakeTimer) Init()  { t.initialized = true }
func (t *fakeTimer) Start() { t.started = true }

func (t *fakeTimer) SetCompare(a, c uint32) {
	t.a, t.c = a, c
	t.sets++
}

type fakeConverter struct {
	initialized bool
}

func (c *fakeConverter) Init() { c.initialized = true }

func (f *fakeHW) CPUHz() uint32 { return f.cpuHz }

func (f *fakeHW) Init() { f.engineInit = true }

func (f *fakeHW) Launch(chunk []audio.Sample) {
	f.chunk = chunk
	f.edgePending = false
	f.launches = append(f.launches, len(chunk))
}

func (f *fakeHW) Abort() {
	f.chunk = nil
	f.edgePending = false
	f.aborts++
}

func (f *fakeHW) EnableCompletion() {
	f.completionEnabled = true
	f.service()
}

func (f *fakeHW) DisableCompletion() { f.completionEnabled = false }

func (f *fakeHW) LevelTriggered() bool { return f.level }

func (f *fakeHW) Attach(h hal.CompletionHandler) { f.handler = h }
func (f *fakeHW) ClearPending()                  { f.cleared++ }
func (f *fakeHW) Enable()                        { f.lineEnabled = true; f.service() }
func (f *fakeHW) Disable()                       { f.lineEnabled = false }

func (f *fakeHW) asserted() bool {
	if f.level {
		return len(f.chunk) == 0
	}
	return f.edgePending
}

// service runs the handler while the signal is asserted and unmasked. A
// request made from inside the handler is picked up by the running loop.
func (f *fakeHW) service() {
	if f.inHandler || f.handler == nil {
		return
	}
	for f.lineEnabled && f.completionEnabled && f.asserted() {
		f.edgePending = false
		f.inHandler = true
		f.handler(f)
		f.inHandler = false
	}
}

// finish completes the chunk in flight as the hardware would after the last
// trigger; it reports whether a chunk was in flight.
func (f *fakeHW) finish() bool {
	if len(f.chunk) == 0 {
		return false
	}
	f.output = append(f.output, f.chunk...)
	f.chunk = nil
	if !f.level {
		f.edgePending = true
	}
	f.service()
	return true
}

// drainAll completes chunks until the engine has nothing in flight
func (f *fakeHW) drainAll() {
	for f.finish() {
	}
}
