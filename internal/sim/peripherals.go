// ABOUTME: hal implementations backed by the simulated board registers
// ABOUTME: Producer-side views lock the CPU; the handler view runs under it
package sim

import (
	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/hal"
)

type clock struct{ b *Board }

func (c clock) CPUHz() uint32 { return c.b.config.CPUHz }

type timer struct{ b *Board }

func (t timer) Init() {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	// Waveform, up mode with trigger on RC compare
	t.b.waveform = true
	t.b.timerRunning = false
}

func (t timer) SetCompare(a, c uint32) {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.b.compareA = a
	t.b.compareC = c
}

func (t timer) Start() {
	t.b.mu.Lock()
	defer t.b.mu.Unlock()
	t.b.timerRunning = true
}

type converter struct{ b *Board }

func (c converter) Init() {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	// Reset, half-word transfers, TC0 trigger, channel 0 enabled
	c.b.value = 0
	c.b.endTxIER = false
	c.b.converterReady = true
}

// engine is the producer's view of the PDC and the ENDTX interrupt
type engine struct{ b *Board }

func (e engine) Init() {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.txEnabled = true
}

func (e engine) Launch(chunk []audio.Sample) {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.handlerEng.Launch(chunk)
	e.b.service()
}

func (e engine) Abort() {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.handlerEng.Abort()
	e.b.service()
}

func (e engine) EnableCompletion() {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.endTxIER = true
	e.b.service()
}

func (e engine) DisableCompletion() {
	e.b.mu.Lock()
	defer e.b.mu.Unlock()
	e.b.endTxIER = false
}

func (e engine) LevelTriggered() bool { return !e.b.config.EdgeTriggered }

// handlerEngine is the engine as seen from the completion handler, which
// already owns the CPU
type handlerEngine struct{ b *Board }

func (h handlerEngine) Init() { h.b.txEnabled = true }

func (h handlerEngine) Launch(chunk []audio.Sample) {
	h.b.chunk = chunk
	h.b.endTxEdge = false
}

func (h handlerEngine) Abort() {
	h.b.chunk = nil
	h.b.endTxEdge = false
}

func (h handlerEngine) EnableCompletion()    { h.b.endTxIER = true }
func (h handlerEngine) DisableCompletion()   { h.b.endTxIER = false }
func (h handlerEngine) LevelTriggered() bool { return !h.b.config.EdgeTriggered }

// line is the interrupt controller entry for the converter
type line struct{ b *Board }

func (l line) Attach(handler hal.CompletionHandler) {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	eng := l.b.handlerEng
	l.b.handler = func() { handler(eng) }
}

func (l line) ClearPending() {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	l.b.linePend = false
}

func (l line) Enable() {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	l.b.lineOn = true
	if l.b.linePend {
		l.b.service()
	}
}

func (l line) Disable() {
	l.b.mu.Lock()
	defer l.b.mu.Unlock()
	l.b.lineOn = false
}
