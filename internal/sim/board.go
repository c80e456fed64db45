// ABOUTME: Simulated microcontroller board for the sound driver
// ABOUTME: TC0 pacing timer, DACC converter with PDC transmit engine, interrupt line
package sim

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/sound"
	"github.com/google/uuid"
)

// DefaultCPUHz is the master clock of the reference board (12 MHz * 14 / 2)
const DefaultCPUHz = 84000000

// Config holds board configuration
type Config struct {
	// CPUHz is the master clock (default: 84 MHz)
	CPUHz uint32

	// EdgeTriggered makes the completion signal fire only when a transfer
	// finishes, instead of whenever its remaining count is zero
	EdgeTriggered bool
}

// Stats holds board counters
type Stats struct {
	Triggers   uint64 // pacing timer triggers seen by the converter
	Converted  uint64 // triggers that consumed a transferred sample
	Starved    uint64 // triggers with nothing to convert
	Interrupts uint64 // completion handler invocations
}

// Board is a single-core microcontroller with one DAC output path.
//
// mu stands for the CPU: the completion handler runs with it held, and every
// producer-side peripheral access takes it. A producer that masks the
// completion signal therefore waits for a running handler to return, and a
// producer that unmasks an asserted signal runs the handler on its own
// goroutine before continuing.
type Board struct {
	id     uuid.UUID
	config Config

	mu sync.Mutex

	// TC0 channel 0
	waveform     bool
	compareA     uint32
	compareC     uint32
	timerRunning bool

	// DACC
	converterReady bool
	value          audio.Sample

	// PDC and ENDTX interrupt
	txEnabled  bool
	chunk      []audio.Sample
	endTxIER   bool
	endTxEdge  bool
	lineOn     bool
	linePend   bool
	handler    func()
	inHandler  bool
	handlerEng handlerEngine

	stats Stats
}

// NewBoard creates a powered-up board in reset state
func NewBoard(config Config) *Board {
	if config.CPUHz == 0 {
		config.CPUHz = DefaultCPUHz
	}

	b := &Board{
		id:     uuid.New(),
		config: config,
	}
	b.handlerEng = handlerEngine{b}

	mode := "level"
	if config.EdgeTriggered {
		mode = "edge"
	}
	log.Printf("Simulated board %s: cpu %d Hz, %s-triggered transfer completion", b.id, config.CPUHz, mode)

	return b
}

// ID returns the chip's 128-bit unique identifier
func (b *Board) ID() uuid.UUID { return b.id }

// Hardware returns the peripherals in the form the driver expects
func (b *Board) Hardware() sound.Hardware {
	return sound.Hardware{
		Clock:     clock{b},
		Timer:     timer{b},
		Converter: converter{b},
		Engine:    engine{b},
		IRQ:       line{b},
	}
}

// Stats returns the board counters
func (b *Board) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Rate returns the current trigger rate in Hz, or 0 when the timer is idle
func (b *Board) Rate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rateLocked()
}

func (b *Board) rateLocked() float64 {
	if !b.timerRunning || !b.waveform || b.compareC == 0 {
		return 0
	}
	// TIMER_CLOCK1 counts at half the master clock
	return float64(b.config.CPUHz) / 2 / float64(b.compareC)
}

// Output returns the value currently held on the analog output
func (b *Board) Output() audio.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Step delivers n pacing triggers and returns the converter output after
// each. The output holds its last value when no data arrives.
func (b *Board) Step(n int) []audio.Sample {
	out := make([]audio.Sample, 0, n)
	for i := 0; i < n; i++ {
		v, _ := b.trigger()
		out = append(out, v)
	}
	return out
}

// Sink receives converter output in real time
type Sink func(samples []audio.Sample) error

// Run clocks the converter in real time at the pacing timer's rate and hands
// the output to sink every 10ms, until ctx is done.
func (b *Board) Run(ctx context.Context, sink Sink) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	last := time.Now()
	var carry float64
	batch := make([]audio.Sample, 0, 1024)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			carry += now.Sub(last).Seconds() * b.Rate()
			last = now

			n := int(carry)
			carry -= float64(n)
			if n == 0 {
				continue
			}

			batch = batch[:0]
			for i := 0; i < n; i++ {
				v, _ := b.trigger()
				batch = append(batch, v)
			}
			if err := sink(batch); err != nil {
				return fmt.Errorf("converter sink failed: %w", err)
			}
		}
	}
}

// trigger performs one conversion. It reports whether a transferred sample
// was consumed.
func (b *Board) trigger() (audio.Sample, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.converterReady {
		return b.value, false
	}
	b.stats.Triggers++

	if !b.txEnabled || len(b.chunk) == 0 {
		b.stats.Starved++
		return b.value, false
	}

	b.value = b.chunk[0] & audio.MaxCode
	b.chunk = b.chunk[1:]
	b.stats.Converted++

	if len(b.chunk) == 0 {
		b.chunk = nil
		b.endTxEdge = true
		b.service()
	}
	return b.value, true
}

// endTx reports the transfer-complete status flag
func (b *Board) endTx() bool {
	if b.config.EdgeTriggered {
		return b.endTxEdge
	}
	return len(b.chunk) == 0
}

// service runs the completion handler for as long as the interrupt is
// asserted. Callers hold mu. Requests raised from inside the handler are
// picked up by the loop once it returns.
func (b *Board) service() {
	if b.inHandler || b.handler == nil {
		return
	}
	for b.endTxIER && b.endTx() {
		if !b.lineOn {
			b.linePend = true
			return
		}
		b.linePend = false
		// Reading the status register clears the edge flag
		b.endTxEdge = false

		b.inHandler = true
		b.handler()
		b.inHandler = false
		b.stats.Interrupts++
	}
}
