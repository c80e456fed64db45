// ABOUTME: Sound driver facade: hardware init, start, stop and feed
// ABOUTME: Owns the circular buffer and the transfer controller state
package sound

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/hal"
	"github.com/Sendspin/sendspin-dac/pkg/ring"
)

const (
	DefaultCapacity  = 4096
	DefaultMaxChunk  = 512
	DefaultFrequency = 8000
)

// ErrInvalidConfig is returned by New for unusable settings
var ErrInvalidConfig = errors.New("invalid driver config")

// Config holds driver configuration
type Config struct {
	// Capacity is the buffer size in samples (default: 4096)
	Capacity int

	// MaxChunk bounds a single transfer (default: 512)
	MaxChunk int

	// DefaultFrequency is programmed by InitHardware until Start is called
	// (default: 8000)
	DefaultFrequency uint32
}

// Hardware bundles the peripherals the driver programs
type Hardware struct {
	Clock     hal.Clock
	Timer     hal.PacingTimer
	Converter hal.Converter
	Engine    hal.TransferEngine
	IRQ       hal.InterruptLine
}

// Driver streams samples to the converter.
//
// Feed, Start, Stop and InitHardware belong to the single producer context;
// they must not be called concurrently with each other or from the
// completion handler.
type Driver struct {
	hw     Hardware
	config Config
	buf    *ring.Buffer[audio.Sample]

	// Transfer controller. pending is only touched by the completion handler,
	// inside Feed's masked section and by Stop.
	active  atomic.Bool
	pending int

	frequency atomic.Uint32
	stats     counters
}

// New creates a driver for the given hardware
func New(hw Hardware, config Config) (*Driver, error) {
	if hw.Clock == nil || hw.Timer == nil || hw.Converter == nil || hw.Engine == nil || hw.IRQ == nil {
		return nil, fmt.Errorf("%w: missing peripheral", ErrInvalidConfig)
	}

	if config.Capacity == 0 {
		config.Capacity = DefaultCapacity
	}
	if config.MaxChunk == 0 {
		config.MaxChunk = DefaultMaxChunk
	}
	if config.DefaultFrequency == 0 {
		config.DefaultFrequency = DefaultFrequency
	}

	if config.Capacity < 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidConfig, config.Capacity)
	}
	if config.MaxChunk < 0 || config.MaxChunk > config.Capacity {
		return nil, fmt.Errorf("%w: max chunk %d for capacity %d", ErrInvalidConfig, config.MaxChunk, config.Capacity)
	}
	if _, _, err := Dividers(hw.Clock.CPUHz(), config.DefaultFrequency); err != nil {
		return nil, fmt.Errorf("%w: default frequency: %v", ErrInvalidConfig, err)
	}

	return &Driver{
		hw:     hw,
		config: config,
		buf:    ring.New[audio.Sample](config.Capacity),
	}, nil
}

// InitHardware performs the one-time peripheral setup and leaves the driver
// empty and Idle. The completion signal stays masked until the first Feed.
func (d *Driver) InitHardware() {
	hw := d.hw

	hw.Timer.Init()
	// Any rate will do until Start
	d.setFrequency(d.config.DefaultFrequency)
	hw.Timer.Start()

	hw.Converter.Init()

	hw.IRQ.Disable()
	hw.IRQ.ClearPending()
	hw.IRQ.Attach(d.onComplete)
	hw.IRQ.Enable()

	hw.Engine.Init()

	d.pending = 0
	d.active.Store(false)
	d.buf.Reset()

	log.Printf("Sound hardware initialized: cpu %d Hz, buffer %d samples, max chunk %d",
		hw.Clock.CPUHz(), d.config.Capacity, d.config.MaxChunk)
}

// Start resets the pipeline and reprograms the pacing timer for hz.
// Buffer contents are not touched beyond the reset.
func (d *Driver) Start(hz uint32) error {
	if _, _, err := Dividers(d.hw.Clock.CPUHz(), hz); err != nil {
		return err
	}

	d.Stop()
	d.setFrequency(hz)

	log.Printf("Sound output started at %d Hz", hz)
	return nil
}

// Stop abandons any queued or in-flight data and returns the driver to the
// empty Idle state.
func (d *Driver) Stop() {
	d.hw.Engine.DisableCompletion()
	// Reset the engine's own counters so no stale completion fires later
	d.hw.Engine.Abort()

	d.pending = 0
	d.buf.Reset()
	d.active.Store(false)
}

// Feed queues samples for output. It returns false, changing nothing, when
// the buffer cannot take all of them.
func (d *Driver) Feed(samples []audio.Sample) bool {
	count := len(samples)
	if count > d.buf.Free() {
		d.stats.rejected.Add(1)
		return false
	}
	if count == 0 {
		return true
	}

	// The copy targets free space only and needs no exclusion
	cursor := d.buf.Write(samples)

	d.hw.Engine.DisableCompletion()
	d.buf.Commit(cursor, count)
	if d.active.Load() {
		d.hw.Engine.EnableCompletion()
	} else {
		d.kick()
	}

	d.stats.accepted.Add(uint64(count))
	return true
}

// Free returns how many samples Feed can currently accept
func (d *Driver) Free() int { return d.buf.Free() }

// Occupied returns how many samples are queued or in flight
func (d *Driver) Occupied() int { return d.buf.Occupied() }

// Capacity returns the buffer size in samples
func (d *Driver) Capacity() int { return d.config.Capacity }

// MaxChunk returns the largest transfer the driver launches
func (d *Driver) MaxChunk() int { return d.config.MaxChunk }

// Active reports whether a transfer is armed
func (d *Driver) Active() bool { return d.active.Load() }

// Frequency returns the programmed output rate
func (d *Driver) Frequency() uint32 { return d.frequency.Load() }

// Stats returns the driver counters
func (d *Driver) Stats() Stats { return d.stats.snapshot() }

// Status returns a snapshot for display
func (d *Driver) Status() Status {
	return Status{
		Frequency: d.Frequency(),
		Capacity:  d.config.Capacity,
		Free:      d.Free(),
		Active:    d.Active(),
		Stats:     d.Stats(),
	}
}

func (d *Driver) setFrequency(hz uint32) {
	a, c, _ := Dividers(d.hw.Clock.CPUHz(), hz)
	d.hw.Timer.SetCompare(a, c)
	d.frequency.Store(hz)
}
