// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates source, sound driver, simulated board and output
package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sendspin/sendspin-dac/internal/sim"
	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/Sendspin/sendspin-dac/pkg/audio/output"
	"github.com/Sendspin/sendspin-dac/pkg/audio/resample"
	"github.com/Sendspin/sendspin-dac/pkg/audio/source"
	"github.com/Sendspin/sendspin-dac/pkg/sound"
)

// DefaultRetry is the pause before resubmitting a refused push
const DefaultRetry = 2 * time.Millisecond

// Config holds player configuration
type Config struct {
	// Source is a file path (.bin, .raw, .wav, .mp3, .flac) or "tone"
	Source string

	// Loop replays the source forever
	Loop bool

	// Rate is the DAC rate in Hz (default: the source's rate)
	Rate uint32

	// TableRate is the rate of headerless .bin tables (default: 8000)
	TableRate int

	// Output is "speaker", "null" or a .wav capture path
	Output string

	// Board and driver parameters
	CPUHz         uint32
	EdgeTriggered bool
	Capacity      int
	MaxChunk      int

	// Retry is the pause between refused pushes (default: 2ms)
	Retry time.Duration
}

// Status is a snapshot of the whole signal path
type Status struct {
	BoardID  string
	Source   string
	Output   string
	Rate     float64 // actual trigger rate of the pacing timer
	Driver   sound.Status
	Board    sim.Stats
	Feed     FeedStats
	Level    audio.Sample // value on the analog output
	Finished bool         // source exhausted and buffer drained
}

// Player plays a source through the simulated DAC
type Player struct {
	config Config
	board  *sim.Board
	driver *sound.Driver
	src    source.Source
	out    output.Output

	feed     atomic.Pointer[FeedStats]
	finished atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
	err      error
}

// New creates a player with its board and driver
func New(config Config) (*Player, error) {
	if config.Retry <= 0 {
		config.Retry = DefaultRetry
	}
	if config.Output == "" {
		config.Output = "speaker"
	}

	board := sim.NewBoard(sim.Config{
		CPUHz:         config.CPUHz,
		EdgeTriggered: config.EdgeTriggered,
	})

	driver, err := sound.New(board.Hardware(), sound.Config{
		Capacity: config.Capacity,
		MaxChunk: config.MaxChunk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		config: config,
		board:  board,
		driver: driver,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.feed.Store(&FeedStats{})
	return p, nil
}

// Start opens the source and output, brings up the hardware and begins
// playback
func (p *Player) Start() error {
	src, err := source.Open(p.config.Source, source.Options{
		TableRate: p.config.TableRate,
		ToneRate:  int(p.config.Rate),
		Loop:      p.config.Loop,
	})
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}

	rate := p.config.Rate
	if rate == 0 {
		rate = uint32(src.SampleRate())
	}
	src = resample.NewSource(src, int(rate))

	out, err := output.New(p.config.Output)
	if err != nil {
		src.Close()
		return err
	}
	if err := out.Open(int(rate), 1); err != nil {
		src.Close()
		return fmt.Errorf("failed to open output: %w", err)
	}

	p.driver.InitHardware()
	if err := p.driver.Start(rate); err != nil {
		src.Close()
		out.Close()
		return fmt.Errorf("failed to start driver: %w", err)
	}

	p.src = src
	p.out = out

	log.Printf("Playing %s at %d Hz (timer %.1f Hz) to %s", p.sourceName(), rate, p.board.Rate(), p.config.Output)

	p.wg.Add(2)
	go p.pump()
	go p.convert()

	return nil
}

func (p *Player) sourceName() string {
	if p.config.Source == "" {
		return "tone"
	}
	return p.config.Source
}

// pump feeds the driver until the source ends, then waits for the buffer
// to drain
func (p *Player) pump() {
	defer p.wg.Done()

	stats, err := Pump(p.ctx, p.driver, p.src, p.driver.MaxChunk(), p.config.Retry, func(s FeedStats) {
		p.feed.Store(&s)
	})
	p.feed.Store(&stats)
	if err != nil {
		log.Printf("Feed error: %v", err)
		p.finish(err)
		return
	}
	if p.ctx.Err() != nil {
		return
	}

	log.Printf("Source finished after %d samples, draining", stats.Samples)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for p.driver.Active() {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		}
	}

	p.finished.Store(true)
	log.Printf("Playback complete")
	p.finish(nil)
}

// convert clocks the board in real time and plays its output
func (p *Player) convert() {
	defer p.wg.Done()

	pcm := make([]int32, 0, 1024)
	err := p.board.Run(p.ctx, func(samples []audio.Sample) error {
		pcm = pcm[:0]
		for _, s := range samples {
			pcm = append(pcm, audio.CodeToPCM(s))
		}
		return p.out.Write(pcm)
	})
	if err != nil {
		log.Printf("Output error: %v", err)
		p.finish(err)
	}
}

func (p *Player) finish(err error) {
	p.stopOnce.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed when playback completes or fails
func (p *Player) Done() <-chan struct{} { return p.done }

// Err returns the error that ended playback, if any
func (p *Player) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Output returns the active output, for volume control
func (p *Player) Output() output.Output { return p.out }

// Status returns a snapshot of the signal path
func (p *Player) Status() Status {
	return Status{
		BoardID:  p.board.ID().String(),
		Source:   p.sourceName(),
		Output:   p.config.Output,
		Rate:     p.board.Rate(),
		Driver:   p.driver.Status(),
		Board:    p.board.Stats(),
		Feed:     *p.feed.Load(),
		Level:    p.board.Output(),
		Finished: p.finished.Load(),
	}
}

// Stop halts playback and releases the source and output
func (p *Player) Stop() {
	p.cancel()
	p.wg.Wait()
	p.finish(nil)

	p.driver.Stop()

	if p.out != nil {
		if err := p.out.Close(); err != nil {
			log.Printf("Error closing output: %v", err)
		}
		p.out = nil
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	log.Printf("Player stopped")
}
