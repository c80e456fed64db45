// ABOUTME: Tests for the sound driver facade and transfer controller
// ABOUTME: Runs against fake peripherals in level-sensitive and edge-triggered modes
package sound

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
)

var interruptModes = []struct {
	name  string
	level bool
}{
	{"level", true},
	{"edge", false},
}

func newTestDriver(t *testing.T, level bool, config Config) (*Driver, *fakeHW) {
	t.Helper()
	hw := newFakeHW(level)
	drv, err := New(hw.hardware(), config)
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}
	drv.InitHardware()
	return drv, hw
}

func seq(from, n int) []audio.Sample {
	s := make([]audio.Sample, n)
	for i := range s {
		s[i] = audio.Sample(from + i)
	}
	return s
}

func checkAccounting(t *testing.T, drv *Driver) {
	t.Helper()
	if drv.Free()+drv.Occupied() != drv.Capacity() {
		t.Fatalf("free %d + occupied %d != capacity %d", drv.Free(), drv.Occupied(), drv.Capacity())
	}
}

func TestNewDefaults(t *testing.T) {
	drv, err := New(newFakeHW(true).hardware(), Config{})
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	if drv.Capacity() != 4096 {
		t.Errorf("expected default capacity 4096, got %d", drv.Capacity())
	}
	if drv.MaxChunk() != 512 {
		t.Errorf("expected default max chunk 512, got %d", drv.MaxChunk())
	}
	if drv.Free() != 4096 {
		t.Errorf("expected empty buffer, got free %d", drv.Free())
	}
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		hw     func() Hardware
		config Config
	}{
		{"missing engine", func() Hardware {
			hw := newFakeHW(true).hardware()
			hw.Engine = nil
			return hw
		}, Config{}},
		{"negative capacity", func() Hardware { return newFakeHW(true).hardware() }, Config{Capacity: -1}},
		{"chunk above capacity", func() Hardware { return newFakeHW(true).hardware() }, Config{Capacity: 8, MaxChunk: 9}},
		{"unreachable default rate", func() Hardware { return newFakeHW(true).hardware() }, Config{DefaultFrequency: 50000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv, err := New(tt.hw(), tt.config)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if drv != nil {
				t.Error("expected nil driver on error")
			}
		})
	}
}

func TestInitHardware(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{})

	if !hw.timer.initialized || !hw.timer.started {
		t.Error("expected timer initialized and started")
	}
	// 84 MHz / 8000 Hz / 2
	if hw.timer.a != 5250 || hw.timer.c != 5251 {
		t.Errorf("expected placeholder compare 5250/5251, got %d/%d", hw.timer.a, hw.timer.c)
	}
	if !hw.converter.initialized || !hw.engineInit {
		t.Error("expected converter and engine initialized")
	}
	if hw.handler == nil || !hw.lineEnabled || hw.cleared == 0 {
		t.Error("expected handler attached on a cleared, enabled line")
	}
	if hw.completionEnabled {
		t.Error("completion signal must stay masked until the first feed")
	}
	if drv.Active() {
		t.Error("expected Idle after init")
	}
	if drv.Frequency() != DefaultFrequency {
		t.Errorf("expected frequency %d, got %d", DefaultFrequency, drv.Frequency())
	}
}

func TestDividers(t *testing.T) {
	tests := []struct {
		cpuHz, hz uint32
		a, c      uint32
	}{
		{84000000, 16000, 2625, 2626},
		{84000000, 44100, 952, 953},
		{84000000, 8000, 5250, 5251},
		{48000000, 22050, 1088, 1089},
	}

	for _, tt := range tests {
		a, c, err := Dividers(tt.cpuHz, tt.hz)
		if err != nil {
			t.Fatalf("%d/%d: unexpected error %v", tt.cpuHz, tt.hz, err)
		}
		if a != tt.a || c != tt.c {
			t.Errorf("%d Hz from %d: expected %d/%d, got %d/%d", tt.hz, tt.cpuHz, tt.a, tt.c, a, c)
		}
	}

	if _, _, err := Dividers(84000000, 0); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency for 0 Hz, got %v", err)
	}
	if _, _, err := Dividers(1000, 600); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("expected ErrInvalidFrequency when divider is 0, got %v", err)
	}
}

func TestStartProgramsTimer(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{})

	if err := drv.Start(16000); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if hw.timer.a != 2625 || hw.timer.c != 2626 {
		t.Errorf("expected compare 2625/2626, got %d/%d", hw.timer.a, hw.timer.c)
	}
	if drv.Frequency() != 16000 {
		t.Errorf("expected frequency 16000, got %d", drv.Frequency())
	}
	if hw.aborts == 0 {
		t.Error("expected start to stop the engine first")
	}
}

func TestStartRejectsInvalidFrequency(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{Capacity: 8, MaxChunk: 4})
	drv.Feed(seq(1, 3))
	sets, aborts := hw.timer.sets, hw.aborts

	if err := drv.Start(0); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	if hw.timer.sets != sets || hw.aborts != aborts {
		t.Error("rejected start must not touch the hardware")
	}
	if drv.Occupied() != 3 {
		t.Errorf("rejected start must keep queued data, occupied %d", drv.Occupied())
	}
}

func TestDrainScenario(t *testing.T) {
	for _, mode := range interruptModes {
		t.Run(mode.name, func(t *testing.T) {
			drv, hw := newTestDriver(t, mode.level, Config{Capacity: 8, MaxChunk: 4})

			if !drv.Feed([]audio.Sample{1, 2, 3, 4, 5}) {
				t.Fatal("feed of 5 into an empty buffer of 8 failed")
			}
			if drv.Free() != 3 {
				t.Errorf("expected free 3, got %d", drv.Free())
			}
			if !drv.Active() {
				t.Fatal("expected Armed after first feed")
			}
			if len(hw.launches) != 1 || hw.launches[0] != 4 {
				t.Fatalf("expected first chunk of 4, got %v", hw.launches)
			}

			// First completion consumes min(5, 4) = 4
			hw.finish()
			if drv.buf.ReadCursor() != 4 {
				t.Errorf("expected read cursor 4, got %d", drv.buf.ReadCursor())
			}
			if drv.Free() != 7 {
				t.Errorf("expected free 7, got %d", drv.Free())
			}
			if len(hw.launches) != 2 || hw.launches[1] != 1 {
				t.Fatalf("expected second chunk of 1, got %v", hw.launches)
			}

			// Second completion consumes sample 5 and finds nothing else
			hw.finish()
			if drv.Free() != 8 {
				t.Errorf("expected free 8, got %d", drv.Free())
			}
			if drv.Active() {
				t.Error("expected Idle after the buffer ran dry")
			}
			if hw.completionEnabled {
				t.Error("completion signal must be disabled when going Idle")
			}

			want := []audio.Sample{1, 2, 3, 4, 5}
			if len(hw.output) != len(want) {
				t.Fatalf("expected %d samples out, got %d", len(want), len(hw.output))
			}
			for i := range want {
				if hw.output[i] != want[i] {
					t.Errorf("output[%d]: expected %d, got %d", i, want[i], hw.output[i])
				}
			}

			stats := drv.Stats()
			if stats.Drained != 1 || stats.Chunks != 2 || stats.Accepted != 5 {
				t.Errorf("unexpected stats %+v", stats)
			}
		})
	}
}

func TestFeedRejectsWithoutSideEffects(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{Capacity: 8, MaxChunk: 4})
	drv.Feed(seq(1, 6))

	free, r, w := drv.Free(), drv.buf.ReadCursor(), drv.buf.WriteCursor()
	launches := len(hw.launches)

	if drv.Feed(seq(100, 3)) {
		t.Fatal("feed larger than free capacity must fail")
	}
	if drv.Free() != free || drv.buf.ReadCursor() != r || drv.buf.WriteCursor() != w {
		t.Error("failed feed changed buffer state")
	}
	if len(hw.launches) != launches {
		t.Error("failed feed touched the engine")
	}
	if drv.Stats().Rejected != 1 {
		t.Errorf("expected 1 rejected feed, got %d", drv.Stats().Rejected)
	}
	checkAccounting(t, drv)
}

func TestFeedWhileArmedDoesNotRelaunch(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{Capacity: 16, MaxChunk: 4})
	drv.Feed(seq(1, 3))

	if !drv.Feed(seq(4, 3)) {
		t.Fatal("second feed failed")
	}
	if len(hw.launches) != 1 {
		t.Errorf("feeding an Armed pipeline must not launch, got %v", hw.launches)
	}
	if !hw.completionEnabled {
		t.Error("completion signal must be restored after the masked section")
	}

	hw.drainAll()
	if len(hw.output) != 6 {
		t.Fatalf("expected 6 samples out, got %d", len(hw.output))
	}
	for i, s := range hw.output {
		if s != audio.Sample(i+1) {
			t.Fatalf("output[%d]: expected %d, got %d", i, i+1, s)
		}
	}
}

func TestChunksNeverSpanArrayEnd(t *testing.T) {
	for _, mode := range interruptModes {
		t.Run(mode.name, func(t *testing.T) {
			drv, hw := newTestDriver(t, mode.level, Config{Capacity: 8, MaxChunk: 8})

			// Move the cursors to 6
			drv.Feed(seq(0, 6))
			hw.drainAll()

			// 2 samples at the tail, 3 at the head
			drv.Feed(seq(10, 5))
			first := hw.launches[len(hw.launches)-1]
			if first != 2 {
				t.Fatalf("expected chunk bounded by array end (2), got %d", first)
			}

			hw.drainAll()
			last := hw.launches[len(hw.launches)-1]
			if last != 3 {
				t.Errorf("expected wrapped chunk of 3, got %d", last)
			}
		})
	}
}

func TestStopResetsState(t *testing.T) {
	for _, mode := range interruptModes {
		t.Run(mode.name, func(t *testing.T) {
			drv, hw := newTestDriver(t, mode.level, Config{Capacity: 8, MaxChunk: 4})
			drv.Feed(seq(1, 7))
			aborts := hw.aborts

			drv.Stop()

			if drv.Free() != 8 || drv.Active() || drv.pending != 0 {
				t.Errorf("after stop: free=%d active=%v pending=%d", drv.Free(), drv.Active(), drv.pending)
			}
			if hw.aborts != aborts+1 {
				t.Error("stop must abort the engine")
			}
			if hw.completionEnabled {
				t.Error("stop must disable the completion signal")
			}

			// The aborted chunk never completes
			if hw.finish() {
				t.Error("expected no chunk in flight after stop")
			}

			// A full-size feed succeeds and restarts the pipeline
			if !drv.Feed(seq(20, 8)) {
				t.Fatal("feed of capacity after stop failed")
			}
			hw.drainAll()
			if drv.Free() != 8 || drv.Active() {
				t.Errorf("expected drained Idle driver, free=%d active=%v", drv.Free(), drv.Active())
			}
			tail := hw.output[len(hw.output)-8:]
			for i, s := range tail {
				if s != audio.Sample(20+i) {
					t.Fatalf("output after stop[%d]: expected %d, got %d", i, 20+i, s)
				}
			}
		})
	}
}

func TestFullBufferFeedFromMidArray(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{Capacity: 8, MaxChunk: 8})

	drv.Feed(seq(0, 3))
	hw.drainAll()

	// Idle with both cursors at 3; fill the whole buffer
	if !drv.Feed(seq(50, 8)) {
		t.Fatal("full feed failed")
	}
	if drv.Free() != 0 {
		t.Errorf("expected full buffer, got free %d", drv.Free())
	}
	hw.drainAll()

	out := hw.output[3:]
	if len(out) != 8 {
		t.Fatalf("expected 8 samples out, got %d", len(out))
	}
	for i, s := range out {
		if s != audio.Sample(50+i) {
			t.Fatalf("output[%d]: expected %d, got %d", i, 50+i, s)
		}
	}
}

func TestEmptyFeed(t *testing.T) {
	drv, hw := newTestDriver(t, true, Config{Capacity: 8, MaxChunk: 4})

	if !drv.Feed(nil) {
		t.Error("empty feed should succeed")
	}
	if drv.Active() || len(hw.launches) != 0 {
		t.Error("empty feed must not start the pipeline")
	}
}

func TestRandomizedFIFO(t *testing.T) {
	for _, mode := range interruptModes {
		t.Run(mode.name, func(t *testing.T) {
			drv, hw := newTestDriver(t, mode.level, Config{Capacity: 64, MaxChunk: 16})
			rng := rand.New(rand.NewSource(7))

			var submitted []audio.Sample
			next := 0
			for step := 0; step < 2000; step++ {
				if rng.Intn(3) == 0 {
					hw.finish()
				} else {
					n := rng.Intn(24) + 1
					batch := seq(next, n)
					if drv.Feed(batch) {
						submitted = append(submitted, batch...)
						next += n
					}
				}

				checkAccounting(t, drv)
				if len(hw.chunk) > drv.MaxChunk() {
					t.Fatalf("chunk of %d exceeds max %d", len(hw.chunk), drv.MaxChunk())
				}
				if drv.Active() != (drv.Occupied() > 0) {
					t.Fatalf("active=%v with occupied=%d", drv.Active(), drv.Occupied())
				}
			}
			hw.drainAll()

			if len(hw.output) != len(submitted) {
				t.Fatalf("expected %d samples out, got %d", len(submitted), len(hw.output))
			}
			for i := range submitted {
				if hw.output[i] != submitted[i] {
					t.Fatalf("order broken at %d: expected %d, got %d", i, submitted[i], hw.output[i])
				}
			}
		})
	}
}
