// ABOUTME: Test tone generator
// ABOUTME: Generates a mono sine wave at half scale
package source

import (
	"math"
	"sync"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
)

const (
	// DefaultToneFrequency is the A4 note
	DefaultToneFrequency = 440.0

	// DefaultToneRate matches the driver's power-on frequency
	DefaultToneRate = 8000
)

// ToneSource generates a sine test tone. It never ends.
type ToneSource struct {
	sampleIndex uint64
	sampleMu    sync.Mutex
	frequency   float64
	sampleRate  int
}

// NewTone creates a tone generator; zero values select the defaults
func NewTone(frequency float64, sampleRate int) *ToneSource {
	if frequency <= 0 {
		frequency = DefaultToneFrequency
	}
	if sampleRate <= 0 {
		sampleRate = DefaultToneRate
	}
	return &ToneSource{
		frequency:  frequency,
		sampleRate: sampleRate,
	}
}

func (s *ToneSource) Read(samples []int32) (int, error) {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()

	for i := range samples {
		t := float64(s.sampleIndex+uint64(i)) / float64(s.sampleRate)
		v := math.Sin(2 * math.Pi * s.frequency * t)

		// 50% volume
		samples[i] = int32(v * audio.Max24Bit * 0.5)
	}
	s.sampleIndex += uint64(len(samples))

	return len(samples), nil
}

// Rewind restarts the tone at phase zero
func (s *ToneSource) Rewind() error {
	s.sampleMu.Lock()
	defer s.sampleMu.Unlock()
	s.sampleIndex = 0
	return nil
}

func (s *ToneSource) SampleRate() int { return s.sampleRate }
func (s *ToneSource) Channels() int   { return 1 }
func (s *ToneSource) Close() error    { return nil }
