// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotOpen is returned when writing to an output before Open
var ErrNotOpen = errors.New("output not initialized")

// Output represents an audio output device
type Output interface {
	// Open initializes the output device
	Open(sampleRate, channels int) error

	// Write outputs audio samples (blocks until written)
	Write(samples []int32) error

	// Close releases output resources
	Close() error
}

// VolumeControl is implemented by outputs with software volume
type VolumeControl interface {
	SetVolume(volume int)
	GetVolume() int
	SetMuted(muted bool)
	IsMuted() bool
}

// New creates an output by name: "speaker", "null", or a path ending in
// .wav for capture
func New(name string) (Output, error) {
	switch {
	case name == "" || name == "speaker":
		return NewOto(), nil
	case name == "null":
		return NewNull(), nil
	case strings.HasSuffix(strings.ToLower(name), ".wav"):
		return NewCapture(name), nil
	default:
		return nil, fmt.Errorf("unknown output %q (use speaker, null or a .wav path)", name)
	}
}
