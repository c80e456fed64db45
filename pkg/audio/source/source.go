// ABOUTME: Source interface and file-type dispatch
// ABOUTME: Opens tables, WAV, MP3, FLAC or a test tone and optionally loops them
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for files no source can decode
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Source provides PCM audio samples
type Source interface {
	// Read fills samples with interleaved PCM in the 24-bit range and returns
	// how many were written, always a whole number of frames. It returns
	// io.EOF once the source is exhausted.
	Read(samples []int32) (int, error)

	// SampleRate returns the sample rate of the audio
	SampleRate() int

	// Channels returns the number of channels
	Channels() int

	// Close closes the audio source
	Close() error
}

// Rewinder is a source that can restart from its first sample
type Rewinder interface {
	Source
	Rewind() error
}

// Options controls how Open builds a source
type Options struct {
	// TableRate is the playback rate of converter tables and raw PCM,
	// which carry no header (default: 8000)
	TableRate int

	// ToneFrequency is the pitch of the generated tone (default: 440)
	ToneFrequency float64

	// ToneRate is the sample rate of the generated tone (default: 8000)
	ToneRate int

	// Loop restarts the source at its end
	Loop bool
}

// Open creates a source from a file path. An empty path or "tone" selects
// the test tone generator.
func Open(path string, opts Options) (Source, error) {
	src, err := open(path, opts)
	if err != nil {
		return nil, err
	}
	if opts.Loop {
		rw, ok := src.(Rewinder)
		if !ok {
			src.Close()
			return nil, fmt.Errorf("source %q cannot loop", path)
		}
		return Loop(rw), nil
	}
	return src, nil
}

func open(path string, opts Options) (Source, error) {
	if path == "" || path == "tone" {
		return NewTone(opts.ToneFrequency, opts.ToneRate), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".bin":
		return NewTableFile(path, opts.TableRate)
	case ".raw", ".pcm":
		return NewRaw(path, opts.TableRate)
	case ".wav":
		return NewWAV(path)
	case ".mp3":
		return NewMP3(path)
	case ".flac":
		return NewFLAC(path)
	default:
		return nil, fmt.Errorf("%w: %s (supported: .bin, .raw, .pcm, .wav, .mp3, .flac)", ErrUnsupportedFormat, ext)
	}
}

// Looped repeats a source forever
type Looped struct {
	Rewinder
	rounds int
}

// Loop wraps src so that it rewinds instead of ending. A source that yields
// nothing at all still ends with io.EOF.
func Loop(src Rewinder) *Looped {
	return &Looped{Rewinder: src}
}

func (l *Looped) Read(samples []int32) (int, error) {
	for attempt := 0; attempt < 2; attempt++ {
		n, err := l.Rewinder.Read(samples)
		if err != io.EOF {
			return n, err
		}
		if rwErr := l.Rewinder.Rewind(); rwErr != nil {
			return n, fmt.Errorf("failed to rewind: %w", rwErr)
		}
		l.rounds++
		if n > 0 {
			return n, nil
		}
	}
	return 0, io.EOF
}

// Rounds returns how many times the source has been restarted
func (l *Looped) Rounds() int { return l.rounds }

// frames rounds n down to whole frames
func frames(n, channels int) int {
	if channels <= 1 {
		return n
	}
	return n - n%channels
}
