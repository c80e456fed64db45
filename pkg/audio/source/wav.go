// ABOUTME: WAV file source
// ABOUTME: Decodes integer PCM WAV files with go-audio/wav
package source

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource reads from a PCM WAV file
type WAVSource struct {
	file       *os.File
	decoder    *wav.Decoder
	buf        *goaudio.IntBuffer
	sampleRate int
	channels   int
	bitDepth   int
}

// NewWAV creates a new WAV audio source
func NewWAV(filePath string) (*WAVSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", filePath)
	}
	if decoder.WavAudioFormat != 1 {
		f.Close()
		return nil, fmt.Errorf("%w: WAV encoding %d is not integer PCM", ErrUnsupportedFormat, decoder.WavAudioFormat)
	}
	if err := decoder.FwdToPCM(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to find PCM data: %w", err)
	}

	s := &WAVSource{
		file:       f,
		decoder:    decoder,
		buf:        &goaudio.IntBuffer{},
		sampleRate: int(decoder.SampleRate),
		channels:   int(decoder.NumChans),
		bitDepth:   int(decoder.BitDepth),
	}

	log.Printf("Loaded WAV: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		filepath.Base(filePath), s.sampleRate, s.channels, s.bitDepth)

	return s, nil
}

func (s *WAVSource) Read(samples []int32) (int, error) {
	want := frames(len(samples), s.channels)
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil {
		return 0, fmt.Errorf("failed to decode WAV: %w", err)
	}
	n = frames(n, s.channels)
	if n == 0 {
		return 0, io.EOF
	}

	for i := 0; i < n; i++ {
		samples[i] = scaleTo24(int32(s.buf.Data[i]), s.bitDepth)
	}
	return n, nil
}

// Rewind restarts decoding at the first sample
func (s *WAVSource) Rewind() error {
	return s.decoder.Rewind()
}

func (s *WAVSource) SampleRate() int { return s.sampleRate }
func (s *WAVSource) Channels() int   { return s.channels }
func (s *WAVSource) Close() error {
	return s.file.Close()
}

// scaleTo24 moves a sample of the given bit depth into the 24-bit range.
// 8-bit WAV data is unsigned.
func scaleTo24(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 8:
		return (sample - 128) << 16
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}
