// ABOUTME: FLAC file source
// ABOUTME: Decodes FLAC frames with mewkiz/flac
package source

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/mewkiz/flac"
)

// FLACSource reads from a FLAC file
type FLACSource struct {
	file       *os.File
	stream     *flac.Stream
	pending    []int32
	sampleRate int
	channels   int
	bitDepth   int
}

// NewFLAC creates a new FLAC audio source
func NewFLAC(filePath string) (*FLACSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open FLAC file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	s := &FLACSource{
		file:       f,
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
	}

	log.Printf("Loaded FLAC: %s (sample rate: %d Hz, channels: %d, bit depth: %d)",
		filepath.Base(filePath), s.sampleRate, s.channels, s.bitDepth)

	return s, nil
}

func (s *FLACSource) Read(samples []int32) (int, error) {
	want := frames(len(samples), s.channels)
	if want == 0 {
		return 0, nil
	}

	for len(s.pending) < want {
		frame, err := s.stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to decode FLAC frame: %w", err)
		}

		// Interleave and scale to the 24-bit range
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < s.channels; ch++ {
				s.pending = append(s.pending, scaleTo24(frame.Subframes[ch].Samples[i], s.bitDepth))
			}
		}
	}

	n := copy(samples[:want], s.pending)
	if n == 0 {
		return 0, io.EOF
	}
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	return n, nil
}

// Rewind restarts decoding at the first frame
func (s *FLACSource) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	stream, err := flac.New(s.file)
	if err != nil {
		return fmt.Errorf("failed to create new stream: %w", err)
	}
	s.stream = stream
	s.pending = s.pending[:0]
	return nil
}

func (s *FLACSource) SampleRate() int { return s.sampleRate }
func (s *FLACSource) Channels() int   { return s.channels }
func (s *FLACSource) Close() error {
	return s.file.Close()
}
