// ABOUTME: MP3 file source
// ABOUTME: Decodes MP3 to 16-bit stereo with go-mp3
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Source reads from an MP3 file
type MP3Source struct {
	file       *os.File
	decoder    *mp3.Decoder
	buf        []byte
	pending    []byte
	sampleRate int
}

// NewMP3 creates a new MP3 audio source
func NewMP3(filePath string) (*MP3Source, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open MP3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	log.Printf("Loaded MP3: %s (sample rate: %d Hz)", filepath.Base(filePath), decoder.SampleRate())

	return &MP3Source{
		file:       f,
		decoder:    decoder,
		sampleRate: decoder.SampleRate(),
	}, nil
}

func (s *MP3Source) Read(samples []int32) (int, error) {
	// MP3 decoder outputs stereo int16, 4 bytes per frame
	want := frames(len(samples), 2) * 2
	if want == 0 {
		return 0, nil
	}
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	buf := append(s.buf[:0], s.pending...)
	s.pending = s.pending[:0]

	for len(buf) < want {
		n, err := s.decoder.Read(s.buf[len(buf):want])
		buf = s.buf[:len(buf)+n]
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to decode MP3: %w", err)
		}
		if n == 0 {
			break
		}
	}

	usable := len(buf) - len(buf)%4
	s.pending = append(s.pending, buf[usable:]...)
	if usable == 0 {
		return 0, io.EOF
	}

	numSamples := usable / 2
	for i := 0; i < numSamples; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		samples[i] = audio.SampleFromInt16(sample16)
	}
	return numSamples, nil
}

// Rewind restarts decoding at the first frame
func (s *MP3Source) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	decoder, err := mp3.NewDecoder(s.file)
	if err != nil {
		return fmt.Errorf("failed to create new decoder: %w", err)
	}
	s.decoder = decoder
	s.pending = s.pending[:0]
	return nil
}

func (s *MP3Source) SampleRate() int { return s.sampleRate }
func (s *MP3Source) Channels() int   { return 2 }
func (s *MP3Source) Close() error {
	return s.file.Close()
}
