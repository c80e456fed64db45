// ABOUTME: Headerless PCM file source
// ABOUTME: Reads signed 16-bit little-endian mono samples
package source

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
)

// RawSource reads headerless 16-bit PCM
type RawSource struct {
	file       *os.File
	reader     *bufio.Reader
	buf        []byte
	sampleRate int
}

// NewRaw opens a .raw or .pcm file played at sampleRate
func NewRaw(filePath string, sampleRate int) (*RawSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PCM file: %w", err)
	}
	if sampleRate <= 0 {
		sampleRate = DefaultTableRate
	}

	log.Printf("Loaded PCM: %s (sample rate: %d Hz, s16le mono)", filepath.Base(filePath), sampleRate)

	return &RawSource{
		file:       f,
		reader:     bufio.NewReader(f),
		sampleRate: sampleRate,
	}, nil
}

func (s *RawSource) Read(samples []int32) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	if cap(s.buf) < len(samples)*2 {
		s.buf = make([]byte, len(samples)*2)
	}
	buf := s.buf[:len(samples)*2]

	// 16-bit PCM: 2 bytes per sample, a trailing odd byte is dropped
	n, err := io.ReadFull(s.reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("failed to read PCM: %w", err)
	}
	numSamples := n / 2
	if numSamples == 0 {
		return 0, io.EOF
	}
	for i := 0; i < numSamples; i++ {
		samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(buf[i*2:])))
	}
	return numSamples, nil
}

// Rewind restarts at the first sample
func (s *RawSource) Rewind() error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to start: %w", err)
	}
	s.reader.Reset(s.file)
	return nil
}

func (s *RawSource) SampleRate() int { return s.sampleRate }
func (s *RawSource) Channels() int   { return 1 }
func (s *RawSource) Close() error {
	return s.file.Close()
}
