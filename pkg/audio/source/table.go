// ABOUTME: Converter table source and the .bin table format
// ABOUTME: Little-endian 16-bit converter codes, one per sample, mono
package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
)

// DefaultTableRate is the playback rate assumed for headerless tables
const DefaultTableRate = 8000

// TableSource plays a fixed table of converter codes
type TableSource struct {
	codes      []audio.Sample
	pos        int
	sampleRate int
}

// NewTable creates a source over codes played at sampleRate
func NewTable(codes []audio.Sample, sampleRate int) *TableSource {
	if sampleRate <= 0 {
		sampleRate = DefaultTableRate
	}
	return &TableSource{codes: codes, sampleRate: sampleRate}
}

// NewTableFile loads a .bin table written by wav2dac
func NewTableFile(filePath string, sampleRate int) (*TableSource, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open table: %w", err)
	}
	defer f.Close()

	codes, err := DecodeTable(f)
	if err != nil {
		return nil, err
	}

	s := NewTable(codes, sampleRate)
	log.Printf("Loaded table: %s (%d samples at %d Hz)", filepath.Base(filePath), len(codes), s.sampleRate)
	return s, nil
}

// Codes returns the table contents
func (s *TableSource) Codes() []audio.Sample { return s.codes }

func (s *TableSource) Read(samples []int32) (int, error) {
	if s.pos >= len(s.codes) {
		return 0, io.EOF
	}
	n := 0
	for ; n < len(samples) && s.pos < len(s.codes); n++ {
		samples[n] = audio.CodeToPCM(s.codes[s.pos])
		s.pos++
	}
	return n, nil
}

// Rewind restarts the table
func (s *TableSource) Rewind() error {
	s.pos = 0
	return nil
}

func (s *TableSource) SampleRate() int { return s.sampleRate }
func (s *TableSource) Channels() int   { return 1 }
func (s *TableSource) Close() error    { return nil }

// DecodeTable reads little-endian 16-bit codes until EOF
func DecodeTable(r io.Reader) ([]audio.Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("table has odd length %d", len(data))
	}

	codes := make([]audio.Sample, len(data)/2)
	for i := range codes {
		codes[i] = audio.Sample(binary.LittleEndian.Uint16(data[i*2:])) & audio.MaxCode
	}
	return codes, nil
}

// EncodeTable writes codes as little-endian 16-bit values
func EncodeTable(w io.Writer, codes []audio.Sample) error {
	buf := make([]byte, len(codes)*2)
	for i, c := range codes {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(c))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// EncodeHex writes codes as a C initializer body, 20 values per line
func EncodeHex(w io.Writer, codes []audio.Sample) error {
	for i, c := range codes {
		if i > 0 && i%20 == 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("failed to write hex table: %w", err)
			}
		}
		if _, err := fmt.Fprintf(w, "0x%03x, ", uint16(c)); err != nil {
			return fmt.Errorf("failed to write hex table: %w", err)
		}
	}
	return nil
}
