// ABOUTME: WAV capture output
// ABOUTME: Records the analog output to a 16-bit PCM WAV file with go-audio/wav
package output

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Capture writes everything it receives to a WAV file
type Capture struct {
	path    string
	mu      sync.Mutex
	file    *os.File
	encoder *wav.Encoder
	buf     *goaudio.IntBuffer
	written int
}

// NewCapture creates a capture output writing to path
func NewCapture(path string) *Capture {
	return &Capture{path: path}
}

// Open creates the file and writes the header
func (c *Capture) Open(sampleRate, channels int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file != nil {
		return fmt.Errorf("capture %s already open", c.path)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("failed to create capture file: %w", err)
	}

	c.file = f
	c.encoder = wav.NewEncoder(f, sampleRate, 16, channels, 1)
	c.buf = &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}

	log.Printf("Capturing output to %s: %dHz, %d channels", c.path, sampleRate, channels)
	return nil
}

func (c *Capture) Write(samples []int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encoder == nil {
		return ErrNotOpen
	}

	data := c.buf.Data[:0]
	for _, s := range samples {
		data = append(data, int(audio.SampleToInt16(s)))
	}
	c.buf.Data = data

	if err := c.encoder.Write(c.buf); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	c.written += len(samples)
	return nil
}

// Close finalizes the WAV header and closes the file
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.file == nil {
		return nil
	}

	// An empty capture still needs its headers
	var encErr error
	if c.written == 0 {
		c.buf.Data = c.buf.Data[:0]
		encErr = c.encoder.Write(c.buf)
	}
	if encErr == nil {
		encErr = c.encoder.Close()
	}
	fileErr := c.file.Close()
	c.file = nil
	c.encoder = nil

	if encErr != nil {
		return fmt.Errorf("failed to finalize capture: %w", encErr)
	}
	if fileErr != nil {
		return fmt.Errorf("failed to close capture: %w", fileErr)
	}

	log.Printf("Capture %s closed (%d samples)", c.path, c.written)
	return nil
}
