// ABOUTME: WAV to converter table conversion
// ABOUTME: Validates 16-bit PCM input and maps it onto 12-bit codes
package main

import (
	"fmt"
	"io"

	"github.com/Sendspin/sendspin-dac/pkg/audio"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Table is a converted WAV file
type Table struct {
	Format     uint16
	Channels   int
	SampleRate int
	BitDepth   int
	Codes      []audio.Sample
	Min, Max   audio.Sample
}

// header reads and validates the WAV format
func header(r io.ReadSeeker) (*wav.Decoder, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("file hasn't wav format")
	}
	return dec, nil
}

// Convert decodes a mono or stereo 16-bit PCM WAV into converter codes.
// Stereo frames are averaged before conversion.
func Convert(r io.ReadSeeker) (*Table, error) {
	dec, err := header(r)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Format:     dec.WavAudioFormat,
		Channels:   int(dec.NumChans),
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
	}
	if t.Format != 1 || (t.Channels != 1 && t.Channels != 2) || t.BitDepth != 16 {
		return t, fmt.Errorf("file has not supported format")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return t, fmt.Errorf("failed to read samples: %w", err)
	}

	t.Codes = codes(buf, t.Channels)
	t.Min, t.Max = bounds(t.Codes)
	return t, nil
}

func codes(buf *goaudio.IntBuffer, channels int) []audio.Sample {
	out := make([]audio.Sample, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		if channels == 1 {
			out = append(out, audio.CodeFromInt16(int16(buf.Data[i])))
			continue
		}
		// Average without integer truncation
		avg := float64(buf.Data[i]+buf.Data[i+1]) / 2
		out = append(out, audio.Sample((avg+32768)*audio.MaxCode/65535))
	}
	return out
}

func bounds(codes []audio.Sample) (lo, hi audio.Sample) {
	if len(codes) == 0 {
		return 0, 0
	}
	lo, hi = codes[0], codes[0]
	for _, c := range codes[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return lo, hi
}
