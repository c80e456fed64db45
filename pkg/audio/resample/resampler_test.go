// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import (
	"io"
	"testing"

	"github.com/Sendspin/sendspin-dac/pkg/audio/source"
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func TestNew(t *testing.T) {
	r := New(44100, 16000, 2)

	if r.inputRate != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.inputRate)
	}
	if r.outputRate != 16000 {
		t.Errorf("expected outputRate 16000, got %d", r.outputRate)
	}
	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}
}

func TestResampleUpsampling(t *testing.T) {
	r := New(8000, 16000, 1)

	input := make([]int32, 100)
	for i := range input {
		input[i] = int32(i * 100)
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)

	// The last input frame is held back for the next chunk
	if n != 198 {
		t.Fatalf("expected 198 samples, got %d", n)
	}
	for i := 0; i < n; i++ {
		if output[i] != int32(i*50) {
			t.Fatalf("sample %d: expected %d, got %d", i, i*50, output[i])
		}
	}
}

func TestResampleDownsampling(t *testing.T) {
	r := New(48000, 16000, 2)

	input := make([]int32, 600)
	for i := range input {
		input[i] = int32(i * 100)
	}

	expectedSize := len(input) / 3
	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)

	if n < expectedSize-4 || n > expectedSize+4 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleSameRate(t *testing.T) {
	r := New(16000, 16000, 1)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)

	for i := 0; i < n; i++ {
		if diff := abs(int(output[i]) - int(input[i])); diff > 0 {
			t.Errorf("sample %d: expected %d, got %d", i, input[i], output[i])
		}
	}
}

func TestResampleAcrossChunks(t *testing.T) {
	whole := make([]int32, 120)
	for i := range whole {
		whole[i] = int32(i * 100)
	}

	r := New(8000, 16000, 1)
	var out []int32
	buf := make([]int32, r.OutputSamplesNeeded(7))
	for pos := 0; pos < len(whole); pos += 7 {
		end := min(pos+7, len(whole))
		n := r.Resample(whole[pos:end], buf)
		out = append(out, buf[:n]...)
	}

	// Identical to one pass over the whole input
	if len(out) != 2*len(whole)-2 {
		t.Fatalf("expected %d samples, got %d", 2*len(whole)-2, len(out))
	}
	for i, v := range out {
		if v != int32(i*50) {
			t.Fatalf("sample %d: expected %d, got %d", i, i*50, v)
		}
	}
}

func TestResampleStereo(t *testing.T) {
	r := New(44100, 16000, 2)

	input := make([]int32, 200)
	for i := 0; i < 100; i++ {
		input[i*2] = 1000
		input[i*2+1] = -1000
	}

	output := make([]int32, r.OutputSamplesNeeded(len(input)))
	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}

	for i := 0; i < n/2; i++ {
		if output[i*2] != 1000 || output[i*2+1] != -1000 {
			t.Fatalf("frame %d: channels mixed up: %d, %d", i, output[i*2], output[i*2+1])
		}
	}
}

func TestReset(t *testing.T) {
	r := New(8000, 16000, 1)
	r.Resample([]int32{1, 2, 3}, make([]int32, 16))
	r.Reset()

	if r.primed || r.position != 0 {
		t.Error("expected resampler state cleared")
	}
}

func TestSourcePassthrough(t *testing.T) {
	src := source.NewTone(0, 16000)
	if got := NewSource(src, 16000); got != source.Source(src) {
		t.Error("expected the same source when rates match")
	}
}

func TestSourceConvertsRate(t *testing.T) {
	// 400 samples at 8 kHz become about 800 at 16 kHz
	pcm := make([]int32, 400)
	for i := range pcm {
		pcm[i] = int32(i) << 8
	}
	src := NewSource(&pcmSource{data: pcm, rate: 8000}, 16000)

	if src.SampleRate() != 16000 {
		t.Fatalf("expected 16000 Hz, got %d", src.SampleRate())
	}

	var out []int32
	buf := make([]int32, 64)
	for {
		n, err := src.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
	}

	if len(out) != 798 {
		t.Fatalf("expected 798 samples, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Fatalf("ramp not monotonic at %d", i)
		}
	}
}

// pcmSource serves a fixed PCM slice
type pcmSource struct {
	data []int32
	rate int
}

func (p *pcmSource) Read(samples []int32) (int, error) {
	if len(p.data) == 0 {
		return 0, io.EOF
	}
	n := copy(samples, p.data)
	p.data = p.data[n:]
	return n, nil
}

func (p *pcmSource) SampleRate() int { return p.rate }
func (p *pcmSource) Channels() int   { return 1 }
func (p *pcmSource) Close() error    { return nil }
