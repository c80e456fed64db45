// ABOUTME: Resampling wrapper for audio sources
// ABOUTME: Presents any source at a fixed output rate
package resample

import (
	"io"
	"log"

	"github.com/Sendspin/sendspin-dac/pkg/audio/source"
)

// Source resamples another source on the fly
type Source struct {
	src     source.Source
	r       *Resampler
	rate    int
	in      []int32
	out     []int32
	pending []int32
	eof     bool
}

// NewSource returns src converted to rate. A source already at rate is
// returned unchanged.
func NewSource(src source.Source, rate int) source.Source {
	if rate <= 0 || src.SampleRate() == rate {
		return src
	}
	log.Printf("Resampling %d Hz -> %d Hz", src.SampleRate(), rate)
	return &Source{
		src:  src,
		r:    New(src.SampleRate(), rate, src.Channels()),
		rate: rate,
	}
}

func (s *Source) Read(samples []int32) (int, error) {
	channels := s.src.Channels()
	want := len(samples) - len(samples)%channels

	for len(s.pending) < want && !s.eof {
		inSize := s.r.InputSamplesNeeded(want-len(s.pending)) + channels
		if cap(s.in) < inSize {
			s.in = make([]int32, inSize)
		}
		n, err := s.src.Read(s.in[:inSize])
		if err == io.EOF {
			s.eof = true
		} else if err != nil {
			return 0, err
		}

		outSize := s.r.OutputSamplesNeeded(n)
		if cap(s.out) < outSize {
			s.out = make([]int32, outSize)
		}
		produced := s.r.Resample(s.in[:n], s.out[:outSize])
		s.pending = append(s.pending, s.out[:produced]...)
	}

	n := copy(samples[:want], s.pending)
	s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	if n == 0 && s.eof {
		return 0, io.EOF
	}
	return n, nil
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.src.Channels() }
func (s *Source) Close() error    { return s.src.Close() }
