// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, converter codes and PCM conversions
package audio

const (
	// 24-bit audio range constants
	Max24Bit = 8388607  // 2^23 - 1
	Min24Bit = -8388608 // -2^23

	// MaxCode is the full-scale code of the 12-bit converter
	MaxCode = 0x0FFF

	// Silence is the code for a zero PCM sample
	Silence Sample = (32768 * MaxCode) / 65535
)

// Sample is one converter code. Only the low 12 bits are significant.
type Sample uint16

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Duration returns the playback time in seconds of n interleaved samples
func (f Format) Duration(n int) float64 {
	if f.SampleRate <= 0 || f.Channels <= 0 {
		return 0
	}
	return float64(n/f.Channels) / float64(f.SampleRate)
}

// SampleToInt16 converts int32 sample to int16 (for 16-bit playback)
func SampleToInt16(sample int32) int16 {
	// Right-shift to convert 24-bit (or 16-bit) to 16-bit range
	return int16(sample >> 8)
}

// SampleFromInt16 converts int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// CodeFromInt16 maps a signed 16-bit sample onto the converter range
func CodeFromInt16(sample int16) Sample {
	return Sample((int32(sample) + 32768) * MaxCode / 65535)
}

// CodeFromPCM maps a 24-bit range PCM sample onto the converter range
func CodeFromPCM(sample int32) Sample {
	if sample > Max24Bit {
		sample = Max24Bit
	} else if sample < Min24Bit {
		sample = Min24Bit
	}
	return CodeFromInt16(SampleToInt16(sample))
}

// CodeToInt16 is the inverse of CodeFromInt16, up to quantization
func CodeToInt16(code Sample) int16 {
	c := int32(code & MaxCode)
	// Round up so that CodeFromInt16 maps the result back to code
	return int16((c*65535+MaxCode-1)/MaxCode - 32768)
}

// CodeToPCM converts a converter code back to a 24-bit range PCM sample
func CodeToPCM(code Sample) int32 {
	return SampleFromInt16(CodeToInt16(code))
}

// CodesFromPCM converts a mono PCM slice into converter codes
func CodesFromPCM(dst []Sample, src []int32) []Sample {
	for _, s := range src {
		dst = append(dst, CodeFromPCM(s))
	}
	return dst
}

// MixToMono averages interleaved frames down to a single channel.
// Trailing samples that do not form a complete frame are dropped.
func MixToMono(samples []int32, channels int) []int32 {
	if channels <= 1 {
		return samples
	}

	frames := len(samples) / channels
	mono := make([]int32, frames)
	for i := 0; i < frames; i++ {
		var sum int64
		for ch := 0; ch < channels; ch++ {
			sum += int64(samples[i*channels+ch])
		}
		mono[i] = int32(sum / int64(channels))
	}
	return mono
}
