// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Streams across chunk boundaries using linear interpolation
package resample

import "math"

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // read position in frames, relative to lastFrame
	lastFrame  []int32 // final input frame of the previous chunk
	primed     bool
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]int32, channels),
	}
}

// Resample converts input samples to output sample rate using linear interpolation
// input: interleaved samples at inputRate
// output: interleaved samples at outputRate
//
// output should hold OutputSamplesNeeded(len(input)) samples; input that
// does not fit is dropped.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}
	outputFrames := len(output) / r.channels

	// Stream frame 0 is the carried frame once primed
	offset := 0
	if r.primed {
		offset = 1
	}
	total := inputFrames + offset
	frame := func(i, ch int) int32 {
		if i < offset {
			return r.lastFrame[ch]
		}
		return input[(i-offset)*r.channels+ch]
	}

	outIdx := 0
	for outIdx < outputFrames {
		idx := int(r.position)
		if idx+1 >= total {
			break
		}

		frac := r.position - float64(idx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := frame(idx, ch)
			s2 := frame(idx+1, ch)
			output[outIdx*r.channels+ch] = int32(math.Round(float64(s1)*(1.0-frac) + float64(s2)*frac))
		}

		outIdx++
		r.position += r.ratio
	}

	// Re-anchor on the last input frame
	r.position -= float64(total - 1)
	if r.position < 0 {
		r.position = 0
	}
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.primed = true

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0.0
	r.primed = false
	for i := range r.lastFrame {
		r.lastFrame[i] = 0
	}
}

// Ratio returns input frames consumed per output frame
func (r *Resampler) Ratio() float64 { return r.ratio }

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples/r.channels + 1
	outputFrames := int(float64(inputFrames)/r.ratio) + 1
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}
