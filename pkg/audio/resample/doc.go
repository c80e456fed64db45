// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts sources to the rate the DAC is paced at
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates. The
// resampler keeps the last frame of each chunk so consecutive chunks form
// one continuous stream.
//
// Example:
//
//	r := resample.New(44100, 16000, 1)
//	n := r.Resample(inputSamples, outputSamples)
//
//	// or wrap a whole source
//	src = resample.NewSource(src, 16000)
package resample
