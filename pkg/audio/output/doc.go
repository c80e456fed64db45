// ABOUTME: Audio output package for the simulated DAC's analog signal
// ABOUTME: Provides the Output interface with speaker, WAV capture and null sinks
// Package output provides audio playback interfaces.
//
// Outputs receive PCM in the 24-bit range. The speaker output plays through
// oto; Capture records a WAV file; Null discards and counts.
//
// Example:
//
//	out := output.NewOto()
//	err := out.Open(16000, 1)
//	err = out.Write(samples)
package output
