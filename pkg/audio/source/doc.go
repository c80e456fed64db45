// ABOUTME: Audio sample sources for the DAC driver
// ABOUTME: Files, converter tables and generated tones as interleaved PCM
// Package source provides PCM sample sources to feed the sound driver.
//
// Every source yields interleaved int32 samples in the 24-bit range at its
// native rate and channel count. Sources end with io.EOF; wrap them with Loop
// to repeat forever, the way the firmware replays its sample table.
//
// Example:
//
//	src, err := source.Open("clip.wav", source.Options{Loop: true})
//	if err != nil {
//		return err
//	}
//	defer src.Close()
package source
