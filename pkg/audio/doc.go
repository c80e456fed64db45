// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, DAC Sample codes and sample conversion functions
// Package audio provides the sample types shared by the sound driver, the
// sample sources and the host outputs.
//
// Two sample domains exist:
//   - PCM: int32 samples left-justified in a 24-bit range, as decoded from files
//   - Sample: 12-bit converter codes carried in 16 bits, as consumed by the DAC
//
// Conversion from PCM to converter codes shifts the signed range up to an
// unsigned one and scales it to 0..MaxCode:
//
//	code := audio.CodeFromInt16(-32768) // 0
//	code = audio.CodeFromInt16(32767)   // 0xFFF
//
// Multi-channel PCM is averaged down to one channel with MixToMono, since the
// converter drives a single analog output.
package audio
