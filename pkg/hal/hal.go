// ABOUTME: Hardware abstraction for the DAC output path
// ABOUTME: Clock, pacing timer, converter, transfer engine and interrupt line
// Package hal declares the peripherals the sound driver programs.
//
// Configuration calls are fire-and-forget: real peripherals accept any write,
// so none of these methods return errors.
package hal

import "github.com/Sendspin/sendspin-dac/pkg/audio"

// Clock reports the current CPU clock
type Clock interface {
	CPUHz() uint32
}

// PacingTimer is a waveform-mode timer whose output triggers conversions.
// One trigger is produced per period of compare register C; compare register A
// sets the output, so A < C gives a near-square wave.
type PacingTimer interface {
	// Init puts the timer in up-count waveform mode with reset on compare C
	Init()
	SetCompare(a, c uint32)
	Start()
}

// Converter is the digital-to-analog output stage
type Converter interface {
	// Init resets the converter and selects one half-word channel triggered
	// by the pacing timer
	Init()
}

// TransferEngine moves samples from memory into the converter, one sample per
// trigger, and raises a completion signal when its remaining count is zero.
type TransferEngine interface {
	// Init enables memory-to-converter transfers
	Init()

	// Launch programs the engine with a physically contiguous span and
	// starts it. The span must stay valid until completion.
	Launch(chunk []audio.Sample)

	// Abort drops any programmed transfer and zeroes the remaining count
	Abort()

	EnableCompletion()
	DisableCompletion()

	// LevelTriggered reports whether enabling the completion signal while
	// the remaining count is zero raises it immediately
	LevelTriggered() bool
}

// CompletionHandler runs in the completion context. It receives the engine
// it serves; handlers must program the engine through that value only.
type CompletionHandler func(engine TransferEngine)

// InterruptLine is the dispatcher-level line the completion signal is
// routed through. Handlers bound to a line never run concurrently with each
// other and are not re-entered.
type InterruptLine interface {
	Attach(handler CompletionHandler)
	ClearPending()
	Enable()
	Disable()
}
