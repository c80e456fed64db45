// ABOUTME: Pacing timer comparator calculation
// ABOUTME: Derives compare values from the CPU clock and output sample rate
package sound

import (
	"errors"
	"fmt"
)

// ErrInvalidFrequency is returned for sample rates the timer cannot produce
var ErrInvalidFrequency = errors.New("invalid output frequency")

// Dividers returns the comparator values that make the pacing timer trigger
// at hz. The timer counts at half the CPU clock; compare A sets the trigger
// output and compare C clears it and restarts the count.
func Dividers(cpuHz, hz uint32) (a, c uint32, err error) {
	if hz == 0 {
		return 0, 0, fmt.Errorf("%w: 0 Hz", ErrInvalidFrequency)
	}

	divider := cpuHz / hz / 2
	if divider == 0 {
		return 0, 0, fmt.Errorf("%w: %d Hz exceeds half the %d Hz clock", ErrInvalidFrequency, hz, cpuHz)
	}

	return divider, divider + 1, nil
}
