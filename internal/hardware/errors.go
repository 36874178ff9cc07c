// Package hardware owns the physical interfaces of the agents: an I2C bus
// bound to one device address, and a PWM-capable GPIO line.
//
// Handles are opened once at startup and held for the process lifetime.
package hardware

import "errors"

var (
	// ErrInit marks a failure to bring up the bus or PWM subsystem. It is
	// not transient; callers are expected to give up.
	ErrInit = errors.New("hardware: init failed")
	// ErrIO marks a failed transfer on an open handle. Recoverable.
	ErrIO = errors.New("hardware: io error")
	// ErrDutyRange is returned for a duty cycle outside 0..100.
	ErrDutyRange = errors.New("hardware: duty cycle out of range")
)
