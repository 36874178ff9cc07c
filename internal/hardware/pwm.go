package hardware

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// PWMPin is the part of gpio.PinIO the fan channel drives.
type PWMPin interface {
	PWM(duty gpio.Duty, f physic.Frequency) error
}

// PWMChannel drives a GPIO line with a 0..100 % duty cycle.
type PWMChannel struct {
	pin  PWMPin
	name string
	freq physic.Frequency
}

// NewPWMChannel wraps an already resolved pin running at freq.
func NewPWMChannel(pin PWMPin, name string, freq physic.Frequency) *PWMChannel {
	return &PWMChannel{pin: pin, name: name, freq: freq}
}

// OpenPWM initialises the host drivers, resolves the pin by name and starts
// it at 0 % duty.
func OpenPWM(pinName string, freq physic.Frequency) (*PWMChannel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrInit, err)
	}
	p := gpioreg.ByName(pinName)
	if p == nil {
		return nil, fmt.Errorf("%w: unknown gpio %q", ErrInit, pinName)
	}
	c := NewPWMChannel(p, pinName, freq)
	if err := c.WriteDutyCycle(0); err != nil {
		return nil, fmt.Errorf("%w: start pwm on %s: %v", ErrInit, pinName, err)
	}
	return c, nil
}

// Name returns the pin name the channel was opened with.
func (c *PWMChannel) Name() string { return c.name }

// WriteDutyCycle sets the duty cycle in percent. There is no read-back.
func (c *PWMChannel) WriteDutyCycle(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: %d", ErrDutyRange, percent)
	}
	if err := c.pin.PWM(DutyFromPercent(percent), c.freq); err != nil {
		return fmt.Errorf("%w: pwm %s: %v", ErrIO, c.name, err)
	}
	return nil
}

// Close halts the pin when the backend supports it.
func (c *PWMChannel) Close() error {
	if h, ok := c.pin.(interface{ Halt() error }); ok {
		return h.Halt()
	}
	return nil
}

// DutyFromPercent maps 0..100 onto 0..gpio.DutyMax.
func DutyFromPercent(percent int) gpio.Duty {
	return gpio.Duty(int64(gpio.DutyMax) * int64(percent) / 100)
}
