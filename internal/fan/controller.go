package fan

import (
	"errors"
	"fmt"

	"airsense-agents/internal/types"
)

// ErrInvalidSpeed is returned for an instruction outside 0..100. Nothing
// is written in that case.
var ErrInvalidSpeed = errors.New("fan: invalid speed")

// DutyWriter is the PWM write primitive. *hardware.PWMChannel satisfies it.
type DutyWriter interface {
	WriteDutyCycle(percent int) error
}

// Controller applies fan instructions to a PWM channel and remembers the
// last speed that was written successfully.
type Controller struct {
	pwm     DutyWriter
	current int
	applied bool
}

func NewController(pwm DutyWriter) *Controller {
	return &Controller{pwm: pwm}
}

// Apply writes the instruction's speed verbatim as the duty cycle.
func (c *Controller) Apply(in types.FanInstruction) error {
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, err)
	}
	if err := c.pwm.WriteDutyCycle(in.FanSpeed); err != nil {
		return fmt.Errorf("apply fan speed %d: %w", in.FanSpeed, err)
	}
	c.current = in.FanSpeed
	c.applied = true
	return nil
}

// Current returns the last applied speed; ok is false until the first
// successful Apply.
func (c *Controller) Current() (speed int, ok bool) {
	return c.current, c.applied
}
