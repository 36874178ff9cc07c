package hardware

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

type fakePin struct {
	duties []gpio.Duty
	freqs  []physic.Frequency
	err    error
	halted bool
}

func (p *fakePin) PWM(duty gpio.Duty, f physic.Frequency) error {
	if p.err != nil {
		return p.err
	}
	p.duties = append(p.duties, duty)
	p.freqs = append(p.freqs, f)
	return nil
}

func (p *fakePin) Halt() error {
	p.halted = true
	return nil
}

func TestDutyFromPercent(t *testing.T) {
	tests := []struct {
		percent int
		want    gpio.Duty
	}{
		{0, 0},
		{50, gpio.DutyMax / 2},
		{100, gpio.DutyMax},
	}
	for _, tt := range tests {
		if got := DutyFromPercent(tt.percent); got != tt.want {
			t.Errorf("DutyFromPercent(%d) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestPWMChannel_WriteDutyCycle(t *testing.T) {
	pin := &fakePin{}
	c := NewPWMChannel(pin, "GPIO13", 100*physic.Hertz)

	for _, p := range []int{0, 55, 100} {
		if err := c.WriteDutyCycle(p); err != nil {
			t.Fatalf("WriteDutyCycle(%d) = %v", p, err)
		}
	}
	if len(pin.duties) != 3 {
		t.Fatalf("pwm calls = %d, want 3", len(pin.duties))
	}
	if pin.duties[1] != DutyFromPercent(55) {
		t.Errorf("duty = %v, want %v", pin.duties[1], DutyFromPercent(55))
	}
	for _, f := range pin.freqs {
		if f != 100*physic.Hertz {
			t.Errorf("freq = %v, want 100Hz", f)
		}
	}
}

func TestPWMChannel_WriteDutyCycle_Rejects(t *testing.T) {
	pin := &fakePin{}
	c := NewPWMChannel(pin, "GPIO13", 100*physic.Hertz)

	for _, p := range []int{-1, 101} {
		if err := c.WriteDutyCycle(p); !errors.Is(err, ErrDutyRange) {
			t.Errorf("WriteDutyCycle(%d) = %v, want ErrDutyRange", p, err)
		}
	}
	if len(pin.duties) != 0 {
		t.Errorf("pin touched %d times for out-of-range duty", len(pin.duties))
	}
}

func TestPWMChannel_PinError(t *testing.T) {
	pin := &fakePin{err: errors.New("not pwm capable")}
	c := NewPWMChannel(pin, "GPIO4", 100*physic.Hertz)

	if err := c.WriteDutyCycle(10); !errors.Is(err, ErrIO) {
		t.Fatalf("WriteDutyCycle() = %v, want ErrIO", err)
	}
}

func TestPWMChannel_Close(t *testing.T) {
	pin := &fakePin{}
	c := NewPWMChannel(pin, "GPIO13", 100*physic.Hertz)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if !pin.halted {
		t.Error("pin not halted")
	}
	if c.Name() != "GPIO13" {
		t.Errorf("Name() = %q", c.Name())
	}
}
