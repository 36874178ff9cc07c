// Package htu21d decodes temperature and relative humidity from an
// HTU21D-compatible sensor (HTU21D, SHT21, Si7021).
//
// Each measurement is a single "no hold master" command followed by a
// 3-byte response: MSB, LSB, CRC. The CRC byte is ignored.
package htu21d

import (
	"context"
	"errors"
	"fmt"
)

// I2C address.
const Address = 0x40

// Measurement commands.
const (
	CmdReadTemperature = 0xF3
	CmdReadHumidity    = 0xF5
)

const responseLen = 3

// ErrShortRead is returned when the response is not exactly three bytes.
var ErrShortRead = errors.New("htu21d: short read")

// Registers is the register access the device needs. *hardware.I2CChannel
// satisfies it.
type Registers interface {
	ReadRegister(ctx context.Context, cmd byte) ([]byte, error)
}

// Device reads calibrated values from the sensor.
type Device struct {
	regs Registers
}

func New(regs Registers) *Device {
	return &Device{regs: regs}
}

// ReadTemperature returns degrees Celsius. Any error means there is no
// reading this tick.
func (d *Device) ReadTemperature(ctx context.Context) (float64, error) {
	raw, err := d.readRaw(ctx, CmdReadTemperature)
	if err != nil {
		return 0, fmt.Errorf("read temperature: %w", err)
	}
	return Celsius(raw), nil
}

// ReadHumidity returns relative humidity in percent, clamped to 0..100.
func (d *Device) ReadHumidity(ctx context.Context) (float64, error) {
	raw, err := d.readRaw(ctx, CmdReadHumidity)
	if err != nil {
		return 0, fmt.Errorf("read humidity: %w", err)
	}
	return RelativeHumidity(raw), nil
}

func (d *Device) readRaw(ctx context.Context, cmd byte) (uint16, error) {
	b, err := d.regs.ReadRegister(ctx, cmd)
	if err != nil {
		return 0, err
	}
	return RawValue(b)
}

// RawValue extracts the big-endian measurement from a response.
func RawValue(b []byte) (uint16, error) {
	if len(b) != responseLen {
		return 0, fmt.Errorf("%w: got %d bytes, want %d", ErrShortRead, len(b), responseLen)
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// Celsius converts a raw temperature sample.
func Celsius(raw uint16) float64 {
	return -46.85 + 175.72*float64(raw)/65536.0
}

// RelativeHumidity converts a raw humidity sample.
func RelativeHumidity(raw uint16) float64 {
	return clamp(-6.0+125.0*float64(raw)/65536.0, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
