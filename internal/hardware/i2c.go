package hardware

import (
	"context"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
)

const (
	// SettleDelay is the conversion time between issuing a command and
	// reading the result back.
	SettleDelay = 50 * time.Millisecond
	// ResponseLen is the size of every register response.
	ResponseLen = 3
)

// The channel is written against the TinyGo drivers bus contract so the
// same code runs over periph on Linux and over machine.I2C on a board.
var _ drivers.I2C = i2c.Bus(nil)

// I2CChannel issues single-byte commands to one device on an I2C bus.
// Not safe for concurrent use; the poll loop serialises access.
type I2CChannel struct {
	bus    drivers.I2C
	closer io.Closer
	addr   uint16
	settle time.Duration
}

// NewI2CChannel binds an already opened bus to a device address.
func NewI2CChannel(bus drivers.I2C, addr uint16) *I2CChannel {
	return &I2CChannel{
		bus:    bus,
		addr:   addr,
		settle: SettleDelay,
	}
}

// OpenI2C initialises the host drivers and opens busName ("" selects the
// first available bus, usually /dev/i2c-1).
func OpenI2C(busName string, addr uint16) (*I2CChannel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%w: host init: %v", ErrInit, err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("%w: open i2c bus %q: %v", ErrInit, busName, err)
	}
	c := NewI2CChannel(bus, addr)
	c.closer = bus
	return c, nil
}

// Addr returns the bound device address.
func (c *I2CChannel) Addr() uint16 { return c.addr }

// ReadRegister writes cmd, waits for the device to finish converting and
// reads ResponseLen bytes back.
func (c *I2CChannel) ReadRegister(ctx context.Context, cmd byte) ([]byte, error) {
	if err := c.bus.Tx(c.addr, []byte{cmd}, nil); err != nil {
		return nil, fmt.Errorf("%w: write command 0x%02X: %v", ErrIO, cmd, err)
	}

	if c.settle > 0 {
		t := time.NewTimer(c.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	buf := make([]byte, ResponseLen)
	if err := c.bus.Tx(c.addr, nil, buf); err != nil {
		return nil, fmt.Errorf("%w: read response to 0x%02X: %v", ErrIO, cmd, err)
	}
	return buf, nil
}

// Close releases the bus if this channel opened it.
func (c *I2CChannel) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
