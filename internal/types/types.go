package types

import (
	"fmt"
	"time"
)

// Parameter names the physical quantity carried by a Reading.
type Parameter string

const (
	Temperature Parameter = "temperature"
	Humidity    Parameter = "humidity"
)

// Fan speed bounds, inclusive.
const (
	MinFanSpeed = 0
	MaxFanSpeed = 100
)

// Reading is the body pushed to the sensor endpoint.
type Reading struct {
	Parameter Parameter `json:"parameter"`
	Value     float64   `json:"value"`
}

// FanInstruction is the decoded answer of the device endpoint.
type FanInstruction struct {
	FanSpeed int `json:"fan_speed"`
}

// Validate reports whether the instruction may be applied to the fan.
func (f FanInstruction) Validate() error {
	if !ValidFanSpeed(f.FanSpeed) {
		return fmt.Errorf("fan_speed %d out of range [%d, %d]", f.FanSpeed, MinFanSpeed, MaxFanSpeed)
	}
	return nil
}

func ValidFanSpeed(v int) bool {
	return v >= MinFanSpeed && v <= MaxFanSpeed
}

// Telemetry represents a reading mirrored to MQTT
type Telemetry struct {
	SerialNumber string    `json:"serial_number"`
	Timestamp    time.Time `json:"timestamp"`
	Parameter    Parameter `json:"parameter"`
	Value        float64   `json:"value"`
}

// FanState represents the fan speed last applied by a device
type FanState struct {
	SerialNumber string    `json:"serial_number"`
	Timestamp    time.Time `json:"timestamp"`
	FanSpeed     int       `json:"fan_speed"`
}
