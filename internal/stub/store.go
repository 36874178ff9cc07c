// Package stub is a bench stand-in for the airsense backend. It accepts
// sensor pushes and serves fan instructions so the agents can be exercised
// without the real service.
package stub

import (
	"fmt"
	"sync"
	"time"

	"airsense-agents/internal/types"
)

const maxRecords = 1000

// Record is one accepted sensor push.
type Record struct {
	SerialNumber string          `json:"serial_number"`
	ReceivedAt   time.Time       `json:"received_at"`
	Parameter    types.Parameter `json:"parameter"`
	Value        float64         `json:"value"`
}

// Store keeps the most recent pushes in memory and the fan speed served to
// devices.
type Store struct {
	mu       sync.RWMutex
	records  []Record
	fanSpeed int
}

func NewStore(fanSpeed int) *Store {
	return &Store{fanSpeed: fanSpeed}
}

func (s *Store) Add(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	if len(s.records) > maxRecords {
		s.records = append([]Record(nil), s.records[len(s.records)-maxRecords:]...)
	}
}

// Records returns a copy of the stored pushes, oldest first.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

func (s *Store) FanSpeed() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fanSpeed
}

func (s *Store) SetFanSpeed(v int) error {
	if !types.ValidFanSpeed(v) {
		return fmt.Errorf("fan_speed %d out of range [%d, %d]", v, types.MinFanSpeed, types.MaxFanSpeed)
	}
	s.mu.Lock()
	s.fanSpeed = v
	s.mu.Unlock()
	return nil
}
