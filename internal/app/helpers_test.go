package app

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"airsense-agents/internal/config"
	"airsense-agents/internal/types"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu    sync.Mutex
	attrs []map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := make(map[string]slog.Value)
	m["msg"] = slog.StringValue(r.Message)
	m["level"] = slog.StringValue(r.Level.String())
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.attrs = append(h.attrs, m)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(name string) slog.Handler { return h }

func (h *captureHandler) recordsFor(msg string) []map[string]slog.Value {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []map[string]slog.Value
	for _, m := range h.attrs {
		if m["msg"].String() == msg {
			out = append(out, m)
		}
	}
	return out
}

type recordingMirror struct {
	mu       sync.Mutex
	readings []types.Reading
	speeds   []int
}

func (m *recordingMirror) PublishReading(r types.Reading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readings = append(m.readings, r)
	return nil
}

func (m *recordingMirror) PublishFanSpeed(speed int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speeds = append(m.speeds, speed)
	return nil
}

func testConfig(serial, sensorURL, deviceURL string) config.Config {
	return config.Config{
		AppEnv:         "dev",
		LogLevel:       slog.LevelDebug,
		SerialNumber:   serial,
		SensorURL:      sensorURL,
		DeviceURL:      deviceURL,
		PollInterval:   time.Hour,
		RequestTimeout: 2 * time.Second,
		SensorAddress:  config.HTU21DAddress,
		FanPin:         config.FanPin,
		FanFrequency:   config.FanPWMFrequency,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
