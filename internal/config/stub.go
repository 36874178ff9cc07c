package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// StubConfig configures the bench stub server. It reads no MQTT settings.
type StubConfig struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string
	FanSpeed int
}

func LoadStubFromEnv() (StubConfig, error) {
	appEnv, level, err := loadEnvAndLevel()
	if err != nil {
		return StubConfig{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	fanSpeedStr := strings.TrimSpace(os.Getenv("STUB_FAN_SPEED"))
	if fanSpeedStr == "" {
		fanSpeedStr = "0"
	}
	fanSpeed, err := strconv.Atoi(fanSpeedStr)
	if err != nil {
		return StubConfig{}, fmt.Errorf("invalid STUB_FAN_SPEED %q: %w", fanSpeedStr, err)
	}
	if fanSpeed < 0 || fanSpeed > 100 {
		return StubConfig{}, fmt.Errorf("STUB_FAN_SPEED must be in 0..100, got %d", fanSpeed)
	}

	return StubConfig{
		AppEnv:   appEnv,
		LogLevel: level,
		HTTPAddr: httpAddr,
		FanSpeed: fanSpeed,
	}, nil
}

// Logging returns the subset of Config the logger needs.
func (c StubConfig) Logging() Config {
	return Config{AppEnv: c.AppEnv, LogLevel: c.LogLevel}
}
