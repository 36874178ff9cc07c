package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Compiled-in device settings. The server address, polling cadence and
// identity tokens are fixed per build.
const (
	ServerBaseURL = "https://airsense.yooud.org/api"

	SensorSerialNumber = "78e7f5626b3905b939c1"
	FanSerialNumber    = "0a61df1888991de8a0be"

	DefaultPollInterval   = 2000 * time.Millisecond
	DefaultRequestTimeout = 5 * time.Second

	HTU21DAddress = 0x40

	// FanPin is BCM GPIO13, wiringPi pin 23.
	FanPin          = "GPIO13"
	FanPWMFrequency = 100 * physic.Hertz
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	SerialNumber   string
	SensorURL      string
	DeviceURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration

	I2CBus        string
	SensorAddress uint16

	FanPin       string
	FanFrequency physic.Frequency

	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
}

// MQTTEnabled reports whether readings are mirrored to an MQTT broker.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// LoadSensorFromEnv builds the sensor agent configuration.
func LoadSensorFromEnv() (Config, error) {
	cfg, err := loadCommon("airsense-sensor")
	if err != nil {
		return Config{}, err
	}
	cfg.SerialNumber = SensorSerialNumber
	cfg.SensorAddress = HTU21DAddress
	cfg.I2CBus = strings.TrimSpace(os.Getenv("I2C_BUS"))
	return cfg, nil
}

// LoadFanFromEnv builds the fan agent configuration.
func LoadFanFromEnv() (Config, error) {
	cfg, err := loadCommon("airsense-fan")
	if err != nil {
		return Config{}, err
	}
	cfg.SerialNumber = FanSerialNumber
	cfg.FanPin = FanPin
	cfg.FanFrequency = FanPWMFrequency
	return cfg, nil
}

// loadEnvAndLevel reads APP_ENV and LOG_LEVEL, the only settings every
// binary shares.
func loadEnvAndLevel() (string, slog.Level, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return "", slog.LevelInfo, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return "", slog.LevelInfo, err
	}
	return appEnv, level, nil
}

func loadCommon(defaultClientID string) (Config, error) {
	appEnv, level, err := loadEnvAndLevel()
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))

	mqttPortStr := strings.TrimSpace(os.Getenv("MQTT_PORT"))
	if mqttPortStr == "" {
		mqttPortStr = "1883"
	}
	mqttPort, err := strconv.Atoi(mqttPortStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", mqttPortStr, err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT must be in 1..65535, got %d", mqttPort)
	}

	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = defaultClientID
	}

	return Config{
		AppEnv:         appEnv,
		LogLevel:       level,
		SensorURL:      ServerBaseURL + "/sensor",
		DeviceURL:      ServerBaseURL + "/device",
		PollInterval:   DefaultPollInterval,
		RequestTimeout: DefaultRequestTimeout,
		MQTTBroker:     mqttBroker,
		MQTTPort:       mqttPort,
		MQTTClientID:   mqttClientID,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
