package app

import (
	"context"
	"errors"
	"log/slog"

	"airsense-agents/internal/config"
	"airsense-agents/internal/mqtt"
	"airsense-agents/internal/types"
)

// Mirror receives a copy of what the agent reports or applies. Failures are
// logged and never affect the HTTP round trip.
type Mirror interface {
	PublishReading(r types.Reading) error
	PublishFanSpeed(speed int) error
}

type noopMirror struct{}

func (noopMirror) PublishReading(types.Reading) error { return nil }
func (noopMirror) PublishFanSpeed(int) error         { return nil }

// startMirror connects the MQTT mirror in the background when a broker is
// configured. The returned stop func must be called on shutdown.
func startMirror(ctx context.Context, cfg config.Config, logger *slog.Logger) (Mirror, func()) {
	if !cfg.MQTTEnabled() {
		return noopMirror{}, func() {}
	}

	logger.Info("mqtt mirror enabled",
		"mqtt_broker", cfg.MQTTBroker,
		"mqtt_port", cfg.MQTTPort,
		"mqtt_client_id", cfg.MQTTClientID,
	)
	client := mqtt.NewClient(cfg, logger)
	go func() {
		if err := client.Connect(ctx); err != nil {
			logger.Warn("mqtt connect failed; continuing without mirror", "error", err)
		}
	}()
	return client, client.Disconnect
}

// logMirrorError reports a failed publish. A broker that is still
// connecting only rates a debug line.
func logMirrorError(logger *slog.Logger, err error, args ...any) {
	args = append(args, "error", err)
	if errors.Is(err, mqtt.ErrNotConnected) {
		logger.Debug("mqtt mirror not connected", args...)
		return
	}
	logger.Warn("mqtt mirror publish failed", args...)
}
