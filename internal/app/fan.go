package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"airsense-agents/internal/config"
	"airsense-agents/internal/fan"
	"airsense-agents/internal/hardware"
	"airsense-agents/internal/remote"
)

// PWMChannel is an open duty-cycle handle to the fan.
type PWMChannel interface {
	fan.DutyWriter
	Close() error
}

type FanOptions struct {
	// OpenPWM defaults to a periph.io PWM pin named cfg.FanPin.
	OpenPWM    func(cfg config.Config) (PWMChannel, error)
	HTTPClient *http.Client
	// Mirror defaults to the MQTT mirror when cfg.MQTTBroker is set.
	Mirror Mirror
	Logger *slog.Logger
}

func openPWM(cfg config.Config) (PWMChannel, error) {
	return hardware.OpenPWM(cfg.FanPin, cfg.FanFrequency)
}

// RunFan opens the PWM line once and then pulls and applies the fan
// instruction every cfg.PollInterval until ctx is cancelled.
func RunFan(ctx context.Context, cfg config.Config, opts FanOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	open := opts.OpenPWM
	if open == nil {
		open = openPWM
	}

	pwm, err := open(cfg)
	if err != nil {
		return fmt.Errorf("open fan pwm on %s: %w", cfg.FanPin, err)
	}
	defer func() {
		if err := pwm.Close(); err != nil {
			logger.Error("close fan pwm", "error", err)
		}
	}()

	mirror := opts.Mirror
	if mirror == nil {
		var stop func()
		mirror, stop = startMirror(ctx, cfg, logger)
		defer stop()
	}

	a := &fanAgent{
		ctrl:   fan.NewController(pwm),
		remote: remote.NewClient(cfg, opts.HTTPClient, logger),
		mirror: mirror,
		logger: logger,
	}

	logger.Info("fan agent running",
		"device_url", cfg.DeviceURL,
		"pin", cfg.FanPin,
		"pwm_frequency", cfg.FanFrequency.String(),
		"interval", cfg.PollInterval,
		"request_timeout", cfg.RequestTimeout,
	)
	return Loop{Interval: cfg.PollInterval, Tick: a.tick}.Run(ctx)
}

type fanAgent struct {
	ctrl   *fan.Controller
	remote *remote.Client
	mirror Mirror
	logger *slog.Logger
}

func (a *fanAgent) tick(ctx context.Context) {
	in, err := a.remote.Pull(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn(pullFailureMessage(err), "error", err)
		}
		return
	}

	if err := a.ctrl.Apply(in); err != nil {
		a.logger.Warn("fan speed not applied", "fan_speed", in.FanSpeed, "error", err)
		return
	}
	a.logger.Info("fan speed set", "fan_speed", in.FanSpeed)

	if err := a.mirror.PublishFanSpeed(in.FanSpeed); err != nil {
		logMirrorError(a.logger, err, "fan_speed", in.FanSpeed)
	}
}

// pullFailureMessage names the failure kind so transport trouble can be
// told apart from a bad payload in the log.
func pullFailureMessage(err error) string {
	switch {
	case errors.Is(err, remote.ErrTransport):
		return "fan instruction transport error"
	case errors.Is(err, remote.ErrMalformed):
		return "fan instruction malformed"
	case errors.Is(err, remote.ErrMissingField):
		return "fan instruction missing fan_speed"
	case errors.Is(err, remote.ErrNotInteger):
		return "fan instruction not an integer"
	case errors.Is(err, remote.ErrOutOfRange):
		return "fan instruction out of range"
	default:
		return "fan instruction failed"
	}
}
