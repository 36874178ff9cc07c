package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"airsense-agents/internal/config"
	"airsense-agents/internal/hardware"
	"airsense-agents/internal/htu21d"
	"airsense-agents/internal/remote"
	"airsense-agents/internal/types"
	"airsense-agents/internal/utils"
)

// RegisterChannel is an open register-level handle to the sensor.
type RegisterChannel interface {
	htu21d.Registers
	Close() error
}

type SensorOptions struct {
	// OpenRegisters defaults to an I2C channel on cfg.I2CBus at cfg.SensorAddress.
	OpenRegisters func(cfg config.Config) (RegisterChannel, error)
	HTTPClient    *http.Client
	// Mirror defaults to the MQTT mirror when cfg.MQTTBroker is set.
	Mirror Mirror
	Logger *slog.Logger
}

func openI2C(cfg config.Config) (RegisterChannel, error) {
	return hardware.OpenI2C(cfg.I2CBus, cfg.SensorAddress)
}

// RunSensor opens the sensor once and then reads and pushes temperature and
// humidity every cfg.PollInterval until ctx is cancelled. A failure to open
// the sensor is returned before any network call is made.
func RunSensor(ctx context.Context, cfg config.Config, opts SensorOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	open := opts.OpenRegisters
	if open == nil {
		open = openI2C
	}

	regs, err := open(cfg)
	if err != nil {
		return fmt.Errorf("open sensor at %s: %w", utils.Hex2(byte(cfg.SensorAddress)), err)
	}
	defer func() {
		if err := regs.Close(); err != nil {
			logger.Error("close sensor", "error", err)
		}
	}()

	mirror := opts.Mirror
	if mirror == nil {
		var stop func()
		mirror, stop = startMirror(ctx, cfg, logger)
		defer stop()
	}

	a := &sensorAgent{
		dev:    htu21d.New(&tracedRegisters{regs: regs, logger: logger}),
		remote: remote.NewClient(cfg, opts.HTTPClient, logger),
		mirror: mirror,
		logger: logger,
	}

	logger.Info("sensor agent running",
		"sensor_url", cfg.SensorURL,
		"i2c_bus", cfg.I2CBus,
		"address", utils.Hex2(byte(cfg.SensorAddress)),
		"interval", cfg.PollInterval,
		"request_timeout", cfg.RequestTimeout,
	)
	return Loop{Interval: cfg.PollInterval, Tick: a.tick}.Run(ctx)
}

type sensorAgent struct {
	dev    *htu21d.Device
	remote *remote.Client
	mirror Mirror
	logger *slog.Logger
}

func (a *sensorAgent) tick(ctx context.Context) {
	a.report(ctx, types.Temperature, a.dev.ReadTemperature)
	a.report(ctx, types.Humidity, a.dev.ReadHumidity)
}

// report reads one parameter and pushes it. No reading means no push.
func (a *sensorAgent) report(ctx context.Context, p types.Parameter, read func(context.Context) (float64, error)) {
	v, err := read(ctx)
	if err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("sensor read failed", "parameter", p, "error", err)
		}
		return
	}

	r := types.Reading{Parameter: p, Value: v}
	if err := a.remote.Push(ctx, r); err != nil {
		if ctx.Err() == nil {
			a.logger.Warn("push failed", "parameter", p, "value", v, "error", err)
		}
		return
	}
	a.logger.Info("reading pushed", "parameter", p, "value", v)

	if err := a.mirror.PublishReading(r); err != nil {
		logMirrorError(a.logger, err, "parameter", p)
	}
}

// tracedRegisters logs every raw response at debug level.
type tracedRegisters struct {
	regs   htu21d.Registers
	logger *slog.Logger
}

func (t *tracedRegisters) ReadRegister(ctx context.Context, cmd byte) ([]byte, error) {
	b, err := t.regs.ReadRegister(ctx, cmd)
	if err == nil {
		t.logger.Debug("register read", "cmd", utils.Hex2(cmd), "data", utils.BytesToHex(b))
	}
	return b, err
}
