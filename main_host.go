//go:build !tinygo

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/net/trace"

	"dotclock/app"
	"dotclock/hal"
	"dotclock/internal/buildinfo"
	"dotclock/internal/config"
	"dotclock/internal/debugsrv"
	"dotclock/internal/metrics"
)

var (
	configPath   = ""
	headless     = false
	headlessHz   = 250
	runTicks     = uint64(0)
	logLevel     = ""
	flashPath    = ""
	i2cBus       = ""
	serialPort   = ""
	serialBaud   = 0
	debugAddr    = ""
	startTime    = ""
	light        = 0
	ignoreStored = false
)

func init() {
	pflag.StringVarP(&configPath, "config", "c", configPath, "YAML config file (default: built-in)")
	pflag.BoolVar(&headless, "headless", headless, "run without a window")
	pflag.IntVar(&headlessHz, "hz", headlessHz, "tick batches per second in headless mode")
	pflag.Uint64Var(&runTicks, "ticks", runTicks, "stop after N milliseconds in headless mode (0 = run forever)")
	pflag.StringVar(&logLevel, "log-level", logLevel, "debug, info, warn or error")
	pflag.StringVar(&flashPath, "flash", flashPath, "file backing the settings flash")
	pflag.StringVar(&i2cBus, "i2c", i2cBus, "I2C bus with a real DS3231 (default: simulated)")
	pflag.StringVar(&serialPort, "serial", serialPort, `serial port for the remote protocol, "" for stdin or "none"`)
	pflag.IntVar(&serialBaud, "baud", serialBaud, "serial baud rate")
	pflag.StringVar(&debugAddr, "debug-addr", debugAddr, `debug HTTP address, "" to disable`)
	pflag.StringVar(&startTime, "start", startTime, "simulated RTC start time, RFC 3339 (default: now)")
	pflag.IntVar(&light, "light", light, "fixed light sensor reading, -1 follows the time of day")
	pflag.BoolVar(&ignoreStored, "ignore-stored", ignoreStored, "ignore settings saved in flash")
}

func main() {
	log.SetFlags(0)
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := pflag.CommandLine
	h := &cfg.Host
	if flags.Changed("headless") {
		h.Headless = headless
	}
	if flags.Changed("log-level") {
		h.LogLevel = logLevel
	}
	if flags.Changed("flash") {
		h.FlashPath = flashPath
	}
	if flags.Changed("i2c") {
		h.I2CBus = i2cBus
	}
	if flags.Changed("serial") {
		h.SerialPort = serialPort
	}
	if flags.Changed("baud") {
		h.SerialBaud = serialBaud
	}
	if flags.Changed("debug-addr") {
		h.DebugAddr = debugAddr
	}
	if flags.Changed("light") {
		h.Light = &light
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	events, err := cfg.CalendarEvents()
	if err != nil {
		return err
	}
	seeds, err := cfg.AlarmTimes()
	if err != nil {
		return err
	}

	var start time.Time
	if startTime != "" {
		if start, err = time.Parse(time.RFC3339, startTime); err != nil {
			return fmt.Errorf("--start: %w", err)
		}
	}

	h, err := hal.New(hal.HostConfig{
		LogLevel:   cfg.LogLevel(),
		FlashPath:  cfg.Host.FlashPath,
		I2CBus:     cfg.Host.I2CBus,
		Start:      start,
		SerialPort: cfg.Host.SerialPort,
		SerialBaud: cfg.Host.SerialBaud,
		Light:      *cfg.Host.Light,
		Supply:     cfg.Host.Supply,
	})
	if err != nil {
		return err
	}
	defer h.Close()
	logger := h.Slog()
	logger.Info("starting", "version", buildinfo.Short(), "commit", buildinfo.Commit, "built", buildinfo.Date)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	traceLog := trace.NewEventLog("clock", "core")
	defer traceLog.Finish()

	sys, err := app.New(h, app.Config{
		Settings:     settings,
		Events:       events,
		AlarmSeeds:   seeds,
		SeedAlarms:   h.RTC() != nil,
		IgnoreStored: ignoreStored,
		Metrics:      metrics.New(reg),
		Trace:        traceLog,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sysErr := make(chan error, 1)
	go func() { sysErr <- sys.Run(ctx) }()

	if cfg.Host.DebugAddr != "" {
		handler := debugsrv.Handler(debugsrv.Options{
			Panel: h.Panel(),
			Caption: func() string {
				return fmt.Sprintf("%s  %s  q%d", buildinfo.Short(), sys.Core.Now(), sys.Core.QueueLen())
			},
			Gatherer: reg,
			Recent:   sys.Log.Recent,
			Log:      logger,
		})
		go func() {
			if err := debugsrv.Serve(ctx, cfg.Host.DebugAddr, handler, logger); err != nil {
				logger.Error("debug server died", "err", err)
			}
		}()
	}

	step := func() error {
		select {
		case err := <-sysErr:
			if err == nil {
				err = errors.New("clock stopped")
			}
			return err
		default:
			return nil
		}
	}

	if cfg.Host.Headless {
		return hal.RunHeadless(ctx, h, step, hal.HeadlessConfig{Hz: headlessHz, Ticks: runTicks})
	}
	return hal.RunWindow(h, buildinfo.Title(), step)
}
