// Package app wires a Config into a runnable fatigue pipeline.
package app

import (
	"context"
	"fmt"
	"io"
	log "log/slog"

	"github.com/lmittmann/tint"

	"fatigue/internal/audio"
	"fatigue/internal/classifier"
	"fatigue/internal/config"
	"fatigue/internal/fatigue"
	"fatigue/internal/gpio"
	"fatigue/internal/notify"
	"fatigue/internal/proxy"
	"fatigue/internal/tts"
	"fatigue/pkg/protocol"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// SetupLogging installs a tint handler writing to w as the default logger.
func SetupLogging(w io.Writer, level string) {
	log.SetDefault(log.New(tint.NewHandler(w, &tint.Options{
		Level: logLevelMap[level],
	})))
}

// Appliance is a configured pipeline plus the resources it holds open.
type Appliance struct {
	Pipeline *fatigue.Pipeline
	Actuator *gpio.Actuator

	closers []func()
}

// Opts overrides the hardware New talks to. Nil fields use the real
// gpioset runner and NewSource.
type Opts struct {
	Runner     gpio.Runner
	OpenSource func(cfg *config.Config) (audio.Source, func(), error)
}

// New builds the pipeline described by cfg and clears the indicator lines
// before any audio device is opened, so a missing microphone still leaves
// the lines cleared. The caller must Close the returned Appliance.
func New(ctx context.Context, cfg *config.Config, opts *Opts) (*Appliance, error) {
	var xopts Opts
	if opts != nil {
		xopts = *opts
	}
	if xopts.OpenSource == nil {
		xopts.OpenSource = NewSource
	}

	a := &Appliance{}

	act, err := gpio.NewActuator(&gpio.Opts{
		Tool:   cfg.GPIO.Tool,
		Chip:   cfg.GPIO.Chip,
		Lines:  cfg.GPIO.Lines,
		Runner: xopts.Runner,
	})
	if err != nil {
		return nil, fmt.Errorf("gpio: %w", err)
	}
	a.Actuator = act

	cls, err := NewClassifier(cfg)
	if err != nil {
		return nil, err
	}

	notifiers, err := NewNotifiers(cfg)
	if err != nil {
		return nil, err
	}

	log.Debug("Clearing lines")
	if err := act.Reset(ctx); err != nil {
		return nil, &fatigue.StageError{Stage: fatigue.StageReset, Err: err}
	}

	src, closeSrc, err := xopts.OpenSource(cfg)
	if err != nil {
		return nil, &fatigue.StageError{Stage: fatigue.StageRecord, Err: err}
	}
	a.closers = append(a.closers, closeSrc)

	a.Pipeline = fatigue.NewPipeline(act, audio.NewRecorder(src, cfg.Audio), cls, cfg.Model, cfg.Output)
	a.Pipeline.Notifiers = notifiers
	return a, nil
}

// RunOnce performs a single cycle and returns the process exit code.
func RunOnce(ctx context.Context, cfg *config.Config, opts *Opts) (fatigue.Verdict, int) {
	a, err := New(ctx, cfg, opts)
	if err != nil {
		log.Error("Failed to set up", "err", err)
		return fatigue.Verdict{}, fatigue.ExitCode(err)
	}
	defer a.Close()

	v, err := a.Pipeline.Run(ctx)
	if err != nil {
		log.Error("Run failed", "err", err)
		return fatigue.Verdict{}, fatigue.ExitCode(err)
	}
	return v, fatigue.ExitOK
}

func (a *Appliance) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewSource returns the replay source when an input file is configured and
// the default microphone otherwise, optionally wrapped in a ducker.
func NewSource(cfg *config.Config) (audio.Source, func(), error) {
	var (
		src     audio.Source
		closeFn = func() {}
	)

	if cfg.Input != "" {
		log.Info("Replaying instead of recording", "input", cfg.Input)
		src = &audio.Replay{Input: cfg.Input}
	} else {
		dev := audio.NewDevice()
		if err := dev.Init(); err != nil {
			return nil, nil, err
		}
		src = dev
		closeFn = dev.Close
	}

	if cfg.Duck.Enabled {
		src = &audio.DuckedSource{
			Source: src,
			Ducker: audio.NewDucker(cfg.Duck.Self, cfg.Duck.MinVolume),
			Factor: cfg.Duck.Factor,
			Fade:   cfg.Duck.Fade,
		}
	}
	return src, closeFn, nil
}

func NewClassifier(cfg *config.Config) (fatigue.Classifier, error) {
	c := cfg.Classifier

	switch c.Kind {
	case config.ClassifierCommand:
		return &classifier.Command{
			Path:       c.Command,
			Args:       c.Args,
			ResultPath: c.ResultPath,
			Timeout:    c.Timeout,
		}, nil

	case config.ClassifierHTTP:
		h := classifier.NewHTTP(c.URL, nil, c.Timeout)
		if c.Proxy != "" {
			hc, err := proxy.NewSocksClient(c.Proxy, c.Timeout)
			if err != nil {
				return nil, fmt.Errorf("proxy %s: %w", c.Proxy, err)
			}
			h = classifier.NewHTTP(c.URL, hc, c.Timeout)
			log.Debug("Classifier goes through proxy", "proxy", c.Proxy)
		}
		h.ResultPath = c.ResultPath
		return h, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", c.Kind)
}

func NewNotifiers(cfg *config.Config) ([]fatigue.Notifier, error) {
	var ns []fatigue.Notifier

	if cfg.Notify.Sound != "" {
		level, err := fatigue.ParseLevel(cfg.Notify.MinLevel)
		if err != nil {
			return nil, err
		}
		ns = append(ns, &notify.Sound{Path: cfg.Notify.Sound, MinLevel: level})
	}
	if cfg.Notify.Speak {
		ns = append(ns, &tts.Speaker{Language: tts.DefaultLanguage})
	}
	if cfg.Hub.URL != "" {
		ns = append(ns, &protocol.Reporter{
			URL:     cfg.Hub.URL,
			Shard:   cfg.Hub.Shard,
			Timeout: cfg.Hub.Timeout,
		})
	}
	return ns, nil
}
