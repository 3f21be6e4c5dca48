// Package gpio drives the three fatigue indicator lines through an external
// GPIO utility such as libgpiod's gpioset.
package gpio

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"sync"

	"fatigue/internal/fatigue"
)

const (
	DefaultTool = "gpioset"
	DefaultChip = "gpiochip4"
)

// Lines holds the chip offsets of the three indicator lines.
type Lines struct {
	Low  int `yaml:"low"`
	Mid  int `yaml:"mid"`
	High int `yaml:"high"`
}

var DefaultLines = Lines{Low: 2, Mid: 3, High: 4}

// For returns the line asserted for level.
func (l Lines) For(level fatigue.Level) (int, bool) {
	switch level {
	case fatigue.Low:
		return l.Low, true
	case fatigue.Mid:
		return l.Mid, true
	case fatigue.High:
		return l.High, true
	}
	return 0, false
}

func (l Lines) All() []int {
	return []int{l.Low, l.Mid, l.High}
}

func (l Lines) Validate() error {
	for _, n := range l.All() {
		if n < 0 {
			return fmt.Errorf("negative line offset %d", n)
		}
	}
	if l.Low == l.Mid || l.Low == l.High || l.Mid == l.High {
		return fmt.Errorf("line offsets must be distinct: %d/%d/%d", l.Low, l.Mid, l.High)
	}
	return nil
}

// Opts configures an Actuator. Zero fields take the defaults.
type Opts struct {
	Tool   string
	Chip   string
	Lines  Lines
	Runner Runner
}

// Actuator owns the indicator lines. It is the only writer of their state.
type Actuator struct {
	tool  string
	chip  string
	lines Lines
	run   Runner

	mu    sync.Mutex
	state fatigue.Level
}

var _ fatigue.Actuator = (*Actuator)(nil)

func NewActuator(opts *Opts) (*Actuator, error) {
	var xopts Opts
	if opts != nil {
		xopts = *opts
	}
	if xopts.Tool == "" {
		xopts.Tool = DefaultTool
	}
	if xopts.Chip == "" {
		xopts.Chip = DefaultChip
	}
	if xopts.Lines == (Lines{}) {
		xopts.Lines = DefaultLines
	}
	if xopts.Runner == nil {
		xopts.Runner = ExecRunner{}
	}
	if err := xopts.Lines.Validate(); err != nil {
		return nil, err
	}

	return &Actuator{
		tool:  xopts.Tool,
		chip:  xopts.Chip,
		lines: xopts.Lines,
		run:   xopts.Runner,
		state: fatigue.Reset,
	}, nil
}

// Reset drives all three lines low.
func (a *Actuator) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, line := range a.lines.All() {
		if err := a.write(ctx, line, 0); err != nil {
			errs = append(errs, err)
		}
	}
	a.state = fatigue.Reset

	return errors.Join(errs...)
}

// Apply grades score and asserts the matching line after clearing the
// other two. All writes are attempted even when one fails; the failures are
// returned together.
func (a *Actuator) Apply(ctx context.Context, score int) (fatigue.Level, error) {
	level := fatigue.Grade(score)
	target, _ := a.lines.For(level)

	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for _, line := range a.lines.All() {
		if line == target {
			continue
		}
		if err := a.write(ctx, line, 0); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.write(ctx, target, 1); err != nil {
		errs = append(errs, err)
	}
	a.state = level

	return level, errors.Join(errs...)
}

// State is the last state entered by Reset or Apply.
func (a *Actuator) State() fatigue.Level {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Actuator) write(ctx context.Context, line, value int) error {
	arg := fmt.Sprintf("%d=%d", line, value)
	log.Debug("Set line", "tool", a.tool, "chip", a.chip, "line", line, "value", value)

	if err := a.run.Run(ctx, a.tool, a.chip, arg); err != nil {
		return fmt.Errorf("set %s line %d=%d: %w", a.chip, line, value, err)
	}
	return nil
}
