package app

import (
	"context"
	"fmt"
	log "log/slog"
	"sync"

	"fatigue/internal/fatigue"
	"fatigue/internal/ipc"
)

type runner interface {
	Run(ctx context.Context) (fatigue.Verdict, error)
}

type stater interface {
	fatigue.Actuator
	State() fatigue.Level
}

// Daemon serves control commands. Cycles never overlap: the audio device
// and the indicator lines have a single owner.
type Daemon struct {
	ctx      context.Context
	pipeline runner
	act      stater

	// mu is held for a whole cycle; lastMu only guards last so status
	// answers while a cycle runs.
	mu     sync.Mutex
	lastMu sync.Mutex
	last   *fatigue.Verdict
}

func NewDaemon(ctx context.Context, p runner, act stater) *Daemon {
	return &Daemon{ctx: ctx, pipeline: p, act: act}
}

var _ ipc.Handler = (*Daemon)(nil).Handle

func (d *Daemon) Handle(msg ipc.ControlMessage) ipc.ControlReply {
	switch msg.Cmd {
	case ipc.CmdTrigger:
		return d.trigger()
	case ipc.CmdReset:
		return d.reset()
	case ipc.CmdStatus:
		return d.status()
	}
	log.Warn("Unknown command", "cmd", msg.Cmd)
	return ipc.ControlReply{Error: fmt.Sprintf("unknown command %q", msg.Cmd), Code: fatigue.ExitFailure}
}

func (d *Daemon) trigger() ipc.ControlReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	log.Info("Cycle triggered")
	v, err := d.pipeline.Run(d.ctx)
	if err != nil {
		log.Error("Cycle failed", "err", err)
		return ipc.ControlReply{Error: err.Error(), Code: fatigue.ExitCode(err)}
	}
	d.lastMu.Lock()
	d.last = &v
	d.lastMu.Unlock()
	return ipc.ControlReply{OK: true, Message: v.String()}
}

func (d *Daemon) reset() ipc.ControlReply {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.act.Reset(d.ctx); err != nil {
		err = &fatigue.StageError{Stage: fatigue.StageReset, Err: err}
		return ipc.ControlReply{Error: err.Error(), Code: fatigue.ExitCode(err)}
	}
	return ipc.ControlReply{OK: true, Message: fatigue.Reset.Label()}
}

func (d *Daemon) status() ipc.ControlReply {
	d.lastMu.Lock()
	defer d.lastMu.Unlock()

	msg := "lines: " + d.act.State().String()
	if d.last != nil {
		msg += fmt.Sprintf(", last: %s at %s", d.last, d.last.At.Format("15:04:05"))
	}
	return ipc.ControlReply{OK: true, Message: msg}
}
