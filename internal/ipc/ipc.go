// Package ipc is the control channel between fatigue-ctl and the daemon:
// one JSON request and one JSON reply per unix socket connection.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"os"
	"time"
)

const DefaultSocketPath = "/tmp/fatigue.sock"

// Commands understood by the daemon.
const (
	CmdTrigger = "trigger"
	CmdReset   = "reset"
	CmdStatus  = "status"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
}

type ControlReply struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type Handler func(ControlMessage) ControlReply

// StartServer listens on socketPath and serves each connection with handler
// in its own goroutine. Close the returned listener to stop serving.
func StartServer(socketPath string, handler Handler) (net.Listener, error) {
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	go serve(ln, handler)

	return ln, nil
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// serve accepts until ln is closed. Accept errors back off exponentially
// so a persistent failure such as EMFILE does not spin.
func serve(ln net.Listener, handler Handler) {
	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			log.Warn("Accept failed", "err", err, "retry", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0
		go handleConn(conn, handler)
	}
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var (
		msg   ControlMessage
		reply ControlReply
	)
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		reply = ControlReply{Error: fmt.Sprintf("bad request: %v", err)}
	} else {
		reply = handler(msg)
	}
	if err := json.NewEncoder(conn).Encode(reply); err != nil {
		log.Warn("Failed to send reply", "cmd", msg.Cmd, "err", err)
	}
}

// SendCommand delivers cmd and waits up to timeout for the reply.
func SendCommand(socketPath, cmd string, timeout time.Duration) (ControlReply, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return ControlReply{}, err
	}
	defer conn.Close()

	if timeout > 0 {
		conn.SetDeadline(time.Now().Add(timeout))
	}

	if err := json.NewEncoder(conn).Encode(ControlMessage{Cmd: cmd}); err != nil {
		return ControlReply{}, fmt.Errorf("send: %w", err)
	}

	var reply ControlReply
	if err := json.NewDecoder(conn).Decode(&reply); err != nil {
		return ControlReply{}, fmt.Errorf("read reply: %w", err)
	}
	return reply, nil
}
