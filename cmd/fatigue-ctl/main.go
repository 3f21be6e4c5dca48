package main

import (
	"fmt"
	"os"
	"time"

	cli "github.com/spf13/pflag"

	"fatigue/internal/fatigue"
	"fatigue/internal/ipc"
)

func main() {
	socket := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Daemon control socket")
	timeout := cli.DurationP("timeout", "t", 2*time.Minute, "How long to wait for the cycle to finish")
	cli.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: fatigue-ctl [flags] [%s|%s|%s]\n", ipc.CmdTrigger, ipc.CmdReset, ipc.CmdStatus)
		cli.PrintDefaults()
	}
	cli.Parse()

	cmd := ipc.CmdTrigger
	if cli.NArg() > 0 {
		cmd = cli.Arg(0)
	}

	reply, err := ipc.SendCommand(*socket, cmd, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatigue-daemon not running:", err)
		os.Exit(fatigue.ExitFailure)
	}
	if !reply.OK {
		fmt.Fprintln(os.Stderr, reply.Error)
		if reply.Code == 0 {
			reply.Code = fatigue.ExitFailure
		}
		os.Exit(reply.Code)
	}
	fmt.Println(reply.Message)
}
