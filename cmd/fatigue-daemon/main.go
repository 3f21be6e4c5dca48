package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"fatigue/internal/app"
	"fatigue/internal/config"
	"fatigue/internal/fatigue"
	"fatigue/internal/ipc"
)

func main() {
	flags := config.RegisterFlags(cli.CommandLine)
	cli.Parse()

	cfg, err := flags.Load()
	if err != nil {
		app.SetupLogging(os.Stderr, "info")
		log.Error("Bad configuration", "err", err)
		os.Exit(fatigue.ExitFailure)
	}
	app.SetupLogging(os.Stdout, cfg.Log)

	log.Info("Booting up")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		log.Error("Failed to set up", "err", err)
		os.Exit(fatigue.ExitCode(err))
	}
	defer a.Close()

	d := app.NewDaemon(ctx, a.Pipeline, a.Actuator)
	ln, err := ipc.StartServer(cfg.Socket, d.Handle)
	if err != nil {
		log.Error("Failed ipc server", "socket", cfg.Socket, "err", err)
		a.Close()
		os.Exit(fatigue.ExitFailure)
	}
	defer ln.Close()

	log.Info("Boot up - successful", "socket", cfg.Socket)

	<-ctx.Done()
	log.Info("Shutting down")
}
