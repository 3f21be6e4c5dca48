package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "github.com/spf13/pflag"

	log "log/slog"

	"fatigue/internal/app"
	"fatigue/internal/config"
	"fatigue/internal/fatigue"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg))
}

func run(ctx context.Context, cfg *config.Config) int {
	v, code := app.RunOnce(ctx, cfg, nil)
	if code == fatigue.ExitOK {
		fmt.Println(v.Level.Label())
	}
	return code
}
