package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// Run is the CLI entrypoint used by cmd/fouron4.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run() error {
	cfg := LoadConfig()
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return Command(cfg, log).Run(ctx, os.Args)
}

// Command builds the root CLI command tree.
func Command(cfg Config, log Logger) *cli.Command {
	return &cli.Command{
		Name:  "fouron4",
		Usage: "4ON4 ride marketplace client",
		Commands: []*cli.Command{
			loginCommand(cfg, log),
			logoutCommand(cfg, log),
			registerCommand(cfg, log),
			resetCommand(cfg, log),
			whoamiCommand(cfg, log),
			profileCommand(cfg, log),
			vehicleCommand(cfg, log),
			tripsCommand(cfg, log),
		},
	}
}

// withApp builds the App for one command invocation and tears it down after.
func withApp(ctx context.Context, cfg Config, log Logger, fn func(ctx context.Context, a *App) error) error {
	a, err := New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("app.close.fail", "err", err)
		}
	}()

	return fn(ctx, a)
}
