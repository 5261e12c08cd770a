package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		var apiErr *services.APIError
		switch {
		case errors.Is(err, shared.ErrNotImplemented):
			logger.Warn("not implemented")
			os.Exit(0)
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Error(err)
			os.Exit(2)
		case errors.As(err, &apiErr):
			logger.Fatal("request failed", "op", apiErr.Op, "status", apiErr.Status, "error", apiErr.Message)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "filmhub",
		Usage:   "Browse the filmhub catalog, rate movies and get recommendations",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}
