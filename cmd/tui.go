package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/controllers"
	"github.com/desertthunder/filmhub/internal/shared"
	"github.com/desertthunder/filmhub/internal/ui"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logFile := r.cfg().UI.LogFile
	if path := cmd.String("log-file"); path != "" {
		logFile = path
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logFile)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.cfg().Log.Level))
	r.SetLogger(fileLogger)

	if err := r.connect(ctx); err != nil {
		return err
	}

	opts := r.controllerOpts()
	deps := ui.Deps{
		Guard:           r.guard,
		Store:           r.store,
		Auth:            r.auth,
		Catalog:         controllers.NewCatalog(r.api, opts),
		Ratings:         controllers.NewRatings(r.api, opts),
		Recommendations: controllers.NewRecommendations(r.api, opts),
		Logger:          r.logger,
	}

	if err := ui.Run(ctx, deps); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
