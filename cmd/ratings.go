package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/controllers"
	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
	"github.com/desertthunder/filmhub/internal/tasks"
)

// RatingsList prints the user's ratings joined with catalog titles.
func (r *Runner) RatingsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	ratings, err := r.api.GetRatings(ctx)
	if err != nil {
		return err
	}

	var movies []models.Movie
	if catalog, err := r.api.GetCatalog(ctx); err != nil {
		r.logger.Warn("catalog unavailable, showing movie ids only", "error", err)
	} else {
		movies = catalog.Flatten()
	}
	entries := models.JoinRatings(ratings, movies)

	switch format := outputFormat(cmd); format {
	case formatter.FormatJSON:
		return r.writeJSON(entries, true)
	case formatter.FormatCSV:
		data, err := formatter.RatingsToCSV(entries)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case formatter.FormatMarkdown:
		return r.writePlain("%s", formatter.RatingsToMarkdown(entries))
	case formatter.FormatText:
		if len(entries) == 0 {
			return r.writePlain("%s\n", controllers.MsgNoRatings)
		}
		return r.writePlain("%s", formatter.RatingsToText(entries))
	default:
		return fmt.Errorf("%w: unsupported format %q (want txt, markdown, csv or json)", shared.ErrInvalidFlag, format)
	}
}

// RatingsRate creates or updates the user's rating of one movie.
func (r *Runner) RatingsRate(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd, "id")
	if err != nil {
		return err
	}

	rawScore := strings.TrimSpace(cmd.StringArg("score"))
	if rawScore == "" {
		return fmt.Errorf("%w: score is required", shared.ErrMissingArgument)
	}
	score, err := strconv.Atoi(rawScore)
	if err != nil {
		return fmt.Errorf("%w: score must be a number, got %q", shared.ErrInvalidArgument, rawScore)
	}
	if err := models.ValidateScore(score); err != nil {
		return err
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	rating, err := r.api.RateOrUpdate(ctx, id, score, cmd.String("comment"))
	if err != nil {
		return err
	}

	r.logger.Info("rating saved", "movie", rating.Movie, "score", rating.Score)
	r.writePlain("✓ %s\n", controllers.MsgRatingSaved)
	return r.writePlain("Movie %d: %s %d/10\n", rating.Movie, formatter.Stars(rating.Score), rating.Score)
}

// RatingsImport applies ratings from a CSV file, paced by --rate-limit.
func (r *Runner) RatingsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("file")
	if path == "" {
		return fmt.Errorf("%w: CSV file is required", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	rows, err := formatter.ParseRatingsCSV(f)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return r.writePlain("No ratings found in %s\n", path)
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if update.Step == 0 {
				r.writePlain("📥 %s\n", update.Message)
			} else {
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.ImportRatings(ctx, progressCh, r.api, rows, tasks.ImportOpts{RateLimit: cmd.Float("rate-limit")})
	close(progressCh)
	<-done

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Import Complete")
		r.writePlain("Imported: %d/%d\n", result.Succeeded, result.Total)
		if result.Failed > 0 {
			r.writePlain("\nFailed rows:\n")
			for _, res := range result.Results {
				if res.Error != nil {
					r.writePlain("  - line %d: %v\n", res.Row.Line, res.Error)
				}
			}
		}
	}
	return err
}

// RatingsExport writes the user's ratings to a file.
func (r *Runner) RatingsExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	if format == "md" {
		format = formatter.FormatMarkdown
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📥 %s\n", update.Message)
		}
	}()

	result, err := r.engine.ExportRatings(ctx, progressCh, r.api, format, cmd.String("output"))
	close(progressCh)
	<-done

	if err != nil {
		return err
	}
	return r.writePlainln("✓ Exported %d ratings to %s", len(result.Entries), result.Path)
}
