package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/controllers"
	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/services"
)

// Recommendations prints the movies recommended for the logged-in user.
func (r *Runner) Recommendations(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := r.api.GetRecommendations(ctx)
	if err != nil {
		return err
	}
	if len(movies) == 0 && outputFormat(cmd) == formatter.FormatText {
		return r.writePlain("%s\n", controllers.MsgNoRecommendations)
	}
	return r.writeMovies(cmd, "Recommended for you", movies)
}

// WatchListShow prints the watch list.
func (r *Runner) WatchListShow(ctx context.Context, cmd *cli.Command) error {
	return r.listCollection(ctx, cmd, "Watch list", services.Gateway.GetWatchList)
}

// WatchListAdd adds a movie to the watch list.
func (r *Runner) WatchListAdd(ctx context.Context, cmd *cli.Command) error {
	return r.addToCollection(ctx, cmd, "watch list", services.Gateway.AddToWatchList)
}

// WatchedShow prints the watched movies.
func (r *Runner) WatchedShow(ctx context.Context, cmd *cli.Command) error {
	return r.listCollection(ctx, cmd, "Watched", services.Gateway.GetWatchedMovies)
}

// WatchedAdd marks a movie as watched.
func (r *Runner) WatchedAdd(ctx context.Context, cmd *cli.Command) error {
	return r.addToCollection(ctx, cmd, "watched movies", services.Gateway.AddToWatchedMovies)
}

// listCollection and addToCollection take Gateway method expressions since r.api is set by connect.
func (r *Runner) listCollection(
	ctx context.Context,
	cmd *cli.Command,
	title string,
	fetch func(services.Gateway, context.Context) ([]models.Movie, error),
) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := fetch(r.api, ctx)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, title, movies)
}

func (r *Runner) addToCollection(
	ctx context.Context,
	cmd *cli.Command,
	name string,
	add func(services.Gateway, context.Context, int) (models.CollectionAck, error),
) error {
	id, err := movieIDArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	ack, err := add(r.api, ctx, id)
	if err != nil {
		return err
	}

	r.logger.Info("collection updated", "collection", name, "movie", id)
	if msg := ack.Message(); msg != "" {
		return r.writePlain("✓ %s\n", msg)
	}
	return r.writePlain("✓ Added movie %d to %s\n", id, name)
}
