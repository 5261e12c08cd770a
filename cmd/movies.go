package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
)

// MoviesCatalog prints the catalog, grouped by category unless --category picks one.
func (r *Runner) MoviesCatalog(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	r.logger.Info("fetching catalog")
	catalog, err := r.api.GetCatalog(ctx)
	if err != nil {
		return err
	}

	if name := cmd.String("category"); name != "" {
		movies, ok := catalog.Category(name)
		if !ok {
			return fmt.Errorf("%w: no category %q (have: %s)", shared.ErrInvalidArgument, name, strings.Join(catalog.Names(), ", "))
		}
		return r.writeMovies(cmd, name, movies)
	}

	switch outputFormat(cmd) {
	case formatter.FormatJSON:
		return r.writeJSON(catalog, true)
	case formatter.FormatText:
		if len(catalog.Categories) == 0 {
			return r.writePlain("No movies in the catalog\n")
		}
		for i, cat := range catalog.Categories {
			if i > 0 {
				r.writePlain("\n")
			}
			if err := r.writePlain("%s", formatter.MoviesToText(cat.Name, cat.Movies)); err != nil {
				return err
			}
		}
		return nil
	default:
		return r.writeMovies(cmd, "Catalog", catalog.Flatten())
	}
}

// MoviesSearch searches the catalog by title, director or genre.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}

	searchType, err := models.ParseSearchType(cmd.String("type"))
	if err != nil {
		return err
	}

	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	r.logger.Info("searching catalog", "query", query, "type", searchType)
	movies, err := r.api.SearchCatalog(ctx, query, searchType)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, fmt.Sprintf("Results for %q (%s)", query, searchType), movies)
}

// MoviesGenre lists movies of one genre.
func (r *Runner) MoviesGenre(ctx context.Context, cmd *cli.Command) error {
	genre := strings.TrimSpace(cmd.StringArg("genre"))
	if genre == "" {
		return fmt.Errorf("%w: genre is required", shared.ErrMissingArgument)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := r.api.MoviesByGenre(ctx, genre)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, "Genre: "+genre, movies)
}

// MoviesDirector lists movies by one director.
func (r *Runner) MoviesDirector(ctx context.Context, cmd *cli.Command) error {
	director := strings.TrimSpace(cmd.StringArg("director"))
	if director == "" {
		return fmt.Errorf("%w: director is required", shared.ErrMissingArgument)
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movies, err := r.api.MoviesByDirector(ctx, director)
	if err != nil {
		return err
	}
	return r.writeMovies(cmd, "Director: "+director, movies)
}

// MoviesShow prints one movie's details and optionally saves its poster.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd, "id")
	if err != nil {
		return err
	}
	if err := r.requireAuth(ctx); err != nil {
		return err
	}

	movie, err := r.api.GetMovie(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(movie, true); err != nil {
			return err
		}
	} else {
		r.writePlainHeader(movie.Title)
		if movie.Year > 0 {
			r.writePlain("Year:     %d\n", movie.Year)
		}
		if movie.Genre != "" {
			r.writePlain("Genre:    %s\n", movie.Genre)
		}
		if movie.Director != "" {
			r.writePlain("Director: %s\n", movie.Director)
		}
		r.writePlain("Average:  ★ %s\n", movie.RatingLabel())
		r.writePlain("ID:       %d\n", movie.ExternalID)
	}

	if path := cmd.String("save-poster"); path != "" {
		if err := r.savePoster(ctx, movie, path); err != nil {
			return err
		}
	}
	if cmd.Bool("open") {
		r.logger.Info("opening poster", "url", movie.PosterURL)
		return shared.OpenURL(movie.PosterURL)
	}
	return nil
}

func (r *Runner) savePoster(ctx context.Context, movie *models.Movie, path string) error {
	r.logger.Info("downloading poster", "movie", movie.ExternalID, "url", movie.PosterURL)

	data, err := formatter.DownloadPoster(ctx, r.httpClient, movie.PosterURL)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save poster: %w", err)
	}

	r.logger.Info("poster saved", "path", path, "bytes", len(data))
	return r.writePlainln("✓ Poster saved to %s", path)
}

// writeMovies renders a movie list in the format chosen by --format or --json.
func (r *Runner) writeMovies(cmd *cli.Command, title string, movies []models.Movie) error {
	switch format := outputFormat(cmd); format {
	case formatter.FormatJSON:
		return r.writeJSON(movies, true)
	case formatter.FormatCSV:
		data, err := formatter.MoviesToCSV(movies)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	case formatter.FormatMarkdown:
		return r.writePlain("%s", formatter.MoviesToMarkdown(title, movies))
	case formatter.FormatText:
		if len(movies) == 0 {
			return r.writePlain("No movies found\n")
		}
		return r.writePlain("%s", formatter.MoviesToText(title, movies))
	default:
		return fmt.Errorf("%w: unsupported format %q (want txt, markdown, csv or json)", shared.ErrInvalidFlag, format)
	}
}

// outputFormat resolves --format, with --json taking precedence.
func outputFormat(cmd *cli.Command) string {
	if cmd.Bool("json") {
		return formatter.FormatJSON
	}
	if format := strings.ToLower(cmd.String("format")); format != "" {
		if format == "md" {
			return formatter.FormatMarkdown
		}
		return format
	}
	return formatter.FormatText
}

// movieIDArg parses a positional external id.
func movieIDArg(cmd *cli.Command, name string) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg(name))
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", shared.ErrMissingArgument, name)
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
