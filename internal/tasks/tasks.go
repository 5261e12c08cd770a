package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/filmhub/internal/formatter"
	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/services"
	"github.com/desertthunder/filmhub/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultImportRate is the number of rating requests per second an import sends when unset.
const DefaultImportRate = 5.0

// RatingsAPI is the part of the API gateway the rating tasks use.
type RatingsAPI interface {
	GetCatalog(ctx context.Context) (models.Catalog, error)
	GetRatings(ctx context.Context) ([]models.Rating, error)
	RateOrUpdate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error)
}

// APIClient defines the interface for raw API requests used by [RatingsEngine.Dump].
type APIClient interface {
	Get(ctx context.Context, path string) (*services.RawResponse, error)
}

// ImportOpts contains configuration for rating imports.
type ImportOpts struct {
	RateLimit float64 // Requests per second (default: 5)
}

// ImportRowResult is the outcome of one imported row.
type ImportRowResult struct {
	Row    formatter.RatingRow
	Rating *models.Rating // Saved rating (nil on failure)
	Error  error
}

// ImportResult summarises a rating import.
type ImportResult struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []ImportRowResult
}

// ExportResult describes a written ratings export.
type ExportResult struct {
	Path    string
	Format  string
	Entries []models.RatingEntry
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains the raw account data fetched from the API.
type DumpResult struct {
	Movies          any              // Catalog grouped by category
	Ratings         any              // The user's ratings
	Recommendations any              // Recommended movies
	WatchList       any              // Watch list
	Watched         any              // Watched movies
	Errors          []EndpointResult // Failed endpoint fetches
}

// DumpData is the serialisable form of [DumpResult].
type DumpData struct {
	Movies          any   `json:"movies,omitempty"`
	Ratings         any   `json:"ratings,omitempty"`
	Recommendations any   `json:"recommendations,omitempty"`
	WatchList       any   `json:"watch_list,omitempty"`
	Watched         any   `json:"watched,omitempty"`
	Errors          []any `json:"errors,omitempty"`
}

// Data converts the result for JSON output.
func (r *DumpResult) Data() DumpData {
	data := DumpData{
		Movies:          r.Movies,
		Ratings:         r.Ratings,
		Recommendations: r.Recommendations,
		WatchList:       r.WatchList,
		Watched:         r.Watched,
	}
	for _, e := range r.Errors {
		data.Errors = append(data.Errors, map[string]string{"endpoint": e.Endpoint, "error": e.Error.Error()})
	}
	return data
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// RatingsEngine runs the long-running rating operations: bulk import, export and account dumps.
type RatingsEngine struct {
	logger *log.Logger
}

// NewRatingsEngine creates a RatingsEngine. A nil logger writes to stderr.
func NewRatingsEngine(logger *log.Logger) *RatingsEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &RatingsEngine{logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *RatingsEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ImportRatings applies each parsed row with RateOrUpdate, one at a time and paced by a rate limiter.
//
// Rows that failed to parse or were rejected by the API are recorded and the import moves on.
// Only cancellation of ctx stops it early, in which case the partial result is returned with the context error.
func (e *RatingsEngine) ImportRatings(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	api RatingsAPI,
	rows []formatter.RatingRow,
	opts ImportOpts,
) (*ImportResult, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = DefaultImportRate
	}

	valid, invalid := rowsSummary(rows)
	e.logger.Info("importing ratings", "rows", len(rows), "valid", valid, "invalid", invalid)

	result := &ImportResult{
		Total:   len(rows),
		Results: make([]ImportRowResult, 0, len(rows)),
	}
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	e.sendProgress(progress, importStartedUpdate(len(rows)))
	for i, row := range rows {
		res := ImportRowResult{Row: row}

		if row.Err != nil {
			res.Error = row.Err
		} else {
			if err := limiter.Wait(ctx); err != nil {
				return result, fmt.Errorf("import interrupted after %d rows: %w", i, err)
			}
			res.Rating, res.Error = api.RateOrUpdate(ctx, row.Movie, row.Score, row.Comment)
		}

		if res.Error != nil {
			result.Failed++
			e.logger.Warn("rating import row failed", "line", row.Line, "movie", row.Movie, "error", res.Error)
		} else {
			result.Succeeded++
		}
		result.Results = append(result.Results, res)
		e.sendProgress(progress, importRowUpdate(i+1, len(rows), res))

		if errors.Is(res.Error, context.Canceled) || errors.Is(res.Error, context.DeadlineExceeded) {
			return result, fmt.Errorf("import interrupted after %d rows: %w", i+1, res.Error)
		}
	}
	return result, nil
}

// ExportRatings fetches the user's ratings and the catalog, joins titles and writes them with [formatter.WriteRatings].
//
// A catalog failure is logged and the export continues with placeholder titles.
func (e *RatingsEngine) ExportRatings(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	api RatingsAPI,
	format, path string,
) (*ExportResult, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchRatingsUpdate(1, 3))
	ratings, err := api.GetRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ratings: %w", err)
	}

	e.sendProgress(progress, fetchCatalogUpdate(2, 3))
	var movies []models.Movie
	catalog, err := api.GetCatalog(ctx)
	if err != nil {
		e.logger.Warn("catalog unavailable, exporting without titles", "error", err)
	} else {
		movies = catalog.Flatten()
	}

	entries := models.JoinRatings(ratings, movies)
	e.sendProgress(progress, writeExportUpdate(3, 3, format, len(entries)))
	written, err := formatter.WriteRatings(entries, format, path)
	if err != nil {
		return nil, err
	}

	e.logger.Info("exported ratings", "count", len(entries), "path", written)
	return &ExportResult{Path: written, Format: format, Entries: entries}, nil
}

// Dump fetches the raw account data from every read endpoint.
//
// Endpoint failures are collected in [DumpResult.Errors] rather than aborting the dump.
func (e *RatingsEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate, api APIClient) (*DumpResult, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "movies", path: "/movies/", target: &result.Movies, phase: FetchCatalog, message: "Fetching movie catalog..."},
		{name: "ratings", path: "/ratings/", target: &result.Ratings, phase: FetchRatings, message: "Fetching ratings..."},
		{name: "recommendations", path: "/recommended_movies/", target: &result.Recommendations, phase: FetchRecommendations, message: "Fetching recommendations..."},
		{name: "watch_list", path: "/movies/watch_list/", target: &result.WatchList, phase: FetchWatchList, message: "Fetching watch list..."},
		{name: "watched", path: "/movies/watched/", target: &result.Watched, phase: FetchWatched, message: "Fetching watched movies..."},
	}

	totalSteps := len(endpoints)

	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := api.Get(ctx, endpoint.path)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Errorf("%s", errMsg),
			})
			continue
		}
		*endpoint.target = resp.JSONData
	}

	return result, nil
}
