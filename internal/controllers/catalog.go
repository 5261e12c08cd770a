package controllers

import (
	"context"
	"strings"

	"github.com/desertthunder/filmhub/internal/models"
)

// View is the main page's display mode.
type View string

const (
	ViewHome    View = "home"
	ViewSearch  View = "search"
	ViewDetails View = "movie-details"
)

// CatalogSnapshot is a copy of the main page state.
type CatalogSnapshot struct {
	Movies          Source[[]models.Movie]
	Recommendations Source[[]models.Movie]
	View            View
	Query           string
	SearchType      models.SearchType
	Results         []models.Movie
	Selected        *models.Movie
	Featured        []models.Movie
	RatingError     string
	Notice          string
}

// Visible is the movie list the current view shows: search results in search mode, the catalog otherwise.
func (s CatalogSnapshot) Visible() []models.Movie {
	if s.View == ViewSearch {
		return s.Results
	}
	return s.Movies.Data
}

// Catalog drives the main page: all movies, featured recommendations, search and movie details.
type Catalog struct {
	base
	movies     Source[[]models.Movie]
	recs       Source[[]models.Movie]
	view       View
	returnTo   View
	query      string
	searchType models.SearchType
	results    []models.Movie
	selected   *models.Movie
	// loadErr is the last catalog load error, shown again when search is left.
	loadErr string
}

func NewCatalog(api API, opts Options) *Catalog {
	c := &Catalog{view: ViewHome, returnTo: ViewHome}
	c.init(api, opts, "catalog")
	c.movies.Loading = true
	c.recs.Loading = true
	return c
}

// Load fetches the catalog and the recommendations concurrently and waits for both.
func (c *Catalog) Load(ctx context.Context) {
	parallel(
		func() { c.loadMovies(ctx) },
		func() { c.loadRecommendations(ctx) },
	)
}

func (c *Catalog) loadMovies(ctx context.Context) {
	fetch(&c.base, &c.movies, MsgMoviesError, func() ([]models.Movie, error) {
		catalog, err := c.api.GetCatalog(ctx)
		if err != nil {
			return nil, err
		}
		return catalog.Flatten(), nil
	})

	c.mu.Lock()
	c.loadErr = c.movies.Error
	c.mu.Unlock()
}

func (c *Catalog) loadRecommendations(ctx context.Context) {
	fetch(&c.base, &c.recs, MsgRecommendationsError, func() ([]models.Movie, error) {
		return c.api.GetRecommendations(ctx)
	})
}

// Search replaces the visible list with matches for query.
// A blank query returns to the home view without a request. Failures leave loaded movies in place.
func (c *Catalog) Search(ctx context.Context, query string, searchType models.SearchType) error {
	if strings.TrimSpace(query) == "" {
		c.mu.Lock()
		c.leaveSearchLocked()
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	c.query = query
	c.searchType = searchType
	c.movies.Loading = true
	c.movies.Error = ""
	c.mu.Unlock()

	results, err := c.api.SearchCatalog(ctx, query, searchType)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies.Loading = false
	if err != nil {
		c.movies.Error = MsgSearchError
		c.logger.Warn("search failed", "query", query, "error", err)
		return err
	}

	c.results = results
	c.view = ViewSearch
	c.returnTo = ViewSearch
	return nil
}

// Select opens the details view for movie.
func (c *Catalog) Select(movie models.Movie) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view != ViewDetails {
		c.returnTo = c.view
	}
	c.selected = &movie
	c.view = ViewDetails
}

// Back leaves the details view for the list it was opened from, or leaves search for home.
func (c *Catalog) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.view {
	case ViewDetails:
		c.selected = nil
		c.view = c.returnTo
	case ViewSearch:
		c.leaveSearchLocked()
	}
}

func (c *Catalog) leaveSearchLocked() {
	c.query = ""
	c.results = nil
	c.view = ViewHome
	c.returnTo = ViewHome
	c.movies.Error = c.loadErr
}

// Rate saves a score and reloads the whole page on success.
func (c *Catalog) Rate(ctx context.Context, movieID, score int) error {
	return c.rate(ctx, movieID, score, c.Load)
}

// Featured returns the first recommendations, up to the configured count.
func (c *Catalog) Featured() []models.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.featuredLocked()
}

func (c *Catalog) featuredLocked() []models.Movie {
	n := min(c.opts.FeaturedCount, len(c.recs.Data))
	return append([]models.Movie{}, c.recs.Data[:n]...)
}

func (c *Catalog) Snapshot() CatalogSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := CatalogSnapshot{
		Movies:          copySource(c.movies),
		Recommendations: copySource(c.recs),
		View:            c.view,
		Query:           c.query,
		SearchType:      c.searchType,
		Results:         append([]models.Movie{}, c.results...),
		Featured:        c.featuredLocked(),
		RatingError:     c.ratingError,
		Notice:          c.notice,
	}
	if c.selected != nil {
		m := *c.selected
		s.Selected = &m
	}
	return s
}

func copySource[T any](src Source[[]T]) Source[[]T] {
	return Source[[]T]{Loading: src.Loading, Error: src.Error, Data: append([]T{}, src.Data...)}
}
