package controllers

import (
	"context"

	"github.com/desertthunder/filmhub/internal/models"
)

// RatingsSnapshot is a copy of the ratings page state.
type RatingsSnapshot struct {
	Ratings     Source[[]models.Rating]
	Catalog     Source[[]models.Movie]
	Rated       []models.Movie
	RatingError string
	Notice      string
}

// Loading reports whether either source is still loading.
func (s RatingsSnapshot) Loading() bool {
	return s.Ratings.Loading || s.Catalog.Loading
}

// Error returns the page error, if any source failed.
func (s RatingsSnapshot) Error() string {
	if s.Ratings.Error != "" {
		return s.Ratings.Error
	}
	return s.Catalog.Error
}

// ScoreFor returns the user's score for movieID, or 0.
func (s RatingsSnapshot) ScoreFor(movieID int) int {
	return models.ScoreFor(s.Ratings.Data, movieID)
}

// Ratings drives the "my ratings" page: the user's ratings joined with catalog movies.
type Ratings struct {
	base
	ratings Source[[]models.Rating]
	catalog Source[[]models.Movie]
}

func NewRatings(api API, opts Options) *Ratings {
	r := &Ratings{}
	r.init(api, opts, "ratings")
	r.ratings.Loading = true
	r.catalog.Loading = true
	return r
}

// Load fetches ratings and the catalog concurrently and waits for both.
func (r *Ratings) Load(ctx context.Context) {
	parallel(
		func() {
			fetch(&r.base, &r.ratings, MsgRatingsError, func() ([]models.Rating, error) {
				return r.api.GetRatings(ctx)
			})
		},
		func() {
			fetch(&r.base, &r.catalog, MsgRatingsError, func() ([]models.Movie, error) {
				catalog, err := r.api.GetCatalog(ctx)
				if err != nil {
					return nil, err
				}
				return catalog.Flatten(), nil
			})
		},
	)
}

// Rate saves a score and reloads the page on success.
func (r *Ratings) Rate(ctx context.Context, movieID, score int) error {
	return r.rate(ctx, movieID, score, r.Load)
}

func (r *Ratings) Snapshot() RatingsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := RatingsSnapshot{
		Ratings:     copySource(r.ratings),
		Catalog:     copySource(r.catalog),
		RatingError: r.ratingError,
		Notice:      r.notice,
	}
	s.Rated = models.RatedMovies(s.Catalog.Data, s.Ratings.Data)
	return s
}
