// package services provides the HTTP gateway to the filmhub API
package services

import (
	"context"

	"github.com/desertthunder/filmhub/internal/models"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource returns the current auth token, or "" when logged out.
type TokenSource func() string

// Gateway is the set of remote operations the CLI and TUI depend on. [*Client] implements it.
type Gateway interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.RegisterResponse, error)

	GetCatalog(ctx context.Context) (models.Catalog, error)
	GetMovie(ctx context.Context, externalID int) (*models.Movie, error)
	SearchCatalog(ctx context.Context, query string, searchType models.SearchType) ([]models.Movie, error)
	MoviesByGenre(ctx context.Context, genre string) ([]models.Movie, error)
	MoviesByDirector(ctx context.Context, director string) ([]models.Movie, error)

	Rate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error)
	UpdateRating(ctx context.Context, movieID, score int, comment string) (*models.Rating, error)
	RateOrUpdate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error)
	GetRatings(ctx context.Context) ([]models.Rating, error)

	GetRecommendations(ctx context.Context) ([]models.Movie, error)

	GetWatchList(ctx context.Context) ([]models.Movie, error)
	AddToWatchList(ctx context.Context, externalID int) (models.CollectionAck, error)
	GetWatchedMovies(ctx context.Context) ([]models.Movie, error)
	AddToWatchedMovies(ctx context.Context, externalID int) (models.CollectionAck, error)
}

var _ Gateway = (*Client)(nil)
