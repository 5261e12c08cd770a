package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
)

// MockAPI is a concurrency-safe test double for the API gateway client.
//
// Each operation returns its configured data or error and is counted in [MockAPI.Calls].
// RateFunc, when set, replaces the default RateOrUpdate behaviour.
type MockAPI struct {
	mu    sync.Mutex
	calls map[string]int

	LoginResponse    *models.LoginResponse
	RegisterResponse *models.RegisterResponse
	AuthErr          error

	Catalog         models.Catalog
	CatalogErr      error
	SearchResults   []models.Movie
	SearchErr       error
	Recommendations []models.Movie
	RecommendErr    error
	Ratings         []models.Rating
	RatingsErr      error
	RateErr         error
	RateFunc        func(movieID, score int, comment string) (*models.Rating, error)
	WatchList       []models.Movie
	Watched         []models.Movie
	CollectionErr   error

	LastSearch     string
	LastUsername   string
	LastPassword   string
	LastSearchType models.SearchType
}

func (m *MockAPI) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[op]++
}

// Calls returns how many times op was invoked.
func (m *MockAPI) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockAPI) Login(_ context.Context, username, password string) (*models.LoginResponse, error) {
	m.record("Login")
	m.mu.Lock()
	m.LastUsername, m.LastPassword = username, password
	m.mu.Unlock()
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	if m.LoginResponse != nil {
		return m.LoginResponse, nil
	}
	return &models.LoginResponse{Token: "token-" + username, User: &models.UserSummary{Username: username}}, nil
}

func (m *MockAPI) Register(_ context.Context, username, email, _ string) (*models.RegisterResponse, error) {
	m.record("Register")
	if m.AuthErr != nil {
		return nil, m.AuthErr
	}
	if m.RegisterResponse != nil {
		return m.RegisterResponse, nil
	}
	return &models.RegisterResponse{Message: "User created", User: &models.UserSummary{Username: username, Email: email}}, nil
}

func (m *MockAPI) GetCatalog(context.Context) (models.Catalog, error) {
	m.record("GetCatalog")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CatalogErr != nil {
		return models.Catalog{}, m.CatalogErr
	}
	return m.Catalog, nil
}

func (m *MockAPI) GetMovie(ctx context.Context, externalID int) (*models.Movie, error) {
	m.record("GetMovie")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CatalogErr != nil {
		return nil, m.CatalogErr
	}
	return m.Catalog.Find(externalID)
}

func (m *MockAPI) SearchCatalog(_ context.Context, query string, searchType models.SearchType) ([]models.Movie, error) {
	m.record("SearchCatalog")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastSearch, m.LastSearchType = query, searchType
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if m.SearchResults != nil {
		return m.SearchResults, nil
	}

	out := []models.Movie{}
	for _, movie := range m.Catalog.Flatten() {
		if strings.Contains(strings.ToLower(movie.Title), strings.ToLower(query)) {
			out = append(out, movie)
		}
	}
	return out, nil
}

func (m *MockAPI) MoviesByGenre(ctx context.Context, genre string) ([]models.Movie, error) {
	return m.SearchCatalog(ctx, genre, models.SearchByGenre)
}

func (m *MockAPI) MoviesByDirector(ctx context.Context, director string) ([]models.Movie, error) {
	return m.SearchCatalog(ctx, director, models.SearchByDirector)
}

func (m *MockAPI) Rate(_ context.Context, movieID, score int, comment string) (*models.Rating, error) {
	m.record("Rate")
	return m.applyRating(movieID, score, comment)
}

func (m *MockAPI) UpdateRating(_ context.Context, movieID, score int, comment string) (*models.Rating, error) {
	m.record("UpdateRating")
	return m.applyRating(movieID, score, comment)
}

func (m *MockAPI) RateOrUpdate(_ context.Context, movieID, score int, comment string) (*models.Rating, error) {
	m.record("RateOrUpdate")
	if err := models.ValidateScore(score); err != nil {
		return nil, err
	}
	if m.RateFunc != nil {
		return m.RateFunc(movieID, score, comment)
	}
	return m.applyRating(movieID, score, comment)
}

// applyRating upserts the rating into Ratings so a subsequent GetRatings sees it.
func (m *MockAPI) applyRating(movieID, score int, comment string) (*models.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RateErr != nil {
		return nil, m.RateErr
	}

	rating := models.Rating{Movie: movieID, Score: score, Comment: comment}
	for i, r := range m.Ratings {
		if r.Movie == movieID {
			rating.ID = r.ID
			m.Ratings[i] = rating
			return &rating, nil
		}
	}
	rating.ID = len(m.Ratings) + 1
	m.Ratings = append(m.Ratings, rating)
	return &rating, nil
}

func (m *MockAPI) GetRatings(context.Context) ([]models.Rating, error) {
	m.record("GetRatings")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RatingsErr != nil {
		return nil, m.RatingsErr
	}
	return append([]models.Rating{}, m.Ratings...), nil
}

func (m *MockAPI) GetRecommendations(context.Context) ([]models.Movie, error) {
	m.record("GetRecommendations")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RecommendErr != nil {
		return nil, m.RecommendErr
	}
	return append([]models.Movie{}, m.Recommendations...), nil
}

func (m *MockAPI) GetWatchList(context.Context) ([]models.Movie, error) {
	m.record("GetWatchList")
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Movie{}, m.WatchList...), m.CollectionErr
}

func (m *MockAPI) AddToWatchList(_ context.Context, externalID int) (models.CollectionAck, error) {
	m.record("AddToWatchList")
	return m.addTo(&m.WatchList, externalID, "watch list")
}

func (m *MockAPI) GetWatchedMovies(context.Context) ([]models.Movie, error) {
	m.record("GetWatchedMovies")
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Movie{}, m.Watched...), m.CollectionErr
}

func (m *MockAPI) AddToWatchedMovies(_ context.Context, externalID int) (models.CollectionAck, error) {
	m.record("AddToWatchedMovies")
	return m.addTo(&m.Watched, externalID, "watched movies")
}

func (m *MockAPI) addTo(list *[]models.Movie, externalID int, name string) (models.CollectionAck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CollectionErr != nil {
		return nil, m.CollectionErr
	}

	movie, err := m.Catalog.Find(externalID)
	if err != nil {
		movie = &models.Movie{ExternalID: externalID}
	}
	*list = append(*list, *movie)
	return models.CollectionAck{"message": fmt.Sprintf("Movie added to %s", name)}, nil
}

// ErrUnavailable is a ready-made transport failure for tests.
var ErrUnavailable = fmt.Errorf("%w: connection refused", shared.ErrServiceUnavailable)
