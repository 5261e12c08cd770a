package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/filmhub/internal/models"
)

// GetCatalog fetches the categorized movie catalog.
func (c *Client) GetCatalog(ctx context.Context) (models.Catalog, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/movies/", auth: true})
	if err != nil {
		return models.Catalog{}, err
	}

	if !resp.ok() {
		return models.Catalog{}, newAPIError("catalog", resp.status, "Failed to fetch movies catalog")
	}

	var catalog models.Catalog
	if err := decode("catalog", resp.body, &catalog); err != nil {
		return models.Catalog{}, err
	}
	return catalog, nil
}

// GetMovie finds a movie by external id by scanning every catalog category.
func (c *Client) GetMovie(ctx context.Context, externalID int) (*models.Movie, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/movies/", auth: true})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, newAPIError("movie", resp.status, fmt.Sprintf("Failed to fetch movies (%d)", resp.status))
	}

	var catalog models.Catalog
	if err := decode("movie", resp.body, &catalog); err != nil {
		return nil, err
	}
	return catalog.Find(externalID)
}

// SearchCatalog returns movies whose searchType field matches query. An empty searchType means title.
func (c *Client) SearchCatalog(ctx context.Context, query string, searchType models.SearchType) ([]models.Movie, error) {
	return c.search(ctx, query, searchType, "Failed to search movies")
}

// MoviesByGenre searches the catalog by genre.
func (c *Client) MoviesByGenre(ctx context.Context, genre string) ([]models.Movie, error) {
	return c.search(ctx, genre, models.SearchByGenre, "Failed to fetch movies by genre")
}

// MoviesByDirector searches the catalog by director.
func (c *Client) MoviesByDirector(ctx context.Context, director string) ([]models.Movie, error) {
	return c.search(ctx, director, models.SearchByDirector, "Failed to fetch movies by director")
}

func (c *Client) search(ctx context.Context, query string, searchType models.SearchType, failure string) ([]models.Movie, error) {
	st, err := models.ParseSearchType(string(searchType))
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/movies/",
		query:  url.Values{"search": {query}, "search_type": {string(st)}},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, newAPIError("search", resp.status, failure)
	}
	return decodeMovies("search", resp.body)
}

// GetRecommendations returns the server-ranked recommendation list.
func (c *Client) GetRecommendations(ctx context.Context) ([]models.Movie, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/recommended_movies/", auth: true})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, newAPIError("recommendations", resp.status, fmt.Sprintf("HTTP error! status: %d", resp.status))
	}
	return decodeMovies("recommendations", resp.body)
}

// decodeMovies accepts either a flat movie list or a categorized object and returns the movies in order.
func decodeMovies(op string, body []byte) ([]models.Movie, error) {
	if empty(body) {
		return []models.Movie{}, nil
	}

	var catalog models.Catalog
	if err := decode(op, body, &catalog); err != nil {
		return nil, err
	}
	return catalog.Flatten(), nil
}
