package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/filmhub/internal/models"
)

const (
	watchListPath = "/movies/watch_list/"
	watchedPath   = "/movies/watched/"
)

// GetWatchList returns the movies on the user's watch list.
func (c *Client) GetWatchList(ctx context.Context) ([]models.Movie, error) {
	return c.listCollection(ctx, watchListPath, "watch list", "Failed to fetch watch list")
}

// AddToWatchList adds a movie to the watch list.
func (c *Client) AddToWatchList(ctx context.Context, externalID int) (models.CollectionAck, error) {
	return c.addToCollection(ctx, watchListPath, externalID, "add to watch list", "Failed to add to watch list")
}

// GetWatchedMovies returns the movies the user marked as watched.
func (c *Client) GetWatchedMovies(ctx context.Context) ([]models.Movie, error) {
	return c.listCollection(ctx, watchedPath, "watched", "Failed to fetch watched movies")
}

// AddToWatchedMovies marks a movie as watched.
func (c *Client) AddToWatchedMovies(ctx context.Context, externalID int) (models.CollectionAck, error) {
	return c.addToCollection(ctx, watchedPath, externalID, "add to watched", "Failed to add to watched movies")
}

func (c *Client) listCollection(ctx context.Context, path, op, failure string) ([]models.Movie, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, newAPIError(op, resp.status, failure)
	}
	return decodeMovies(op, resp.body)
}

func (c *Client) addToCollection(ctx context.Context, path string, externalID int, op, failure string) (models.CollectionAck, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body:   map[string]int{"external_id": externalID},
		auth:   true,
	})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		f := parseFailure(resp.body)
		return nil, newAPIError(op, resp.status, failure, f.Error)
	}

	ack := models.CollectionAck{}
	if empty(resp.body) {
		return ack, nil
	}

	var payload any
	if err := decode(op, resp.body, &payload); err != nil {
		return nil, err
	}
	if obj, ok := payload.(map[string]any); ok {
		return models.CollectionAck(obj), nil
	}
	ack["data"] = payload
	return ack, nil
}
