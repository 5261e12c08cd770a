package services

import (
	"context"
	"net/http"
	"strings"

	"github.com/desertthunder/filmhub/internal/models"
)

type ratingPayload struct {
	Movie   int    `json:"movie"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// Rate creates a rating. A duplicate surfaces as an [*APIError] carrying the server's message.
func (c *Client) Rate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error) {
	resp, err := c.sendRating(ctx, http.MethodPost, movieID, score, comment)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		f := parseFailure(resp.body)
		return nil, newAPIError("rate", resp.status, "Failed to rate movie", f.Error)
	}
	return decodeRating("rate", resp.body, movieID, score, comment)
}

// UpdateRating replaces an existing rating.
func (c *Client) UpdateRating(ctx context.Context, movieID, score int, comment string) (*models.Rating, error) {
	resp, err := c.sendRating(ctx, http.MethodPatch, movieID, score, comment)
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		f := parseFailure(resp.body)
		return nil, newAPIError("update rating", resp.status, "Failed to update rating", f.Error)
	}
	return decodeRating("update rating", resp.body, movieID, score, comment)
}

// RateOrUpdate validates score, tries to create the rating and falls back to one update when the
// create failure says the rating already exists. The existing ratings are never read first.
func (c *Client) RateOrUpdate(ctx context.Context, movieID, score int, comment string) (*models.Rating, error) {
	if err := models.ValidateScore(score); err != nil {
		return nil, err
	}

	resp, err := c.sendRating(ctx, http.MethodPost, movieID, score, comment)
	if err != nil {
		return nil, err
	}

	if resp.ok() {
		return decodeRating("rate", resp.body, movieID, score, comment)
	}

	f := parseFailure(resp.body)
	if strings.Contains(f.Error, conflictPhrase) {
		c.logger.Debug("rating exists, updating", "movie", movieID, "score", score)
		return c.UpdateRating(ctx, movieID, score, comment)
	}

	return nil, newAPIError("rate", resp.status, "Failed to rate movie", f.Error, f.Message)
}

// GetRatings lists the current user's ratings.
func (c *Client) GetRatings(ctx context.Context) ([]models.Rating, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/ratings/", auth: true})
	if err != nil {
		return nil, err
	}

	if !resp.ok() {
		return nil, newAPIError("ratings", resp.status, "Failed to fetch ratings")
	}

	ratings := []models.Rating{}
	if empty(resp.body) {
		return ratings, nil
	}
	if err := decode("ratings", resp.body, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (c *Client) sendRating(ctx context.Context, method string, movieID, score int, comment string) (*response, error) {
	return c.do(ctx, request{
		method: method,
		path:   "/ratings/",
		body:   ratingPayload{Movie: movieID, Score: score, Comment: comment},
		auth:   true,
	})
}

// decodeRating reads the saved rating, filling in the submitted values when the server sends no body.
func decodeRating(op string, body []byte, movieID, score int, comment string) (*models.Rating, error) {
	rating := models.Rating{Movie: movieID, Score: score, Comment: comment}
	if empty(body) {
		return &rating, nil
	}
	if err := decode(op, body, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}
