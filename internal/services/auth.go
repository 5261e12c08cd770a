package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/filmhub/internal/models"
)

// Login exchanges credentials for a token.
//
// The body is decoded whatever the status code; check [models.LoginResponse.Err] for the outcome.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/login/",
		body:   map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return nil, err
	}

	var out models.LoginResponse
	if err := decode("login", resp.body, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("login response", "status", resp.status, "user", username, "ok", out.Err() == nil)
	return &out, nil
}

// Register creates an account. Like [Client.Login] it never fails on status alone.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.RegisterResponse, error) {
	resp, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/register/",
		body:   map[string]string{"username": username, "email": email, "password": password},
	})
	if err != nil {
		return nil, err
	}

	var out models.RegisterResponse
	if err := decode("register", resp.body, &out); err != nil {
		return nil, err
	}

	c.logger.Debug("register response", "status", resp.status, "user", username)
	return &out, nil
}
