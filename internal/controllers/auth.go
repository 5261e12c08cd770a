package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/session"
	"github.com/desertthunder/filmhub/internal/shared"
)

// AuthAPI is the part of the gateway client the login and register flows use.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.RegisterResponse, error)
}

// Auth runs the login, register and logout flows against the session store.
type Auth struct {
	api    AuthAPI
	store  *session.Store
	logger *log.Logger
}

func NewAuth(api AuthAPI, store *session.Store, logger *log.Logger) *Auth {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Auth{api: api, store: store, logger: shared.WithLogger(logger, "page", "auth")}
}

// Login exchanges credentials for a token, updates the in-memory session and then saves the credentials.
//
// When only the save fails the session is still live for this process and the storage error is returned.
func (a *Auth) Login(ctx context.Context, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return models.Session{}, fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	resp, err := a.api.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}
	if err := resp.Err(); err != nil {
		a.logger.Warn("login rejected", "user", username, "error", err)
		return models.Session{}, err
	}

	sess := resp.Session(username)
	a.store.Update(session.SessionUpdate{User: sess.User, Token: &sess.Token})
	if err := a.store.SaveCredentials(ctx, sess.Token, *sess.User); err != nil {
		a.logger.Error("logged in but credentials were not saved", "error", err)
		return sess, err
	}

	a.logger.Info("logged in", "user", sess.Username(username))
	return sess, nil
}

// Register creates an account. It does not log in.
func (a *Auth) Register(ctx context.Context, username, email, password string) (*models.RegisterResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", shared.ErrMissingArgument)
	}

	resp, err := a.api.Register(ctx, username, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return resp, err
	}

	a.logger.Info("registered", "user", username)
	return resp, nil
}

// Logout clears both durable entries and the in-memory session.
func (a *Auth) Logout(ctx context.Context) error {
	user := a.store.Session().Username("")
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.logger.Info("logged out", "user", user)
	return nil
}
