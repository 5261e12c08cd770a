package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"

	"github.com/desertthunder/filmhub/internal/models"
	"github.com/desertthunder/filmhub/internal/shared"
)

// Durable storage keys.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is a durable key-value store. Set and Remove apply all keys together.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}

// SessionUpdate carries the fields to merge into the session. Nil fields are left untouched.
type SessionUpdate struct {
	User  *models.UserSummary
	Token *string
}

// Store holds the current session and its durable copy.
type Store struct {
	mu       sync.RWMutex
	session  models.Session
	storage  Storage
	logger   *log.Logger
	once     sync.Once
	restored chan struct{}
}

// NewStore creates an empty store. Call [Store.Restore] once at startup.
func NewStore(storage Storage, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		storage:  storage,
		logger:   shared.WithLogger(logger, "component", "session"),
		restored: make(chan struct{}),
	}
}

// Restore loads saved credentials when both the token and the user are present.
//
// The restored signal fires exactly once, whether or not loading succeeds. Later calls do nothing.
func (s *Store) Restore(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		defer close(s.restored)
		err = s.restore(ctx)
	})
	return err
}

func (s *Store) restore(ctx context.Context) error {
	token, hasToken, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Warn("failed to read saved token", "error", err)
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	raw, hasUser, err := s.storage.Get(ctx, KeyUser)
	if err != nil {
		s.logger.Warn("failed to read saved user", "error", err)
		return fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}

	if !hasToken || !hasUser || token == "" || raw == "" {
		s.logger.Debug("no saved session")
		return nil
	}

	var user models.UserSummary
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("ignoring unreadable saved user", "error", err)
		return nil
	}

	s.mu.Lock()
	s.session = models.Session{User: &user, Token: token}
	s.mu.Unlock()

	s.logger.Debug("session restored", "user", user.Username)
	return nil
}

// Restored is closed once [Store.Restore] has finished.
func (s *Store) Restored() <-chan struct{} {
	return s.restored
}

// Update merges u into the in-memory session. It never writes to storage.
func (s *Store) Update(u SessionUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.User != nil {
		user := *u.User
		s.session.User = &user
	}
	if u.Token != nil {
		s.session.Token = *u.Token
	}
}

// SaveCredentials writes token and user to durable storage.
func (s *Store) SaveCredentials(ctx context.Context, token string, user models.UserSummary) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	if err := s.storage.Set(ctx, map[string]string{KeyToken: token, KeyUser: string(data)}); err != nil {
		return fmt.Errorf("%w: failed to save credentials: %v", shared.ErrStorage, err)
	}

	s.logger.Debug("credentials saved", "user", user.Username)
	return nil
}

// Clear removes the durable entries, then empties the in-memory session.
//
// The in-memory session is emptied even when storage fails, so a logout always takes effect for this process.
func (s *Store) Clear(ctx context.Context) error {
	err := s.storage.Remove(ctx, KeyToken, KeyUser)

	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("%w: failed to clear credentials: %v", shared.ErrStorage, err)
	}
	return nil
}

// Session returns a copy of the current session.
func (s *Store) Session() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.session
	if out.User != nil {
		user := *out.User
		out.User = &user
	}
	return out
}

// Token returns the current token at call time.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Authenticated reports whether a token is present.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}
