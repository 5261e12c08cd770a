package session

import (
	"context"
	"fmt"

	"github.com/desertthunder/filmhub/internal/shared"
)

// State is the guard's lifecycle state.
type State int

const (
	Checking State = iota
	Resolved
)

func (s State) String() string {
	if s == Resolved {
		return "resolved"
	}
	return "checking"
}

// Decision is what a protected view should do.
type Decision int

const (
	// Pending renders a neutral placeholder.
	Pending Decision = iota
	RedirectLogin
	Allow
)

func (d Decision) String() string {
	switch d {
	case RedirectLogin:
		return "redirect-login"
	case Allow:
		return "allow"
	default:
		return "pending"
	}
}

// Guard gates protected views on the store's session.
type Guard struct {
	store *Store
}

func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// State is [Resolved] once the store has finished restoring.
func (g *Guard) State() State {
	select {
	case <-g.store.Restored():
		return Resolved
	default:
		return Checking
	}
}

// Wait blocks until the guard resolves or ctx is done.
func (g *Guard) Wait(ctx context.Context) error {
	select {
	case <-g.store.Restored():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Decide never returns [RedirectLogin] or [Allow] while checking.
func (g *Guard) Decide() Decision {
	if g.State() == Checking {
		return Pending
	}
	if !g.store.Authenticated() {
		return RedirectLogin
	}
	return Allow
}

// Require waits for the guard and fails unless the session is authenticated.
func (g *Guard) Require(ctx context.Context) error {
	if err := g.Wait(ctx); err != nil {
		return err
	}
	if g.Decide() != Allow {
		return fmt.Errorf("%w: run `filmhub auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}
