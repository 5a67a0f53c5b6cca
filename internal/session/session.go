// Package session holds the authenticated identity of the running client and
// keeps a copy of it in an injected Persistence so it survives restarts.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"wimitasks/internal/models"
)

// ErrInvalidCredentials is matched by every AuthError.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Messages shown to the user. The credential message never says which field was wrong.
const (
	MessageInvalidCredentials = "incorrect email or password"
	MessageLoginFailed        = "unable to sign in, please try again"
)

// AuthError reports a credential lookup that did not yield exactly one user.
type AuthError struct {
	Matches int
}

func (e *AuthError) Error() string { return ErrInvalidCredentials.Error() }

func (e *AuthError) Unwrap() error { return ErrInvalidCredentials }

// Authenticator looks up users by credentials.
type Authenticator interface {
	LookupUsers(ctx context.Context, email, password string) ([]models.Credentials, error)
}

// Persistence stores the identity between runs.
type Persistence interface {
	Save(ctx context.Context, id models.Identity) error
	// Load returns nil and no error when nothing is stored.
	Load(ctx context.Context) (*models.Identity, error)
	Clear(ctx context.Context) error
}

// State is a snapshot of the session.
type State struct {
	Identity        *models.Identity
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// Store is the session context passed to every component that needs the
// current identity.
type Store struct {
	auth    Authenticator
	persist Persistence
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// New builds an anonymous session.
func New(auth Authenticator, persist Persistence, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{auth: auth, persist: persist, logger: logger}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if st.Identity != nil {
		id := *st.Identity
		st.Identity = &id
	}
	return st
}

// Identity returns the authenticated identity, if any.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Identity == nil {
		return models.Identity{}, false
	}
	return *s.state.Identity, true
}

// Login authenticates against the API. It succeeds only when exactly one
// record matches both email and password.
func (s *Store) Login(ctx context.Context, email, password string) (models.Identity, error) {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Error = ""
	s.mu.Unlock()

	users, err := s.auth.LookupUsers(ctx, email, password)
	if err == nil && len(users) != 1 {
		err = &AuthError{Matches: len(users)}
	}
	if err != nil {
		msg := MessageLoginFailed
		if errors.Is(err, ErrInvalidCredentials) {
			msg = MessageInvalidCredentials
		} else {
			s.logger.Warn("login request failed", slog.String("error", err.Error()))
		}
		s.mu.Lock()
		s.state = State{Error: msg}
		s.mu.Unlock()
		return models.Identity{}, err
	}

	id := users[0].Identity
	if err := s.persist.Save(ctx, id); err != nil {
		s.logger.Error("failed to persist session", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.state = State{Identity: &id, IsAuthenticated: true}
	s.mu.Unlock()
	s.logger.Info("logged in", slog.Int64("user_id", id.ID))
	return id, nil
}

// Logout forgets the identity locally and removes the persisted copy.
func (s *Store) Logout(ctx context.Context) {
	if err := s.persist.Clear(ctx); err != nil {
		s.logger.Error("failed to clear session", slog.String("error", err.Error()))
	}
	s.mu.Lock()
	s.state.Identity = nil
	s.state.IsAuthenticated = false
	s.state.Error = ""
	s.mu.Unlock()
}

// ClearError resets the user-facing error before a retry.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.state.Error = ""
	s.mu.Unlock()
}

// Initialize restores a persisted identity without checking credentials again.
// Calling it repeatedly has the same effect as calling it once.
func (s *Store) Initialize(ctx context.Context) {
	id, err := s.persist.Load(ctx)
	if err != nil {
		s.logger.Warn("ignoring unreadable session", slog.String("error", err.Error()))
		return
	}
	if id == nil {
		return
	}
	s.mu.Lock()
	s.state.Identity = id
	s.state.IsAuthenticated = true
	s.mu.Unlock()
}
