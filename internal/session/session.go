// Package session holds who is logged in. A Store is constructed explicitly
// and passed to whatever needs it; every mutation writes through to a Vault
// before the in-memory copy changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/famtrack/internal/api"
	apperrors "github.com/julianstephens/famtrack/internal/errors"
	"github.com/julianstephens/famtrack/internal/logger"
	"github.com/julianstephens/famtrack/internal/models"
)

// Authenticator is the subset of the API client the session needs.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (string, error)
}

// Reason categorizes an authentication failure.
type Reason string

const (
	ReasonInvalid      Reason = "invalid"
	ReasonAuth         Reason = "auth"
	ReasonConnectivity Reason = "connectivity"
	ReasonRequest      Reason = "request"
)

// LoginError is returned by Login and Signup. Message is ready to show.
type LoginError struct {
	Reason  Reason
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }

func (e *LoginError) Unwrap() error { return e.Err }

func newLoginError(err error) *LoginError {
	reason := ReasonRequest
	switch api.Classify(err) {
	case api.CategoryHTTP:
		reason = ReasonAuth
	case api.CategoryConnectivity:
		reason = ReasonConnectivity
	}
	return &LoginError{Reason: reason, Message: apperrors.Message(err), Err: err}
}

// Store is the single source of truth for the signed-in user.
type Store struct {
	mu     sync.RWMutex
	vault  Vault
	auth   Authenticator
	user   *models.User
	loaded chan struct{}
	once   sync.Once
}

// New creates a Store. Call Restore before reading it.
func New(vault Vault, auth Authenticator) *Store {
	return &Store{
		vault:  vault,
		auth:   auth,
		loaded: make(chan struct{}),
	}
}

// SetAuthenticator wires the API client after construction. The client
// needs the Store as its TokenSource, so one side is set late.
func (s *Store) SetAuthenticator(auth Authenticator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = auth
}

// Loaded is closed once Restore has finished, whatever its outcome.
func (s *Store) Loaded() <-chan struct{} {
	return s.loaded
}

// Restore reads the persisted session. A malformed or partial record is
// discarded and cleared. Only vault read failures are returned.
func (s *Store) Restore() error {
	defer s.once.Do(func() { close(s.loaded) })

	data, err := s.vault.Load()
	if errors.Is(err, ErrNoSession) {
		s.setUser(nil)
		return nil
	}
	if err != nil {
		s.setUser(nil)
		return fmt.Errorf("failed to read session: %w", err)
	}

	var user models.User
	if uErr := json.Unmarshal([]byte(data), &user); uErr != nil || !user.Complete() {
		logger.Warn("discarding unreadable session", "error", uErr)
		s.setUser(nil)
		if cErr := s.vault.Clear(); cErr != nil {
			logger.Warn("failed to clear unreadable session", "error", cErr)
		}
		return nil
	}

	s.setUser(&user)
	return nil
}

// Login authenticates and adopts the returned session. On failure the
// store is unchanged and the error is a *LoginError.
func (s *Store) Login(ctx context.Context, creds models.Credentials) (*models.User, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return nil, &LoginError{Reason: ReasonInvalid, Message: "username and password are required"}
	}

	user, err := s.authenticator().Login(ctx, creds)
	if err != nil {
		logger.Error("login failed", "username", creds.Username, "error", err)
		return nil, newLoginError(err)
	}
	if !user.Complete() {
		return nil, &LoginError{Reason: ReasonAuth, Message: "Server returned an incomplete session"}
	}

	if err := s.persist(user); err != nil {
		return nil, err
	}
	s.setUser(user)
	logger.Info("logged in", "username", user.Username)
	return s.User(), nil
}

// Signup registers an account without logging in.
func (s *Store) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.Email) == "" {
		return "", &LoginError{Reason: ReasonInvalid, Message: "username, email and password are required"}
	}
	msg, err := s.authenticator().Signup(ctx, req)
	if err != nil {
		logger.Error("signup failed", "username", req.Username, "error", err)
		return "", newLoginError(err)
	}
	return msg, nil
}

// Logout clears persisted and in-memory state. Memory is cleared even if
// the vault fails.
func (s *Store) Logout() error {
	s.setUser(nil)
	if err := s.vault.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UpdateGroupMembership sets or clears (nil id) the user's group.
func (s *Store) UpdateGroupMembership(groupID *int64, groupName string) error {
	return s.update(func(u *models.User) {
		if groupID == nil {
			u.FamilyID = nil
			u.FamilyName = ""
			return
		}
		id := *groupID
		u.FamilyID = &id
		u.FamilyName = groupName
	})
}

// UpdateProfileFields shallow-merges p into the current user.
func (s *Store) UpdateProfileFields(p models.ProfileUpdate) error {
	return s.update(p.Apply)
}

// update applies fn to a copy, persists it, then adopts it. No-op when
// logged out.
func (s *Store) update(fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	next := cloneUser(s.user)
	fn(next)
	if err := s.persistLocked(next); err != nil {
		return err
	}
	s.user = next
	return nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Token implements api.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Token
}

func (s *Store) authenticator() Authenticator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) setUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = cloneUser(u)
}

func (s *Store) persist(u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(u)
}

func (s *Store) persistLocked(u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.vault.Save(string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.FamilyID != nil {
		id := *u.FamilyID
		c.FamilyID = &id
	}
	return &c
}
