// Package auth implements login and signup over whichever backend was
// selected at startup, plus session persistence so the current identity
// survives process restarts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/Joseph-eiei/AirlineApp/internal/backend"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

// bcryptCost matches the cost factor the seeded fixture hash was produced
// with; changing it would not invalidate old hashes but keeps new ones
// comparable in verification cost.
const bcryptCost = 10

// Service authenticates users against the active backend. Login never
// mutates the account store; signup's only side effect is the inserted
// account. Session persistence happens after a successful call.
type Service struct {
	backend  backend.Backend
	sessions *localstore.SessionStore
	logger   *slog.Logger
}

func NewService(be backend.Backend, sessions *localstore.SessionStore, logger *slog.Logger) *Service {
	return &Service{
		backend:  be,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
	}
}

// Login verifies the credentials and returns the password-free user
// projection. It distinguishes an unknown account (model.ErrAccountNotFound)
// from a bad password (model.ErrIncorrectPassword).
func (s *Service) Login(ctx context.Context, username, password string) (model.AuthUser, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.AuthUser{}, model.ErrMissingCredentials
	}

	record, err := s.backend.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.AuthUser{}, model.ErrAccountNotFound
		}
		return model.AuthUser{}, err
	}

	if !verifyPassword(record.PasswordHash, password) {
		return model.AuthUser{}, model.ErrIncorrectPassword
	}

	user := model.AuthUser{ID: record.ID, Username: record.Username}
	s.persistSession(user)
	return user, nil
}

// Signup validates the credentials, hashes the password, and inserts the
// account. Validation failures happen before any I/O.
func (s *Service) Signup(ctx context.Context, username, password string) (model.AuthUser, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return model.AuthUser{}, model.ErrUsernameTooShort
	}
	if len(password) < 6 {
		return model.AuthUser{}, model.ErrPasswordTooShort
	}

	hash, err := hashPassword(password)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("failed to hash password: %w", err)
	}

	if existing, err := s.backend.UserByUsername(ctx, username); err == nil && existing != nil {
		return model.AuthUser{}, model.ErrUsernameExists
	} else if err != nil && !errors.Is(err, model.ErrNotFound) {
		return model.AuthUser{}, err
	}

	created, err := s.backend.CreateUser(ctx, model.UserRecord{
		ID:           newUserID(),
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return model.AuthUser{}, err
	}

	user := model.AuthUser{ID: created.ID, Username: created.Username}
	s.persistSession(user)
	return user, nil
}

// Logout clears the persisted session.
func (s *Service) Logout() error {
	if s.sessions == nil {
		return nil
	}
	return s.sessions.Clear()
}

// CurrentUser returns the persisted session identity, or nil when nobody
// is logged in.
func (s *Service) CurrentUser() (*model.AuthUser, error) {
	if s.sessions == nil {
		return nil, nil
	}
	return s.sessions.Load()
}

func (s *Service) persistSession(user model.AuthUser) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Save(user); err != nil {
		s.logger.Warn("failed to persist session", "error", err)
	}
}

// newUserID builds a process-generated account id from a timestamp and a
// random suffix; only the local store uses it as the final id, a remote
// backend may reassign its own.
func newUserID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("user-%s-%s", ts, randomBase36(6))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
