package localstore

import (
	"encoding/json"
	"log/slog"

	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

const sessionKey = "@airlineapp:user-session"

// SessionStore persists the authenticated user's identity across process
// restarts. Absence of the stored record means "no active session".
type SessionStore struct {
	storage *Storage
	logger  *slog.Logger
}

func NewSessionStore(storage *Storage, logger *slog.Logger) *SessionStore {
	return &SessionStore{
		storage: storage,
		logger:  logger.With("component", "session"),
	}
}

// Load returns the persisted session, or nil when nobody is logged in. A
// corrupt record is discarded rather than surfaced, so a bad write never
// locks the user out of the login screen.
func (s *SessionStore) Load() (*model.AuthUser, error) {
	raw, ok, err := s.storage.Get(sessionKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	var user model.AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		s.logger.Warn("failed to parse stored session", "error", err)
		return nil, nil
	}
	return &user, nil
}

// Save persists the session record.
func (s *SessionStore) Save(user model.AuthUser) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.storage.Set(sessionKey, data)
}

// Clear logs the user out by removing the session record.
func (s *SessionStore) Clear() error {
	return s.storage.Delete(sessionKey)
}
