package localstore

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

const usersKey = "@airlineapp:users"

// Fixture account present after first seeding so the app is usable out of
// the box in local mode. The hash is bcrypt cost 10 of "traveler123".
var seedUsers = []model.UserRecord{
	{
		ID:           "mock-user-001",
		Username:     "traveler",
		PasswordHash: "$2b$10$JxKk8YHy2NkqUyneWWZWg.EhRrZoFeSJdUeNQ5Ci562ejdApqWt5.",
	},
}

// UserStore persists the account table as one JSON array. Every mutation
// reads the whole table, edits it, and writes the whole table back.
type UserStore struct {
	storage *Storage
	logger  *slog.Logger
	mu      sync.Mutex
}

func NewUserStore(storage *Storage, logger *slog.Logger) *UserStore {
	return &UserStore{
		storage: storage,
		logger:  logger.With("component", "localstore"),
	}
}

// Load returns the account table, seeding the fixture account on the very
// first access. Seeding is idempotent: any existing table, even an empty
// one, is never overwritten.
func (s *UserStore) Load() ([]model.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save replaces the whole account table.
func (s *UserStore) Save(users []model.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(users)
}

// Append re-reads the table, verifies the username is still free (case-
// insensitive), and writes the table back with the record added. The store
// lock makes the read-modify-write atomic within this process.
func (s *UserStore) Append(record model.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadLocked()
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Username, record.Username) {
			return model.ErrUsernameExists
		}
	}
	return s.saveLocked(append(users, record))
}

func (s *UserStore) loadLocked() ([]model.UserRecord, error) {
	raw, ok, err := s.storage.Get(usersKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		seeded, err := json.Marshal(seedUsers)
		if err != nil {
			return nil, err
		}
		if err := s.storage.Set(usersKey, seeded); err != nil {
			return nil, err
		}
		raw = seeded
	}

	var users []model.UserRecord
	if err := json.Unmarshal(raw, &users); err != nil {
		s.logger.Warn("failed to parse local users, treating table as empty", "error", err)
		return []model.UserRecord{}, nil
	}
	return users, nil
}

func (s *UserStore) saveLocked(users []model.UserRecord) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return s.storage.Set(usersKey, data)
}
