package backend

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Joseph-eiei/AirlineApp/internal/fixtures"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

// LocalBackend serves everything from the device: accounts from the local
// store, reference data from the fixture dataset, and bookings from an
// in-memory list that lives for the process lifetime only. Username lookups
// here are case-insensitive, unlike the remote eq. filter; the asymmetry is
// intentional and mirrors the stored-table semantics.
type LocalBackend struct {
	users  *localstore.UserStore
	logger *slog.Logger

	mu       sync.Mutex
	bookings []model.BookingRecord
}

func NewLocal(users *localstore.UserStore, logger *slog.Logger) *LocalBackend {
	return &LocalBackend{
		users:  users,
		logger: logger.With("backend", "local"),
	}
}

func (b *LocalBackend) UserByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	users, err := b.users.Load()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, model.ErrNotFound
}

func (b *LocalBackend) CreateUser(ctx context.Context, record model.UserRecord) (model.UserRecord, error) {
	if err := b.users.Append(record); err != nil {
		return model.UserRecord{}, err
	}
	return record, nil
}

func (b *LocalBackend) Cities(ctx context.Context) ([]model.City, error) {
	return fixtures.Cities(), nil
}

func (b *LocalBackend) Planes(ctx context.Context) ([]model.Plane, error) {
	return fixtures.Planes(), nil
}

func (b *LocalBackend) SearchFlights(ctx context.Context, q model.FlightQuery) ([]model.Flight, error) {
	return fixtures.Search(q), nil
}

func (b *LocalBackend) FlightByID(ctx context.Context, id string) (*model.Flight, error) {
	return fixtures.FlightByID(id)
}

func (b *LocalBackend) BookingsByUser(ctx context.Context, userID string) ([]model.BookingRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var records []model.BookingRecord
	for _, rec := range b.bookings {
		if rec.UserID == userID {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (b *LocalBackend) CreateBooking(ctx context.Context, record model.BookingRecord) (model.BookingRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, rec := range b.bookings {
		if rec.BookingID == record.BookingID {
			return model.BookingRecord{}, model.ErrBookingExists
		}
	}
	b.bookings = append(b.bookings, record)
	return record, nil
}

func (b *LocalBackend) DeleteBooking(ctx context.Context, bookingID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := b.bookings[:0]
	for _, rec := range b.bookings {
		if rec.BookingID != bookingID {
			kept = append(kept, rec)
		}
	}
	b.bookings = kept
	return nil
}
