// Package backend abstracts where flight, user, and booking data lives.
// Exactly one implementation is selected at composition time from the
// configuration gate: RemoteBackend against a configured Supabase project,
// or LocalBackend over the device-local store and the fixture dataset.
// Callers depend only on this interface and never re-check configuration
// per call.
package backend

import (
	"context"
	"log/slog"

	"github.com/Joseph-eiei/AirlineApp/internal/config"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
	"github.com/Joseph-eiei/AirlineApp/internal/supabase"
)

// Backend is the operation set shared by both data-store modes.
type Backend interface {
	// UserByUsername returns the account with the given username, or
	// model.ErrNotFound when no such account exists.
	UserByUsername(ctx context.Context, username string) (*model.UserRecord, error)
	// CreateUser inserts a new account and returns the stored record.
	CreateUser(ctx context.Context, record model.UserRecord) (model.UserRecord, error)

	Cities(ctx context.Context) ([]model.City, error)
	Planes(ctx context.Context) ([]model.Plane, error)
	SearchFlights(ctx context.Context, q model.FlightQuery) ([]model.Flight, error)
	// FlightByID returns model.ErrNotFound when the id resolves nowhere.
	FlightByID(ctx context.Context, id string) (*model.Flight, error)

	BookingsByUser(ctx context.Context, userID string) ([]model.BookingRecord, error)
	CreateBooking(ctx context.Context, record model.BookingRecord) (model.BookingRecord, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

// New selects the backend for the given configuration. Remote mode requires
// both the backend URL and the access key; anything less runs local.
func New(cfg config.Config, logger *slog.Logger) Backend {
	if cfg.IsConfigured() {
		client := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, logger)
		return NewRemote(client, logger)
	}

	storage := localstore.NewStorage(cfg.DataDir)
	return NewLocal(localstore.NewUserStore(storage, logger), logger)
}
