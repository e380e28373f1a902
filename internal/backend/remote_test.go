package backend

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-eiei/AirlineApp/internal/config"
	"github.com/Joseph-eiei/AirlineApp/internal/fixtures"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
	"github.com/Joseph-eiei/AirlineApp/internal/supabase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&nopWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// brokenBackend returns a remote backend pointed at a server that fails
// every request.
func brokenBackend(t *testing.T) *RemoteBackend {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"db down"}`, http.StatusInternalServerError)
	}))
	t.Cleanup(ts.Close)
	return NewRemote(supabase.New(ts.URL, "key", discardLogger()), discardLogger())
}

func TestRemote_ReadsFallBackToFixtures(t *testing.T) {
	b := brokenBackend(t)
	ctx := context.Background()

	cities, err := b.Cities(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Cities(), cities)

	planes, err := b.Planes(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Planes(), planes)

	q := model.FlightQuery{FromCityID: "city-nyc", ToCityID: "city-lax", TravelDate: "2025-12-01"}
	flights, err := b.SearchFlights(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, fixtures.Search(q), flights)

	flight, err := b.FlightByID(ctx, "flight-NYC-LAX-2025-12-01-0")
	require.NoError(t, err)
	assert.Equal(t, "AB101", flight.FlightNumber)

	_, err = b.FlightByID(ctx, "flight-does-not-exist")
	assert.ErrorIs(t, err, model.ErrNotFound)

	bookings, err := b.BookingsByUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestRemote_WritesFailHard(t *testing.T) {
	b := brokenBackend(t)
	ctx := context.Background()

	_, err := b.CreateUser(ctx, model.UserRecord{ID: "u-1", Username: "x", PasswordHash: "h"})
	require.Error(t, err)

	_, err = b.CreateBooking(ctx, model.BookingRecord{BookingID: "b-1", UserID: "u-1", FlightID: "f-1"})
	require.Error(t, err)

	require.Error(t, b.DeleteBooking(ctx, "b-1"))

	_, err = b.UserByUsername(ctx, "traveler")
	require.Error(t, err, "credential lookups never fall back to fixture data")
}

func TestNew_SelectsModeFromConfiguration(t *testing.T) {
	remote := New(config.Config{
		SupabaseURL: "http://127.0.0.1:1",
		SupabaseKey: "key",
		DataDir:     t.TempDir(),
	}, discardLogger())
	assert.IsType(t, &RemoteBackend{}, remote)

	// Key without URL (and vice versa) is not configured.
	local := New(config.Config{SupabaseKey: "key", DataDir: t.TempDir()}, discardLogger())
	assert.IsType(t, &LocalBackend{}, local)
}
