package booking_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-eiei/AirlineApp/internal/backend"
	"github.com/Joseph-eiei/AirlineApp/internal/booking"
	"github.com/Joseph-eiei/AirlineApp/internal/devserver"
	"github.com/Joseph-eiei/AirlineApp/internal/fixtures"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
	"github.com/Joseph-eiei/AirlineApp/internal/supabase"
)

const testFlightID = "flight-NYC-LAX-2025-12-01-0"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocalBookingService(t *testing.T) *booking.Service {
	t.Helper()
	users := localstore.NewUserStore(localstore.NewStorage(t.TempDir()), testLogger())
	be := backend.NewLocal(users, testLogger())
	return booking.NewService(be, "mock-user-001", testLogger())
}

func TestBook_Local(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	require.NoError(t, svc.Book(ctx, testFlightID))

	items := svc.Bookings()
	require.Len(t, items, 1)
	b := items[0]
	assert.Equal(t, "mock-user-001", b.UserID)
	assert.Equal(t, testFlightID, b.FlightID)
	assert.Regexp(t, `^booking-mock-user-001-flight-NYC-LAX-2025-12-01-0-[0-9a-z]+-[0-9a-z]{8}$`, b.BookingID)

	// The flight snapshot is resolved from the fixture dataset.
	require.NotNil(t, b.Flight)
	assert.Equal(t, "AB101", b.Flight.FlightNumber)
	assert.Equal(t, "2025-12-01", b.Flight.TravelDate)
}

func TestBookThenCancel_RestoresList(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	require.NoError(t, svc.Book(ctx, "flight-CHI-MIA-2025-12-10-1"))
	before := svc.Bookings()
	require.Len(t, before, 1)

	require.NoError(t, svc.Book(ctx, testFlightID))
	added := svc.BookingByFlight(testFlightID)
	require.NotNil(t, added)

	require.NoError(t, svc.Cancel(ctx, added.BookingID))

	after := svc.Bookings()
	require.Len(t, after, len(before))
	assert.Equal(t, before[0].BookingID, after[0].BookingID)
	assert.Nil(t, svc.BookingByFlight(testFlightID))
}

func TestRefresh_LocalReturnsRetainedList(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	require.NoError(t, svc.Book(ctx, testFlightID))
	require.NoError(t, svc.Refresh(ctx))

	items := svc.Bookings()
	require.Len(t, items, 1)
	assert.Equal(t, testFlightID, items[0].FlightID)
	require.NotNil(t, items[0].Flight, "refresh must re-resolve flight snapshots")
}

func TestBookingByFlight(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	assert.Nil(t, svc.BookingByFlight(testFlightID))
	require.NoError(t, svc.Book(ctx, testFlightID))

	got := svc.BookingByFlight(testFlightID)
	require.NotNil(t, got)
	assert.Equal(t, testFlightID, got.FlightID)
}

func TestFilterUnbooked(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	results := fixtures.Search(model.FlightQuery{
		FromCityID: "city-nyc",
		ToCityID:   "city-lax",
		TravelDate: "2025-12-01",
	})
	require.Len(t, results, 3)

	assert.Len(t, svc.FilterUnbooked(results), 3)

	require.NoError(t, svc.Book(ctx, testFlightID))

	filtered := svc.FilterUnbooked(results)
	require.Len(t, filtered, 2)
	for _, f := range filtered {
		assert.NotEqual(t, testFlightID, f.ID)
	}
}

func TestSubscribe_NotifiesOnEveryChange(t *testing.T) {
	svc := newLocalBookingService(t)
	ctx := context.Background()

	var events int
	unsubscribe := svc.Subscribe(func() { events++ })

	require.NoError(t, svc.Book(ctx, testFlightID))
	assert.Equal(t, 1, events)

	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, 2, events)

	b := svc.BookingByFlight(testFlightID)
	require.NotNil(t, b)
	require.NoError(t, svc.Cancel(ctx, b.BookingID))
	assert.Equal(t, 3, events)

	unsubscribe()
	require.NoError(t, svc.Refresh(ctx))
	assert.Equal(t, 3, events, "no notifications after unsubscribe")
}

func TestBooking_RemoteMode(t *testing.T) {
	store, err := devserver.NewMemStore()
	require.NoError(t, err)
	ts := httptest.NewServer(devserver.NewServer(store, "test-key").Router())
	defer ts.Close()

	client := supabase.New(ts.URL, "test-key", testLogger())
	be := backend.NewRemote(client, testLogger())
	svc := booking.NewService(be, "mock-user-001", testLogger())
	ctx := context.Background()

	require.NoError(t, svc.Book(ctx, testFlightID))

	// A fresh service for the same user sees the persisted booking, with
	// the flight snapshot taken from the server-side join.
	svc2 := booking.NewService(be, "mock-user-001", testLogger())
	require.NoError(t, svc2.Refresh(ctx))
	items := svc2.Bookings()
	require.Len(t, items, 1)
	assert.Equal(t, testFlightID, items[0].FlightID)
	require.NotNil(t, items[0].Flight)
	assert.Equal(t, "AB101", items[0].Flight.FlightNumber)

	require.NoError(t, svc2.Cancel(ctx, items[0].BookingID))
	require.NoError(t, svc2.Refresh(ctx))
	assert.Empty(t, svc2.Bookings())

	// Another user's refresh never sees those bookings.
	other := booking.NewService(be, "someone-else", testLogger())
	require.NoError(t, other.Refresh(ctx))
	assert.Empty(t, other.Bookings())
}
