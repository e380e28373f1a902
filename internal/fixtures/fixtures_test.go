package fixtures

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

func TestFlights_DatasetShape(t *testing.T) {
	flights := Flights()

	// 6 cities, 30 directed pairs, 31 days, 3 slots per day.
	require.Len(t, flights, 30*31*3)

	seen := make(map[string]struct{}, len(flights))
	for _, f := range flights {
		_, dup := seen[f.ID]
		require.False(t, dup, "duplicate flight id %s", f.ID)
		seen[f.ID] = struct{}{}
	}
}

func TestFlights_TravelDateMatchesDeparture(t *testing.T) {
	for _, f := range Flights() {
		dep, err := time.Parse(time.RFC3339, f.DepartureTime)
		require.NoError(t, err)
		assert.Equal(t, dep.UTC().Format("2006-01-02"), f.TravelDate, "flight %s", f.ID)

		arr, err := time.Parse(time.RFC3339, f.ArrivalTime)
		require.NoError(t, err)
		assert.True(t, arr.After(dep), "flight %s arrives before it departs", f.ID)
	}
}

func TestFlights_FirstGeneratedFlight(t *testing.T) {
	f := Flights()[0]

	assert.Equal(t, "flight-NYC-LAX-2025-12-01-0", f.ID)
	assert.Equal(t, "AB101", f.FlightNumber)
	assert.Equal(t, "city-nyc", f.FromCityID)
	assert.Equal(t, "city-lax", f.ToCityID)
	assert.Equal(t, "2025-12-01T09:00:00Z", f.DepartureTime)
	assert.Equal(t, "2025-12-01T12:00:00Z", f.ArrivalTime)
	assert.Equal(t, 134.0, f.Price)
	assert.Equal(t, "2025-12-01", f.TravelDate)
	assert.Equal(t, "plane-b737", f.PlaneID)
}

func TestSearch(t *testing.T) {
	got := Search(model.FlightQuery{
		FromCityID: "city-nyc",
		ToCityID:   "city-chi",
		TravelDate: "2025-12-15",
	})

	require.Len(t, got, 3)
	for slot, f := range got {
		assert.Equal(t, "city-nyc", f.FromCityID)
		assert.Equal(t, "city-chi", f.ToCityID)
		assert.Equal(t, "2025-12-15", f.TravelDate)
		assert.True(t, strings.HasSuffix(f.ID, "-"+string(rune('0'+slot))), "unexpected slot order for %s", f.ID)
	}

	// Departures step by four hours per slot with the route offset applied.
	assert.Equal(t, "2025-12-15T10:00:00Z", got[0].DepartureTime)
	assert.Equal(t, "2025-12-15T14:00:00Z", got[1].DepartureTime)
	assert.Equal(t, "2025-12-15T18:00:00Z", got[2].DepartureTime)
}

func TestSearch_NoMatches(t *testing.T) {
	assert.Empty(t, Search(model.FlightQuery{
		FromCityID: "city-nyc",
		ToCityID:   "city-nyc",
		TravelDate: "2025-12-01",
	}))
	assert.Empty(t, Search(model.FlightQuery{
		FromCityID: "city-nyc",
		ToCityID:   "city-lax",
		TravelDate: "2026-01-01",
	}))
}

func TestFlightByID(t *testing.T) {
	f, err := FlightByID("flight-DEN-MIA-2025-12-31-2")
	require.NoError(t, err)
	assert.Equal(t, "city-den", f.FromCityID)
	assert.Equal(t, "city-mia", f.ToCityID)
	assert.Equal(t, "2025-12-31", f.TravelDate)

	_, err = FlightByID("flight-XXX-YYY-2025-12-01-0")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
