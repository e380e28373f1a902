package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/Joseph-eiei/AirlineApp/internal/fixtures"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
	"github.com/Joseph-eiei/AirlineApp/internal/supabase"
)

const (
	usersTable    = "users"
	citiesTable   = "cities"
	planesTable   = "planes"
	flightsTable  = "flight_info"
	bookingsTable = "flight_booked"

	userSelect    = "id,username,password_hash"
	bookingSelect = "booking_id,user_id,flight_id,created_at"
)

// RemoteBackend reads and writes through the Supabase REST client. Read
// paths degrade softly to the fixture dataset when the backend is
// unreachable; write paths fail hard, since fabricating a successful write
// would corrupt state.
type RemoteBackend struct {
	client *supabase.Client
	logger *slog.Logger
}

func NewRemote(client *supabase.Client, logger *slog.Logger) *RemoteBackend {
	return &RemoteBackend{
		client: client,
		logger: logger.With("backend", "remote"),
	}
}

func (b *RemoteBackend) UserByUsername(ctx context.Context, username string) (*model.UserRecord, error) {
	query := url.Values{}
	query.Set("username", "eq."+username)
	query.Set("limit", "1")

	res, err := b.client.Do(ctx, supabase.Request{
		Table:  usersTable,
		Query:  query,
		Select: userSelect,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to contact server: %w", err)
	}

	var records []model.UserRecord
	if err := res.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode user rows: %w", err)
	}
	if len(records) == 0 {
		return nil, model.ErrNotFound
	}
	return &records[0], nil
}

func (b *RemoteBackend) CreateUser(ctx context.Context, record model.UserRecord) (model.UserRecord, error) {
	res, err := b.client.Do(ctx, supabase.Request{
		Table:  usersTable,
		Method: "POST",
		Body:   record,
		Prefer: "return=representation",
		Select: userSelect,
	})
	if err != nil {
		return model.UserRecord{}, fmt.Errorf("failed to create account: %w", err)
	}

	var created []model.UserRecord
	if err := res.Decode(&created); err != nil {
		return model.UserRecord{}, fmt.Errorf("failed to decode created account: %w", err)
	}
	if len(created) == 0 {
		return model.UserRecord{}, fmt.Errorf("failed to create account: empty representation")
	}
	return created[0], nil
}

func (b *RemoteBackend) Cities(ctx context.Context) ([]model.City, error) {
	res, err := b.client.Do(ctx, supabase.Request{Table: citiesTable})
	if err != nil || len(res.Data) == 0 {
		b.logger.Warn("falling back to fixture cities", "error", err)
		return fixtures.Cities(), nil
	}

	var cities []model.City
	if err := res.Decode(&cities); err != nil {
		b.logger.Warn("falling back to fixture cities", "error", err)
		return fixtures.Cities(), nil
	}
	return cities, nil
}

func (b *RemoteBackend) Planes(ctx context.Context) ([]model.Plane, error) {
	res, err := b.client.Do(ctx, supabase.Request{Table: planesTable})
	if err != nil || len(res.Data) == 0 {
		b.logger.Warn("falling back to fixture planes", "error", err)
		return fixtures.Planes(), nil
	}

	var planes []model.Plane
	if err := res.Decode(&planes); err != nil {
		b.logger.Warn("falling back to fixture planes", "error", err)
		return fixtures.Planes(), nil
	}
	return planes, nil
}

func (b *RemoteBackend) SearchFlights(ctx context.Context, q model.FlightQuery) ([]model.Flight, error) {
	query := url.Values{}
	query.Set("from_city_id", "eq."+q.FromCityID)
	query.Set("to_city_id", "eq."+q.ToCityID)
	query.Set("travel_date", "eq."+q.TravelDate)
	query.Set("order", "departure_time.asc")

	res, err := b.client.Do(ctx, supabase.Request{Table: flightsTable, Query: query})
	if err != nil || len(res.Data) == 0 {
		b.logger.Warn("falling back to fixture flights", "error", err)
		return fixtures.Search(q), nil
	}

	var flights []model.Flight
	if err := res.Decode(&flights); err != nil {
		b.logger.Warn("falling back to fixture flights", "error", err)
		return fixtures.Search(q), nil
	}
	return flights, nil
}

func (b *RemoteBackend) FlightByID(ctx context.Context, id string) (*model.Flight, error) {
	query := url.Values{}
	query.Set("id", "eq."+id)

	res, err := b.client.Do(ctx, supabase.Request{Table: flightsTable, Query: query})
	if err == nil && len(res.Data) > 0 {
		var flights []model.Flight
		if err := res.Decode(&flights); err == nil && len(flights) > 0 {
			return &flights[0], nil
		}
	}

	b.logger.Warn("falling back to fixture flight lookup", "flightId", id, "error", err)
	return fixtures.FlightByID(id)
}

func (b *RemoteBackend) BookingsByUser(ctx context.Context, userID string) ([]model.BookingRecord, error) {
	query := url.Values{}
	query.Set("user_id", "eq."+userID)

	res, err := b.client.Do(ctx, supabase.Request{
		Table:  bookingsTable,
		Query:  query,
		Select: bookingSelect + ",flight_info(*)",
	})
	if err != nil {
		// Reads degrade to an empty list rather than failing the refresh.
		b.logger.Warn("failed to fetch bookings", "userId", userID, "error", err)
		return []model.BookingRecord{}, nil
	}

	var records []model.BookingRecord
	if err := res.Decode(&records); err != nil {
		b.logger.Warn("failed to decode bookings", "userId", userID, "error", err)
		return []model.BookingRecord{}, nil
	}
	return records, nil
}

func (b *RemoteBackend) CreateBooking(ctx context.Context, record model.BookingRecord) (model.BookingRecord, error) {
	res, err := b.client.Do(ctx, supabase.Request{
		Table:  bookingsTable,
		Method: "POST",
		Body: map[string]string{
			"booking_id": record.BookingID,
			"user_id":    record.UserID,
			"flight_id":  record.FlightID,
		},
		Prefer: "return=representation",
		Select: bookingSelect,
	})
	if err != nil {
		return model.BookingRecord{}, fmt.Errorf("failed to book flight: %w", err)
	}

	var created []model.BookingRecord
	if err := res.Decode(&created); err != nil {
		return model.BookingRecord{}, fmt.Errorf("failed to decode booking: %w", err)
	}
	if len(created) == 0 {
		return model.BookingRecord{}, fmt.Errorf("failed to book flight: empty representation")
	}
	return created[0], nil
}

func (b *RemoteBackend) DeleteBooking(ctx context.Context, bookingID string) error {
	query := url.Values{}
	query.Set("booking_id", "eq."+bookingID)

	_, err := b.client.Do(ctx, supabase.Request{
		Table:  bookingsTable,
		Method: "DELETE",
		Query:  query,
	})
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	return nil
}
