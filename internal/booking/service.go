// Package booking creates, lists, and cancels the current user's bookings,
// reconciling backend records with denormalized flight snapshots. The
// in-memory booking list is the single client-side source of truth;
// refresh replaces it wholesale, and subscribers are told after every
// change instead of relying on any implicit re-render machinery.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/Joseph-eiei/AirlineApp/internal/backend"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

// maxIDAttempts bounds booking-id regeneration when the generated id
// collides with an existing one. Collisions require identical millisecond
// timestamp and random suffix, so one retry almost always suffices.
const maxIDAttempts = 5

// Service manages the booking list for one authenticated user.
type Service struct {
	backend backend.Backend
	userID  string
	logger  *slog.Logger

	mu       sync.Mutex
	bookings []model.Booking

	subMu  sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewService builds a booking service for the given user. An empty user id
// falls back to the anonymous placeholder the original dataset uses.
func NewService(be backend.Backend, userID string, logger *slog.Logger) *Service {
	if userID == "" {
		userID = "u1"
	}
	return &Service{
		backend: be,
		userID:  userID,
		logger:  logger.With("component", "booking"),
		subs:    make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every change to the booking
// list. The returned function cancels the subscription.
func (s *Service) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Service) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Book reserves the flight for the current user. The persisted record is
// normalized into a Booking with a flight snapshot resolved lazily: inline
// join first, then a backend lookup, then nothing.
func (s *Service) Book(ctx context.Context, flightID string) error {
	var created model.BookingRecord
	var err error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		record := model.BookingRecord{
			BookingID: newBookingID(s.userID, flightID),
			UserID:    s.userID,
			FlightID:  flightID,
		}
		created, err = s.backend.CreateBooking(ctx, record)
		if !errors.Is(err, model.ErrBookingExists) {
			break
		}
	}
	if err != nil {
		return err
	}

	item := s.normalize(ctx, created)

	s.mu.Lock()
	kept := s.bookings[:0]
	for _, b := range s.bookings {
		if b.BookingID != item.BookingID {
			kept = append(kept, b)
		}
	}
	s.bookings = append(kept, item)
	s.mu.Unlock()

	s.notify()
	return nil
}

// Cancel deletes the booking and removes it from the list.
func (s *Service) Cancel(ctx context.Context, bookingID string) error {
	if err := s.backend.DeleteBooking(ctx, bookingID); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.bookings[:0]
	for _, b := range s.bookings {
		if b.BookingID != bookingID {
			kept = append(kept, b)
		}
	}
	s.bookings = kept
	s.mu.Unlock()

	s.notify()
	return nil
}

// Refresh re-fetches the user's bookings and replaces the in-memory list
// with the result. Flight snapshots missing an inline join are resolved
// concurrently, one lookup per booking, and reassembled in original list
// order regardless of completion order.
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.backend.BookingsByUser(ctx, s.userID)
	if err != nil {
		return err
	}

	items := make([]model.Booking, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		items[i] = model.Booking{
			BookingID: record.BookingID,
			UserID:    record.UserID,
			FlightID:  record.FlightID,
			Flight:    record.FlightInfo.First(),
		}
		if items[i].Flight == nil {
			wg.Add(1)
			go func(i int, flightID string) {
				defer wg.Done()
				items[i].Flight = s.resolveFlight(ctx, flightID)
			}(i, record.FlightID)
		}
	}
	wg.Wait()

	s.mu.Lock()
	s.bookings = items
	s.mu.Unlock()

	s.notify()
	return nil
}

// Bookings returns a copy of the current booking list.
func (s *Service) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// BookingByFlight returns the current user's booking for a flight, or nil.
func (s *Service) BookingByFlight(flightID string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].FlightID == flightID {
			b := s.bookings[i]
			return &b
		}
	}
	return nil
}

// FilterUnbooked removes flights the user has already booked from a search
// result, keyed by flight id. It is recomputed per call, never cached.
func (s *Service) FilterUnbooked(flights []model.Flight) []model.Flight {
	s.mu.Lock()
	booked := make(map[string]struct{}, len(s.bookings))
	for _, b := range s.bookings {
		booked[b.FlightID] = struct{}{}
	}
	s.mu.Unlock()

	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if _, ok := booked[f.ID]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func (s *Service) normalize(ctx context.Context, record model.BookingRecord) model.Booking {
	item := model.Booking{
		BookingID: record.BookingID,
		UserID:    record.UserID,
		FlightID:  record.FlightID,
		Flight:    record.FlightInfo.First(),
	}
	if item.Flight == nil {
		item.Flight = s.resolveFlight(ctx, record.FlightID)
	}
	return item
}

func (s *Service) resolveFlight(ctx context.Context, flightID string) *model.Flight {
	flight, err := s.backend.FlightByID(ctx, flightID)
	if err != nil {
		s.logger.Warn("could not resolve flight for booking", "flightId", flightID, "error", err)
		return nil
	}
	return flight
}

// newBookingID builds a client-generated booking id unique enough to avoid
// server-side coordination: millisecond timestamp plus a random suffix,
// both base36.
func newBookingID(userID, flightID string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return fmt.Sprintf("booking-%s-%s-%s-%s", userID, flightID, ts, randomBase36(8))
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
