package model

import "encoding/json"

// City is immutable reference data describing an airport city.
type City struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Country string `json:"country"`
}

// Plane is immutable reference data describing an aircraft type.
type Plane struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Manufacturer string `json:"manufacturer"`
}

// Flight represents a bookable flight between two cities on a calendar date.
// FromCityID and ToCityID are lookup-only references: they may dangle if the
// referenced city is absent from the loaded set, in which case callers fall
// back to displaying the raw id. TravelDate equals the date component of
// DepartureTime in the canonical dataset.
type Flight struct {
	ID            string  `json:"id"`
	FlightNumber  string  `json:"flight_number"`
	FromCityID    string  `json:"from_city_id"`
	ToCityID      string  `json:"to_city_id"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	Price         float64 `json:"price"`
	TravelDate    string  `json:"travel_date"`
	PlaneID       string  `json:"plane_id"`
}

// UserRecord mirrors a row of the users table. PasswordHash is a bcrypt
// hash, never the plaintext.
type UserRecord struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
}

// AuthUser is the password-free projection of a user account returned by
// the authentication service and persisted as the session identity.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// BookingRecord mirrors a row of the flight_booked table. FlightInfo is the
// optional inline join returned by the backend when the select spec asks
// for it.
type BookingRecord struct {
	BookingID  string     `json:"booking_id"`
	UserID     string     `json:"user_id"`
	FlightID   string     `json:"flight_id"`
	CreatedAt  string     `json:"created_at,omitempty"`
	FlightInfo FlightJoin `json:"flight_info,omitempty"`
}

// FlightJoin holds an inline flight join. PostgREST encodes the embedded
// resource as a single object or an array depending on how the relationship
// is declared, so both shapes decode into the same slice.
type FlightJoin []*Flight

func (j *FlightJoin) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*j = nil
		return nil
	}
	if data[0] == '[' {
		var flights []*Flight
		if err := json.Unmarshal(data, &flights); err != nil {
			return err
		}
		*j = flights
		return nil
	}
	var flight Flight
	if err := json.Unmarshal(data, &flight); err != nil {
		return err
	}
	*j = FlightJoin{&flight}
	return nil
}

// First returns the joined flight, or nil when the join is absent.
func (j FlightJoin) First() *Flight {
	if len(j) == 0 {
		return nil
	}
	return j[0]
}

// Booking is the client-side view of a booking with its lazily resolved
// flight snapshot. Flight is nil when no source could resolve the id.
type Booking struct {
	BookingID string  `json:"bookingId"`
	UserID    string  `json:"userId"`
	FlightID  string  `json:"flightId"`
	Flight    *Flight `json:"flight,omitempty"`
}

// FlightQuery selects flights for one directed route on one travel date.
type FlightQuery struct {
	FromCityID string
	ToCityID   string
	TravelDate string // yyyy-mm-dd
}
