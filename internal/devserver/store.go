// Package devserver is a self-hostable stand-in for the Supabase project
// the mobile client expects: the subset of the PostgREST surface the data
// layer consumes, plus a realtime channel for booking events. It backs onto
// an in-memory store seeded with the fixture dataset, or onto Postgres when
// a DSN is supplied.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrBadFilter    = errors.New("unsupported filter")
)

// Row is one table row in wire shape: snake_case keys, JSON-ready values.
type Row = map[string]any

// Filter is an equality constraint parsed from an `eq.` query parameter.
type Filter struct {
	Column string
	Value  string
}

// Order is a single-column sort parsed from the `order` query parameter.
type Order struct {
	Column     string
	Descending bool
}

// Query is the parsed read/write selector for one request.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int      // 0 means no limit
	Embed   []string // embedded resources requested in the select spec
}

// Store is the persistence behind the REST surface. Implementations return
// ErrUnknownTable for tables outside the fixed schema.
type Store interface {
	Select(ctx context.Context, table string, q Query) ([]Row, error)
	Insert(ctx context.Context, table string, rows []Row, upsert bool) ([]Row, error)
	Update(ctx context.Context, table string, q Query, changes Row) ([]Row, error)
	Delete(ctx context.Context, table string, q Query) ([]Row, error)
}

// Tables served by the dev backend.
const (
	TableUsers    = "users"
	TableCities   = "cities"
	TablePlanes   = "planes"
	TableFlights  = "flight_info"
	TableBookings = "flight_booked"
)

// primaryKeys drives upserts and server-side id assignment.
var primaryKeys = map[string]string{
	TableUsers:    "id",
	TableCities:   "id",
	TablePlanes:   "id",
	TableFlights:  "id",
	TableBookings: "booking_id",
}

// toRow converts a struct with JSON tags into wire shape.
func toRow(v any) (Row, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal row: %w", err)
	}
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("failed to unmarshal row: %w", err)
	}
	return row, nil
}

func rowString(row Row, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
