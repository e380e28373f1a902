package devserver

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Joseph-eiei/AirlineApp/internal/fixtures"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

// MemStore keeps every table in memory, seeded with the fixture dataset and
// the fixture account so a fresh dev server serves the same data a local
// client would generate. Suitable for development and tests only.
type MemStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
}

// NewMemStore builds and seeds the store.
func NewMemStore() (*MemStore, error) {
	s := &MemStore{tables: map[string][]Row{
		TableUsers:    {},
		TableCities:   {},
		TablePlanes:   {},
		TableFlights:  {},
		TableBookings: {},
	}}

	seed := func(table string, v any) error {
		row, err := toRow(v)
		if err != nil {
			return err
		}
		s.tables[table] = append(s.tables[table], row)
		return nil
	}

	if err := seed(TableUsers, model.UserRecord{
		ID:           "mock-user-001",
		Username:     "traveler",
		PasswordHash: "$2b$10$JxKk8YHy2NkqUyneWWZWg.EhRrZoFeSJdUeNQ5Ci562ejdApqWt5.",
	}); err != nil {
		return nil, err
	}
	for _, c := range fixtures.Cities() {
		if err := seed(TableCities, c); err != nil {
			return nil, err
		}
	}
	for _, p := range fixtures.Planes() {
		if err := seed(TablePlanes, p); err != nil {
			return nil, err
		}
	}
	for _, f := range fixtures.Flights() {
		if err := seed(TableFlights, f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	var out []Row
	for _, row := range rows {
		if matches(row, q.Filters) {
			out = append(out, cloneRow(row))
		}
	}

	if q.Order != nil {
		col, desc := q.Order.Column, q.Order.Descending
		sort.SliceStable(out, func(i, j int) bool {
			a, b := fmt.Sprint(out[i][col]), fmt.Sprint(out[j][col])
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	for _, embed := range q.Embed {
		if table == TableBookings && embed == TableFlights {
			for _, row := range out {
				row[TableFlights] = s.flightByIDLocked(rowString(row, "flight_id"))
			}
		}
	}
	return out, nil
}

func (s *MemStore) Insert(ctx context.Context, table string, rows []Row, upsert bool) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	pk := primaryKeys[table]

	var inserted []Row
	for _, row := range rows {
		row = cloneRow(row)
		if rowString(row, pk) == "" {
			row[pk] = uuid.New().String()
		}
		if table == TableBookings && rowString(row, "created_at") == "" {
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}

		replaced := false
		for i, old := range existing {
			if rowString(old, pk) == rowString(row, pk) {
				if !upsert {
					return nil, fmt.Errorf("duplicate key on %s.%s", table, pk)
				}
				existing[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, row)
		}
		inserted = append(inserted, cloneRow(row))
	}

	s.tables[table] = existing
	return inserted, nil
}

func (s *MemStore) Update(ctx context.Context, table string, q Query, changes Row) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	var updated []Row
	for i, row := range rows {
		if !matches(row, q.Filters) {
			continue
		}
		for k, v := range changes {
			row[k] = v
		}
		rows[i] = row
		updated = append(updated, cloneRow(row))
	}
	return updated, nil
}

func (s *MemStore) Delete(ctx context.Context, table string, q Query) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, ok := s.tables[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	var deleted []Row
	kept := rows[:0]
	for _, row := range rows {
		if matches(row, q.Filters) {
			deleted = append(deleted, row)
		} else {
			kept = append(kept, row)
		}
	}
	s.tables[table] = kept
	return deleted, nil
}

func (s *MemStore) flightByIDLocked(id string) Row {
	for _, row := range s.tables[TableFlights] {
		if rowString(row, "id") == id {
			return cloneRow(row)
		}
	}
	return nil
}

func matches(row Row, filters []Filter) bool {
	for _, f := range filters {
		if fmt.Sprint(row[f.Column]) != f.Value {
			return false
		}
	}
	return true
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}
