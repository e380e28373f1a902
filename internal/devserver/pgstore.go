package devserver

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// Allowed columns per table; filters and inserts are validated against this
// before any SQL is built, so request input never reaches the query text.
var tableColumns = map[string][]string{
	TableUsers:    {"id", "username", "password_hash"},
	TableCities:   {"id", "name", "code", "country"},
	TablePlanes:   {"id", "name", "manufacturer"},
	TableFlights:  {"id", "flight_number", "from_city_id", "to_city_id", "departure_time", "arrival_time", "price", "travel_date", "plane_id"},
	TableBookings: {"booking_id", "user_id", "flight_id", "created_at"},
}

// PGStore persists the dev backend's tables in Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects, ensures the schema exists, and seeds reference data
// if the flights table is empty.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	s := &PGStore{pool: pool}
	if err := s.seed(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *PGStore) Close() { s.pool.Close() }

func (s *PGStore) seed(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM flight_info").Scan(&count); err != nil {
		return fmt.Errorf("failed to count flights: %w", err)
	}
	if count > 0 {
		return nil
	}

	mem, err := NewMemStore()
	if err != nil {
		return err
	}
	for _, table := range []string{TableUsers, TableCities, TablePlanes, TableFlights} {
		rows, err := mem.Select(ctx, table, Query{})
		if err != nil {
			return err
		}
		if _, err := s.Insert(ctx, table, rows, true); err != nil {
			return fmt.Errorf("failed to seed %s: %w", table, err)
		}
	}
	return nil
}

func (s *PGStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), table)
	where, args, err := buildWhere(table, q.Filters)
	if err != nil {
		return nil, err
	}
	sql += where

	if q.Order != nil {
		if !validColumn(table, q.Order.Column) {
			return nil, fmt.Errorf("%w: order column %q", ErrBadFilter, q.Order.Column)
		}
		dir := "ASC"
		if q.Order.Descending {
			dir = "DESC"
		}
		sql += fmt.Sprintf(" ORDER BY %s %s", q.Order.Column, dir)
	}
	if q.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s rows: %w", table, err)
	}

	for _, embed := range q.Embed {
		if table == TableBookings && embed == TableFlights {
			for _, row := range out {
				flight, err := s.flightByID(ctx, rowString(row, "flight_id"))
				if err != nil {
					return nil, err
				}
				row[TableFlights] = flight
			}
		}
	}
	return out, nil
}

func (s *PGStore) Insert(ctx context.Context, table string, rows []Row, upsert bool) ([]Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, ErrUnknownTable
	}
	pk := primaryKeys[table]

	var inserted []Row
	for _, row := range rows {
		var names []string
		var placeholders []string
		var args []any
		for _, col := range cols {
			v, present := row[col]
			if !present {
				continue
			}
			names = append(names, col)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
			args = append(args, v)
		}
		if len(names) == 0 {
			continue
		}

		sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(placeholders, ", "))
		if upsert {
			var sets []string
			for _, col := range names {
				if col != pk {
					sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
				}
			}
			if len(sets) > 0 {
				sql += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", pk, strings.Join(sets, ", "))
			} else {
				sql += fmt.Sprintf(" ON CONFLICT (%s) DO NOTHING", pk)
			}
		}
		sql += " RETURNING " + strings.Join(cols, ", ")

		r, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", table, err)
		}
		returned, err := pgx.CollectRows(r, pgx.RowToMap)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inserted %s row: %w", table, err)
		}
		inserted = append(inserted, returned...)
	}
	return inserted, nil
}

func (s *PGStore) Update(ctx context.Context, table string, q Query, changes Row) ([]Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	var sets []string
	var args []any
	for _, col := range cols {
		v, present := changes[col]
		if !present {
			continue
		}
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(sets) == 0 {
		return []Row{}, nil
	}

	where, whereArgs, err := buildWhereOffset(table, q.Filters, len(args))
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)

	sql := fmt.Sprintf("UPDATE %s SET %s%s RETURNING %s", table, strings.Join(sets, ", "), where, strings.Join(cols, ", "))
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan updated %s rows: %w", table, err)
	}
	return out, nil
}

func (s *PGStore) Delete(ctx context.Context, table string, q Query) ([]Row, error) {
	cols, ok := tableColumns[table]
	if !ok {
		return nil, ErrUnknownTable
	}

	where, args, err := buildWhere(table, q.Filters)
	if err != nil {
		return nil, err
	}

	sql := fmt.Sprintf("DELETE FROM %s%s RETURNING %s", table, where, strings.Join(cols, ", "))
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("failed to scan deleted %s rows: %w", table, err)
	}
	return out, nil
}

func (s *PGStore) flightByID(ctx context.Context, id string) (Row, error) {
	rows, err := s.Select(ctx, TableFlights, Query{Filters: []Filter{{Column: "id", Value: id}}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func buildWhere(table string, filters []Filter) (string, []any, error) {
	return buildWhereOffset(table, filters, 0)
}

func buildWhereOffset(table string, filters []Filter, offset int) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	var clauses []string
	var args []any
	for _, f := range filters {
		if !validColumn(table, f.Column) {
			return "", nil, fmt.Errorf("%w: column %q", ErrBadFilter, f.Column)
		}
		args = append(args, f.Value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", f.Column, offset+len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func validColumn(table, col string) bool {
	for _, c := range tableColumns[table] {
		if c == col {
			return true
		}
	}
	return false
}
