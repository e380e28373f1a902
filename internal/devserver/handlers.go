package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Server exposes the PostgREST-compatible REST surface over a Store.
type Server struct {
	store  Store
	hub    *Hub
	apiKey string
}

// NewServer wires the store, realtime hub, and expected api key. An empty
// key disables auth, which is handy inside unit tests.
func NewServer(store Store, apiKey string) *Server {
	hub := NewHub()
	go hub.Run()
	return &Server{store: store, hub: hub, apiKey: apiKey}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.apiKey == "" {
		return true
	}
	if r.Header.Get("apikey") == s.apiKey {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+s.apiKey
}

// parsedQuery carries the PostgREST query parameters for one request.
type parsedQuery struct {
	Query
	columns []string // explicit column selection; empty means all
}

func parseQuery(r *http.Request) (parsedQuery, error) {
	var p parsedQuery
	for key, values := range r.URL.Query() {
		value := values[0]
		switch key {
		case "select":
			for _, part := range strings.Split(value, ",") {
				part = strings.TrimSpace(part)
				if part == "" || part == "*" {
					continue
				}
				if idx := strings.IndexByte(part, '('); idx > 0 {
					p.Embed = append(p.Embed, part[:idx])
					continue
				}
				p.columns = append(p.columns, part)
			}
		case "order":
			spec := value
			desc := false
			if strings.HasSuffix(spec, ".desc") {
				desc = true
				spec = strings.TrimSuffix(spec, ".desc")
			} else {
				spec = strings.TrimSuffix(spec, ".asc")
			}
			p.Order = &Order{Column: spec, Descending: desc}
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return p, errors.New("invalid limit")
			}
			p.Limit = n
		default:
			rest, ok := strings.CutPrefix(value, "eq.")
			if !ok {
				return p, errors.New("only eq. filters are supported")
			}
			p.Filters = append(p.Filters, Filter{Column: key, Value: rest})
		}
	}
	return p, nil
}

// pruneColumns reduces rows to the selected columns plus any embeds.
func pruneColumns(rows []Row, p parsedQuery) []Row {
	if len(p.columns) == 0 {
		return rows
	}
	keep := make(map[string]struct{}, len(p.columns)+len(p.Embed))
	for _, c := range p.columns {
		keep[c] = struct{}{}
	}
	for _, e := range p.Embed {
		keep[e] = struct{}{}
	}

	out := make([]Row, len(rows))
	for i, row := range rows {
		pruned := make(Row, len(keep))
		for k := range keep {
			if v, ok := row[k]; ok {
				pruned[k] = v
			}
		}
		out[i] = pruned
	}
	return out
}

// HandleTable dispatches one /rest/v1/{table} request.
func (s *Server) HandleTable(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		respondError(w, http.StatusUnauthorized, "Invalid API key")
		return
	}

	table := mux.Vars(r)["table"]
	p, err := parseQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleSelect(w, r, table, p)
	case http.MethodPost:
		s.handleInsert(w, r, table, p)
	case http.MethodPatch:
		s.handleUpdate(w, r, table, p)
	case http.MethodDelete:
		s.handleDelete(w, r, table, p)
	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, table string, p parsedQuery) {
	rows, err := s.store.Select(r.Context(), table, p.Query)
	if err != nil {
		s.storeError(w, err)
		return
	}
	if rows == nil {
		rows = []Row{}
	}
	respondJSON(w, http.StatusOK, pruneColumns(rows, p))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, table string, p parsedQuery) {
	rows, err := decodeRows(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pk := primaryKeys[table]
	for _, row := range rows {
		if pk != "" && rowString(row, pk) == "" {
			row[pk] = uuid.New().String()
		}
		if table == TableBookings && rowString(row, "created_at") == "" {
			row["created_at"] = time.Now().UTC().Format(time.RFC3339)
		}
	}

	prefer := r.Header.Get("Prefer")
	upsert := strings.Contains(prefer, "resolution=merge-duplicates")

	inserted, err := s.store.Insert(r.Context(), table, rows, upsert)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if table == TableBookings {
		for _, row := range inserted {
			s.hub.BroadcastInsert(table, row)
		}
	}

	if strings.Contains(prefer, "return=representation") {
		respondJSON(w, http.StatusCreated, pruneColumns(inserted, p))
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, table string, p parsedQuery) {
	rows, err := decodeRows(r)
	if err != nil || len(rows) != 1 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := s.store.Update(r.Context(), table, p.Query, rows[0])
	if err != nil {
		s.storeError(w, err)
		return
	}

	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		respondJSON(w, http.StatusOK, pruneColumns(updated, p))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, table string, p parsedQuery) {
	deleted, err := s.store.Delete(r.Context(), table, p.Query)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if table == TableBookings {
		for _, row := range deleted {
			s.hub.BroadcastDelete(table, row)
		}
	}

	if strings.Contains(r.Header.Get("Prefer"), "return=representation") {
		respondJSON(w, http.StatusOK, pruneColumns(deleted, p))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownTable):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrBadFilter):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeRows accepts a single JSON object or an array of objects, the two
// body shapes PostgREST inserts take.
func decodeRows(r *http.Request) ([]Row, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw) > 0 && raw[0] == '[' {
		var rows []Row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
	var row Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	return []Row{row}, nil
}
