package devserver

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router builds the HTTP router for the dev backend.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware)

	rest := r.PathPrefix("/rest/v1").Subrouter()
	rest.HandleFunc("/{table}", s.HandleTable).Methods(
		http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
	)

	// Realtime booking events, in the spirit of the Supabase realtime channel.
	r.HandleFunc("/realtime/v1/ws", s.HandleRealtime)

	r.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, apikey, Prefer")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
