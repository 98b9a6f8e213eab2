package server

import (
	"encoding/json"
	"net/http"

	"github.com/groblegark/kleads/internal/auth"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// Every route except GET /v1/health requires an authenticated identity
// resolved by the given authenticator. A nil authenticator disables auth
// entirely (dev only); requests then run as the "dev" user.
func (s *LeadsServer) NewHTTPHandler(authenticator auth.Authenticator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/leads", s.handleCreateLead)
	mux.HandleFunc("GET /v1/leads", s.handleListLeads)
	mux.HandleFunc("GET /v1/leads/{id}", s.handleGetLead)
	mux.HandleFunc("PATCH /v1/leads/{id}", s.handleUpdateLead)
	mux.HandleFunc("DELETE /v1/leads/{id}", s.handleDeleteLead)
	mux.HandleFunc("GET /v1/leads/{id}/history", s.handleLeadHistory)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var h http.Handler = mux
	h = AuthMiddleware(authenticator, h)
	h = LoggingMiddleware(h)
	h = RecoveryMiddleware(h)
	return h
}

// handleHealth handles GET /v1/health.
func (s *LeadsServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
