package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/kleads/internal/auth"
	"github.com/groblegark/kleads/internal/model"
)

// identityOr401 extracts the identity placed by AuthMiddleware.
// A request that reaches a handler without one is rejected outright.
func identityOr401(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	ident, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return nil, false
	}
	return ident, true
}

// handleCreateLead handles POST /v1/leads.
func (s *LeadsServer) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var in createLeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lead, err := s.createLead(r.Context(), ident, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, "failed to create lead")
		}
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// handleListLeads handles GET /v1/leads.
func (s *LeadsServer) handleListLeads(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter, err := parseLeadFilter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := 1
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	limit := defaultPageLimit
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	result, err := s.listLeads(r.Context(), ident, filter, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// parseLeadFilter builds a LeadFilter from URL query values. Unparseable
// numbers, timestamps, and unknown enum values are rejected rather than
// silently dropped.
func parseLeadFilter(q url.Values) (model.LeadFilter, error) {
	var filter model.LeadFilter

	filter.Email = q.Get("email")
	filter.Company = q.Get("company")
	filter.City = q.Get("city")

	if v := q.Get("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			st := model.Status(raw)
			if !st.IsValid() {
				return filter, errors.New("invalid status " + strconv.Quote(raw))
			}
			filter.Status = append(filter.Status, st)
		}
	}
	if v := q.Get("source"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			src := model.Source(raw)
			if !src.IsValid() {
				return filter, errors.New("invalid source " + strconv.Quote(raw))
			}
			filter.Source = append(filter.Source, src)
		}
	}

	var err error
	if filter.ScoreMin, err = parseIntParam(q, "score_min"); err != nil {
		return filter, err
	}
	if filter.ScoreMax, err = parseIntParam(q, "score_max"); err != nil {
		return filter, err
	}
	if filter.ValueMin, err = parseFloatParam(q, "value_min"); err != nil {
		return filter, err
	}
	if filter.ValueMax, err = parseFloatParam(q, "value_max"); err != nil {
		return filter, err
	}
	if filter.CreatedAfter, err = parseTimeParam(q, "created_after"); err != nil {
		return filter, err
	}
	if filter.CreatedBefore, err = parseTimeParam(q, "created_before"); err != nil {
		return filter, err
	}
	if filter.ActivityAfter, err = parseTimeParam(q, "activity_after"); err != nil {
		return filter, err
	}
	if filter.ActivityBefore, err = parseTimeParam(q, "activity_before"); err != nil {
		return filter, err
	}

	if v := q.Get("qualified"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("invalid qualified value " + strconv.Quote(v))
		}
		filter.Qualified = &b
	}

	return filter, nil
}

func parseIntParam(q url.Values, key string) (*int, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errors.New("invalid " + key + " value " + strconv.Quote(v))
	}
	return &n, nil
}

func parseFloatParam(q url.Values, key string) (*float64, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.New("invalid " + key + " value " + strconv.Quote(v))
	}
	return &f, nil
}

func parseTimeParam(q url.Values, key string) (*time.Time, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.New("invalid " + key + " value " + strconv.Quote(v) + " (expected RFC 3339)")
	}
	return &t, nil
}

// handleGetLead handles GET /v1/leads/{id}.
func (s *LeadsServer) handleGetLead(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	lead, err := s.store.GetLead(r.Context(), id, ident.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "lead not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// handleUpdateLead handles PATCH /v1/leads/{id}.
func (s *LeadsServer) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lead, err := s.updateLead(r.Context(), ident, id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

// handleDeleteLead handles DELETE /v1/leads/{id}.
func (s *LeadsServer) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.deleteLead(r.Context(), ident, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete lead")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleLeadHistory handles GET /v1/leads/{id}/history.
func (s *LeadsServer) handleLeadHistory(w http.ResponseWriter, r *http.Request) {
	ident, ok := identityOr401(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	evts, err := s.store.GetEvents(r.Context(), id, ident.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get history")
		return
	}

	if evts == nil {
		evts = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": evts})
}
