package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/groblegark/kleads/internal/auth"
	"github.com/groblegark/kleads/internal/events"
	"github.com/groblegark/kleads/internal/model"
	"github.com/groblegark/kleads/internal/store"
)

type mockStore struct {
	leads       map[string]*model.Lead
	events      []*model.Event
	eventNextID int64

	recordEventErr error
}

func newMockStore() *mockStore {
	return &mockStore{leads: make(map[string]*model.Lead)}
}

func (m *mockStore) CreateLead(_ context.Context, lead *model.Lead) error {
	m.leads[lead.ID] = lead
	return nil
}

func (m *mockStore) GetLead(_ context.Context, id, ownerID string) (*model.Lead, error) {
	l, ok := m.leads[id]
	if !ok || l.OwnerID != ownerID {
		return nil, sql.ErrNoRows
	}
	clone := *l
	return &clone, nil
}

func (m *mockStore) ListLeads(_ context.Context, ownerID string, filter model.LeadFilter, limit, offset int) ([]*model.Lead, int, error) {
	var matched []*model.Lead
	for _, l := range m.leads {
		if l.OwnerID != ownerID {
			continue
		}
		if filter.Email != "" && !strings.Contains(strings.ToLower(l.Email), strings.ToLower(filter.Email)) {
			continue
		}
		if len(filter.Status) > 0 {
			found := false
			for _, s := range filter.Status {
				if l.Status == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		if filter.ScoreMin != nil && l.Score < *filter.ScoreMin {
			continue
		}
		if filter.Qualified != nil && l.IsQualified != *filter.Qualified {
			continue
		}
		matched = append(matched, l)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *mockStore) UpdateLead(_ context.Context, lead *model.Lead) error {
	existing, ok := m.leads[lead.ID]
	if !ok || existing.OwnerID != lead.OwnerID {
		return sql.ErrNoRows
	}
	m.leads[lead.ID] = lead
	return nil
}

func (m *mockStore) DeleteLead(_ context.Context, id, ownerID string) error {
	l, ok := m.leads[id]
	if !ok || l.OwnerID != ownerID {
		return sql.ErrNoRows
	}
	delete(m.leads, id)
	return nil
}

func (m *mockStore) ExportLeads(_ context.Context) ([]*model.Lead, error) {
	var all []*model.Lead
	for _, l := range m.leads {
		all = append(all, l)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	if m.recordEventErr != nil {
		return m.recordEventErr
	}
	m.eventNextID++
	event.ID = m.eventNextID
	event.CreatedAt = time.Now().UTC()
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, leadID, ownerID string) ([]*model.Event, error) {
	var out []*model.Event
	for _, e := range m.events {
		if e.LeadID == leadID && e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

// RunInTransaction snapshots the store and restores it when fn fails,
// mimicking a rollback.
func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	snapshot := make(map[string]*model.Lead, len(m.leads))
	for id, l := range m.leads {
		snapshot[id] = l
	}
	eventCount := len(m.events)
	nextID := m.eventNextID

	if err := fn(m); err != nil {
		m.leads = snapshot
		m.events = m.events[:eventCount]
		m.eventNextID = nextID
		return err
	}
	return nil
}

func (m *mockStore) Close() error { return nil }

// newTestServer returns a fresh server, its mock store, and an HTTP handler
// with auth disabled (requests run as the "dev" user).
func newTestServer() (*LeadsServer, *mockStore, http.Handler) {
	ms := newMockStore()
	s := NewLeadsServer(ms, &events.NoopPublisher{})
	return s, ms, s.NewHTTPHandler(nil)
}

// newAuthTestServer returns a handler with static token auth for two users.
func newAuthTestServer(t *testing.T) (*mockStore, http.Handler) {
	t.Helper()
	ms := newMockStore()
	s := NewLeadsServer(ms, &events.NoopPublisher{})
	authenticator, err := auth.NewStaticAuthenticator("u1:tok1,u2:tok2")
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}
	return ms, s.NewHTTPHandler(authenticator)
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	return doJSONAs(t, handler, method, path, "", body)
}

// doJSONAs is doJSON with a bearer token attached.
func doJSONAs(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// requireStatus asserts the recorder has the expected HTTP status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

// decodeJSON decodes the recorder's response body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// seedLead inserts a lead directly into the mock store.
func seedLead(ms *mockStore, id, owner string, status model.Status, score int, value float64, qualified bool, createdAt time.Time) *model.Lead {
	l := &model.Lead{
		ID: id, OwnerID: owner, FirstName: "Ada", LastName: "Lovelace",
		Email: id + "@example.com", Source: model.SourceWebsite, Status: status,
		Score: score, LeadValue: value, IsQualified: qualified,
		CreatedAt: createdAt, UpdatedAt: createdAt,
	}
	ms.leads[id] = l
	return l
}

func TestHandleHealth(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/health", nil)
	requireStatus(t, rec, 200)
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %q", body["status"])
	}
}

func TestHandleCreateLead(t *testing.T) {
	_, ms, h := newTestServer()
	rec := doJSON(t, h, "POST", "/v1/leads", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"source":     "website",
		"score":      42,
		"lead_value": 1500.50,
	})
	requireStatus(t, rec, 201)
	var lead model.Lead
	decodeJSON(t, rec, &lead)
	if !strings.HasPrefix(lead.ID, "ld-") {
		t.Fatalf("expected ld- prefixed ID, got %q", lead.ID)
	}
	if lead.OwnerID != "dev" {
		t.Errorf("OwnerID = %q, want dev", lead.OwnerID)
	}
	if lead.Status != model.StatusNew {
		t.Errorf("Status = %q, want new (default)", lead.Status)
	}
	if lead.Score != 42 || lead.LeadValue != 1500.50 {
		t.Errorf("got score=%d value=%v", lead.Score, lead.LeadValue)
	}
	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicLeadCreated {
		t.Errorf("expected one created event, got %+v", ms.events)
	}
}

func TestHandleCreateLead_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name string
		body map[string]any
	}{
		{"missing first name", map[string]any{"last_name": "L", "email": "a@b.c", "source": "website"}},
		{"missing email", map[string]any{"first_name": "A", "last_name": "L", "source": "website"}},
		{"bad source", map[string]any{"first_name": "A", "last_name": "L", "email": "a@b.c", "source": "carrier_pigeon"}},
		{"bad status", map[string]any{"first_name": "A", "last_name": "L", "email": "a@b.c", "source": "website", "status": "frozen"}},
		{"negative value", map[string]any{"first_name": "A", "last_name": "L", "email": "a@b.c", "source": "website", "lead_value": -10}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, _, h := newTestServer()
			rec := doJSON(t, h, "POST", "/v1/leads", tc.body)
			requireStatus(t, rec, 400)
		})
	}
}

func TestHandleCreateLead_EventRecordFailureRollsBack(t *testing.T) {
	_, ms, h := newTestServer()
	ms.recordEventErr = errors.New("events table unavailable")

	rec := doJSON(t, h, "POST", "/v1/leads", map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      "ada@example.com",
		"source":     "website",
	})
	requireStatus(t, rec, 500)

	if len(ms.leads) != 0 {
		t.Errorf("expected no lead persisted after rollback, got %d", len(ms.leads))
	}
	if len(ms.events) != 0 {
		t.Errorf("expected no events after rollback, got %d", len(ms.events))
	}
}

func TestHandleGetLead(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())

	rec := doJSON(t, h, "GET", "/v1/leads/ld-abc", nil)
	requireStatus(t, rec, 200)
	var lead model.Lead
	decodeJSON(t, rec, &lead)
	if lead.ID != "ld-abc" || lead.Email != "ld-abc@example.com" {
		t.Fatalf("got id=%q email=%q", lead.ID, lead.Email)
	}
}

func TestHandleGetLead_NotFound(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/leads/nonexistent", nil)
	requireStatus(t, rec, 404)
}

func TestHandleListLeads_Pagination(t *testing.T) {
	_, ms, h := newTestServer()
	base := time.Now().UTC()
	for i := 0; i < 45; i++ {
		id := "ld-" + string(rune('a'+i/26)) + string(rune('a'+i%26))
		seedLead(ms, id, "dev", model.StatusNew, 50, 10, i%2 == 0, base.Add(-time.Duration(i)*time.Minute))
	}

	var result listLeadsResult
	rec := doJSON(t, h, "GET", "/v1/leads?page=3&limit=20", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)

	if result.Total != 45 {
		t.Errorf("Total = %d, want 45", result.Total)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", result.TotalPages)
	}
	if len(result.Leads) != 5 {
		t.Errorf("page 3 should have 5 leads, got %d", len(result.Leads))
	}
	if result.Page != 3 || result.Limit != 20 {
		t.Errorf("got page=%d limit=%d", result.Page, result.Limit)
	}
	if result.Summary.TotalLeads != 45 {
		t.Errorf("Summary.TotalLeads = %d, want 45", result.Summary.TotalLeads)
	}
}

func TestHandleListLeads_PagePastEnd(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-one", "dev", model.StatusNew, 50, 10, false, time.Now().UTC())

	var result listLeadsResult
	rec := doJSON(t, h, "GET", "/v1/leads?page=99", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)

	if len(result.Leads) != 0 {
		t.Errorf("expected empty page, got %d leads", len(result.Leads))
	}
	if result.Total != 1 || result.TotalPages != 1 {
		t.Errorf("got total=%d pages=%d", result.Total, result.TotalPages)
	}
	if result.Summary.TotalLeads != 1 || result.Summary.AvgScore != 0 {
		t.Errorf("empty page summary should keep total but zero stats: %+v", result.Summary)
	}
}

func TestHandleListLeads_Summary(t *testing.T) {
	_, ms, h := newTestServer()
	now := time.Now().UTC()
	seedLead(ms, "ld-a", "dev", model.StatusQualified, 80, 100, true, now)
	seedLead(ms, "ld-b", "dev", model.StatusNew, 40, 50, false, now.Add(-time.Minute))

	var result listLeadsResult
	rec := doJSON(t, h, "GET", "/v1/leads", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)

	if result.Summary.QualifiedCount != 1 {
		t.Errorf("QualifiedCount = %d, want 1", result.Summary.QualifiedCount)
	}
	if result.Summary.TotalValue != 150 {
		t.Errorf("TotalValue = %v, want 150", result.Summary.TotalValue)
	}
	if result.Summary.AvgScore != 60 {
		t.Errorf("AvgScore = %v, want 60", result.Summary.AvgScore)
	}
}

func TestHandleListLeads_Filters(t *testing.T) {
	_, ms, h := newTestServer()
	now := time.Now().UTC()
	seedLead(ms, "ld-a", "dev", model.StatusQualified, 90, 100, true, now)
	seedLead(ms, "ld-b", "dev", model.StatusNew, 20, 50, false, now)

	var result listLeadsResult
	rec := doJSON(t, h, "GET", "/v1/leads?status=qualified&qualified=true&score_min=50", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)

	if result.Total != 1 || len(result.Leads) != 1 || result.Leads[0].ID != "ld-a" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHandleListLeads_BadParams(t *testing.T) {
	for _, path := range []string{
		"/v1/leads?status=bogus",
		"/v1/leads?source=bogus",
		"/v1/leads?score_min=abc",
		"/v1/leads?value_max=abc",
		"/v1/leads?created_after=yesterday",
		"/v1/leads?qualified=maybe",
	} {
		t.Run(path, func(t *testing.T) {
			_, _, h := newTestServer()
			rec := doJSON(t, h, "GET", path, nil)
			requireStatus(t, rec, 400)
		})
	}
}

func TestHandleUpdateLead(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())

	rec := doJSON(t, h, "PATCH", "/v1/leads/ld-abc", map[string]any{
		"status":       "contacted",
		"score":        75,
		"is_qualified": true,
	})
	requireStatus(t, rec, 200)
	var lead model.Lead
	decodeJSON(t, rec, &lead)
	if lead.Status != model.StatusContacted || lead.Score != 75 || !lead.IsQualified {
		t.Fatalf("got status=%q score=%d qualified=%t", lead.Status, lead.Score, lead.IsQualified)
	}
	// Untouched fields survive partial updates.
	if lead.FirstName != "Ada" || lead.LeadValue != 100 {
		t.Errorf("got first_name=%q value=%v", lead.FirstName, lead.LeadValue)
	}
	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicLeadUpdated {
		t.Errorf("expected one updated event, got %+v", ms.events)
	}
}

func TestHandleUpdateLead_Invalid(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())

	rec := doJSON(t, h, "PATCH", "/v1/leads/ld-abc", map[string]any{"status": "frozen"})
	requireStatus(t, rec, 400)
}

func TestHandleUpdateLead_NotFound(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "PATCH", "/v1/leads/nonexistent", map[string]any{"score": 5})
	requireStatus(t, rec, 404)
}

func TestHandleDeleteLead(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())

	rec := doJSON(t, h, "DELETE", "/v1/leads/ld-abc", nil)
	requireStatus(t, rec, 204)

	rec = doJSON(t, h, "GET", "/v1/leads/ld-abc", nil)
	requireStatus(t, rec, 404)

	if len(ms.events) != 1 || ms.events[0].Topic != events.TopicLeadDeleted {
		t.Errorf("expected one deleted event, got %+v", ms.events)
	}
}

func TestHandleDeleteLead_EventRecordFailureRollsBack(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())
	ms.recordEventErr = errors.New("events table unavailable")

	rec := doJSON(t, h, "DELETE", "/v1/leads/ld-abc", nil)
	requireStatus(t, rec, 500)

	if _, ok := ms.leads["ld-abc"]; !ok {
		t.Error("expected lead to survive a rolled-back delete")
	}
	if len(ms.events) != 0 {
		t.Errorf("expected no events after rollback, got %d", len(ms.events))
	}
}

func TestHandleDeleteLead_NotFound(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "DELETE", "/v1/leads/nonexistent", nil)
	requireStatus(t, rec, 404)
}

func TestHandleLeadHistory(t *testing.T) {
	_, ms, h := newTestServer()
	seedLead(ms, "ld-abc", "dev", model.StatusNew, 10, 100, false, time.Now().UTC())
	ms.RecordEvent(context.Background(), &model.Event{
		Topic: events.TopicLeadCreated, LeadID: "ld-abc", OwnerID: "dev", Actor: "dev",
		Payload: json.RawMessage(`{}`),
	})

	rec := doJSON(t, h, "GET", "/v1/leads/ld-abc/history", nil)
	requireStatus(t, rec, 200)
	var body struct {
		Events []*model.Event `json:"events"`
	}
	decodeJSON(t, rec, &body)
	if len(body.Events) != 1 || body.Events[0].Topic != events.TopicLeadCreated {
		t.Fatalf("unexpected events: %+v", body.Events)
	}
}

func TestHandleLeadHistory_Empty(t *testing.T) {
	_, _, h := newTestServer()
	rec := doJSON(t, h, "GET", "/v1/leads/ld-none/history", nil)
	requireStatus(t, rec, 200)
	if !strings.Contains(rec.Body.String(), `"events":[]`) {
		t.Fatalf("expected empty events array, got %s", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	_, h := newAuthTestServer(t)

	rec := doJSON(t, h, "GET", "/v1/leads", nil)
	requireStatus(t, rec, 401)

	rec = doJSONAs(t, h, "GET", "/v1/leads", "wrong-token", nil)
	requireStatus(t, rec, 401)

	// Health stays open.
	rec = doJSON(t, h, "GET", "/v1/health", nil)
	requireStatus(t, rec, 200)
}

func TestOwnershipScoping(t *testing.T) {
	ms, h := newAuthTestServer(t)
	now := time.Now().UTC()
	seedLead(ms, "ld-mine", "u1", model.StatusNew, 10, 100, false, now)
	seedLead(ms, "ld-theirs", "u2", model.StatusNew, 10, 100, false, now)

	// Reads see only the caller's leads.
	var result listLeadsResult
	rec := doJSONAs(t, h, "GET", "/v1/leads", "tok1", nil)
	requireStatus(t, rec, 200)
	decodeJSON(t, rec, &result)
	if result.Total != 1 || result.Leads[0].ID != "ld-mine" {
		t.Fatalf("u1 should see only ld-mine: %+v", result)
	}

	// Another owner's lead is indistinguishable from a missing one.
	rec = doJSONAs(t, h, "GET", "/v1/leads/ld-theirs", "tok1", nil)
	requireStatus(t, rec, 404)

	rec = doJSONAs(t, h, "PATCH", "/v1/leads/ld-theirs", "tok1", map[string]any{"score": 1})
	requireStatus(t, rec, 404)

	rec = doJSONAs(t, h, "DELETE", "/v1/leads/ld-theirs", "tok1", nil)
	requireStatus(t, rec, 404)

	// The target is untouched.
	if _, ok := ms.leads["ld-theirs"]; !ok {
		t.Fatal("ld-theirs should still exist")
	}
}
