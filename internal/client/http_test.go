package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method string
	path   string
	query  string
	body   string
	auth   string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.auth = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler, token string) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, token)
	return c, srv
}

const leadJSON = `{
	"id": "ld-abc",
	"owner_id": "u1",
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@example.com",
	"source": "website",
	"status": "new",
	"score": 42,
	"lead_value": 1500.5,
	"is_qualified": false,
	"created_at": "2026-01-15T10:00:00Z",
	"updated_at": "2026-01-15T10:00:00Z"
}`

func TestHTTPClient_CreateLead(t *testing.T) {
	h := &testHandler{statusCode: http.StatusCreated, responseBody: leadJSON}
	c, srv := newTestClient(h, "tok1")
	defer srv.Close()

	lead, err := c.CreateLead(context.Background(), &CreateLeadRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
		Source: "website", Score: 42, LeadValue: 1500.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.method != "POST" || h.path != "/v1/leads" {
		t.Errorf("got %s %s", h.method, h.path)
	}
	if h.auth != "Bearer tok1" {
		t.Errorf("Authorization = %q", h.auth)
	}
	if lead.ID != "ld-abc" || lead.Score != 42 {
		t.Errorf("got id=%q score=%d", lead.ID, lead.Score)
	}
}

func TestHTTPClient_GetLead(t *testing.T) {
	h := &testHandler{responseBody: leadJSON}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	lead, err := c.GetLead(context.Background(), "ld-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.method != "GET" || h.path != "/v1/leads/ld-abc" {
		t.Errorf("got %s %s", h.method, h.path)
	}
	if h.auth != "" {
		t.Errorf("expected no Authorization header, got %q", h.auth)
	}
	if lead.Email != "ada@example.com" {
		t.Errorf("Email = %q", lead.Email)
	}
}

func TestHTTPClient_ListLeads_QueryString(t *testing.T) {
	h := &testHandler{responseBody: `{"leads":[],"total":0,"page":1,"limit":20,"total_pages":0,"summary":{"total_leads":0,"qualified_count":0,"total_value":0,"avg_score":0}}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	scoreMin := 50
	qualified := true
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.ListLeads(context.Background(), &ListLeadsRequest{
		Email:        "ada",
		Status:       []string{"new", "contacted"},
		ScoreMin:     &scoreMin,
		Qualified:    &qualified,
		CreatedAfter: &after,
		Page:         2,
		Limit:        10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q, err := url.ParseQuery(h.query)
	if err != nil {
		t.Fatalf("failed to parse query %q: %v", h.query, err)
	}
	for key, want := range map[string]string{
		"email":         "ada",
		"status":        "new,contacted",
		"score_min":     "50",
		"qualified":     "true",
		"created_after": "2026-01-01T00:00:00Z",
		"page":          "2",
		"limit":         "10",
	} {
		if got := q.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
	if q.Has("company") || q.Has("score_max") || q.Has("value_min") {
		t.Errorf("absent filters should not appear in the query: %q", h.query)
	}
}

func TestHTTPClient_ListLeads_Response(t *testing.T) {
	h := &testHandler{responseBody: `{
		"leads": [` + leadJSON + `],
		"total": 45,
		"page": 1,
		"limit": 20,
		"total_pages": 3,
		"summary": {"total_leads": 45, "qualified_count": 1, "total_value": 1500.5, "avg_score": 42}
	}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	resp, err := c.ListLeads(context.Background(), &ListLeadsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Total != 45 || resp.TotalPages != 3 || len(resp.Leads) != 1 {
		t.Errorf("got total=%d pages=%d len=%d", resp.Total, resp.TotalPages, len(resp.Leads))
	}
	if resp.Summary.AvgScore != 42 {
		t.Errorf("Summary.AvgScore = %v", resp.Summary.AvgScore)
	}
}

func TestHTTPClient_UpdateLead(t *testing.T) {
	h := &testHandler{responseBody: leadJSON}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	score := 75
	_, err := c.UpdateLead(context.Background(), "ld-abc", &UpdateLeadRequest{Score: &score})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.method != "PATCH" || h.path != "/v1/leads/ld-abc" {
		t.Errorf("got %s %s", h.method, h.path)
	}
	if h.body != `{"score":75}` {
		t.Errorf("body = %q, want only the changed field", h.body)
	}
}

func TestHTTPClient_DeleteLead(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	if err := c.DeleteLead(context.Background(), "ld-abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.method != "DELETE" || h.path != "/v1/leads/ld-abc" {
		t.Errorf("got %s %s", h.method, h.path)
	}
}

func TestHTTPClient_GetHistory(t *testing.T) {
	h := &testHandler{responseBody: `{"events":[{"id":1,"topic":"leads.lead.created","lead_id":"ld-abc","owner_id":"u1","actor":"u1","created_at":"2026-01-15T10:00:00Z"}]}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	events, err := c.GetHistory(context.Background(), "ld-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.path != "/v1/leads/ld-abc/history" {
		t.Errorf("path = %q", h.path)
	}
	if len(events) != 1 || events[0].Topic != "leads.lead.created" {
		t.Errorf("unexpected events: %+v", events)
	}
}

func TestHTTPClient_Health(t *testing.T) {
	h := &testHandler{responseBody: `{"status":"ok"}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}

func TestHTTPClient_APIError(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNotFound, responseBody: `{"error":"lead not found"}`}
	c, srv := newTestClient(h, "")
	defer srv.Close()

	_, err := c.GetLead(context.Background(), "ld-missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != 404 || apiErr.Message != "lead not found" {
		t.Errorf("got %+v", apiErr)
	}
}
