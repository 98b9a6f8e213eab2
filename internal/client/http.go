package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/groblegark/kleads/internal/model"
)

// HTTPClient implements LeadsClient using the kleads HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Lead CRUD ---

func (c *HTTPClient) CreateLead(ctx context.Context, req *CreateLeadRequest) (*model.Lead, error) {
	var lead model.Lead
	if err := c.doJSON(ctx, http.MethodPost, "/v1/leads", req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *HTTPClient) GetLead(ctx context.Context, id string) (*model.Lead, error) {
	var lead model.Lead
	if err := c.doJSON(ctx, http.MethodGet, "/v1/leads/"+url.PathEscape(id), nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *HTTPClient) ListLeads(ctx context.Context, req *ListLeadsRequest) (*ListLeadsResponse, error) {
	q := url.Values{}
	if req.Email != "" {
		q.Set("email", req.Email)
	}
	if req.Company != "" {
		q.Set("company", req.Company)
	}
	if req.City != "" {
		q.Set("city", req.City)
	}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Source) > 0 {
		q.Set("source", strings.Join(req.Source, ","))
	}
	if req.ScoreMin != nil {
		q.Set("score_min", strconv.Itoa(*req.ScoreMin))
	}
	if req.ScoreMax != nil {
		q.Set("score_max", strconv.Itoa(*req.ScoreMax))
	}
	if req.ValueMin != nil {
		q.Set("value_min", strconv.FormatFloat(*req.ValueMin, 'f', -1, 64))
	}
	if req.ValueMax != nil {
		q.Set("value_max", strconv.FormatFloat(*req.ValueMax, 'f', -1, 64))
	}
	if req.CreatedAfter != nil {
		q.Set("created_after", req.CreatedAfter.Format(time.RFC3339))
	}
	if req.CreatedBefore != nil {
		q.Set("created_before", req.CreatedBefore.Format(time.RFC3339))
	}
	if req.ActivityAfter != nil {
		q.Set("activity_after", req.ActivityAfter.Format(time.RFC3339))
	}
	if req.ActivityBefore != nil {
		q.Set("activity_before", req.ActivityBefore.Format(time.RFC3339))
	}
	if req.Qualified != nil {
		q.Set("qualified", strconv.FormatBool(*req.Qualified))
	}
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	path := "/v1/leads"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListLeadsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateLead(ctx context.Context, id string, req *UpdateLeadRequest) (*model.Lead, error) {
	var lead model.Lead
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/leads/"+url.PathEscape(id), req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

func (c *HTTPClient) DeleteLead(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/leads/"+url.PathEscape(id), nil, nil)
}

// --- Activity history ---

func (c *HTTPClient) GetHistory(ctx context.Context, leadID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/leads/"+url.PathEscape(leadID)+"/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
