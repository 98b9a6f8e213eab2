// Package client provides a transport-agnostic interface for the kleads
// service and an HTTP/JSON implementation that talks to the kleads REST API.
package client

import (
	"context"
	"time"

	"github.com/groblegark/kleads/internal/model"
)

// LeadsClient is the interface that all kleads CLI commands use to
// communicate with the leads server. It is implemented by HTTPClient.
type LeadsClient interface {
	// Lead CRUD
	CreateLead(ctx context.Context, req *CreateLeadRequest) (*model.Lead, error)
	GetLead(ctx context.Context, id string) (*model.Lead, error)
	ListLeads(ctx context.Context, req *ListLeadsRequest) (*ListLeadsResponse, error)
	UpdateLead(ctx context.Context, id string, req *UpdateLeadRequest) (*model.Lead, error)
	DeleteLead(ctx context.Context, id string) error

	// Activity history
	GetHistory(ctx context.Context, leadID string) ([]*model.Event, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateLeadRequest holds parameters for creating a lead.
type CreateLeadRequest struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone,omitempty"`
	Company        string     `json:"company,omitempty"`
	City           string     `json:"city,omitempty"`
	State          string     `json:"state,omitempty"`
	Source         string     `json:"source"`
	Status         string     `json:"status,omitempty"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	IsQualified    bool       `json:"is_qualified"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// ListLeadsRequest holds filter and pagination parameters for listing leads.
type ListLeadsRequest struct {
	Email   string   `json:"email,omitempty"`
	Company string   `json:"company,omitempty"`
	City    string   `json:"city,omitempty"`
	Status  []string `json:"status,omitempty"`
	Source  []string `json:"source,omitempty"`

	ScoreMin *int     `json:"score_min,omitempty"`
	ScoreMax *int     `json:"score_max,omitempty"`
	ValueMin *float64 `json:"value_min,omitempty"`
	ValueMax *float64 `json:"value_max,omitempty"`

	CreatedAfter   *time.Time `json:"created_after,omitempty"`
	CreatedBefore  *time.Time `json:"created_before,omitempty"`
	ActivityAfter  *time.Time `json:"activity_after,omitempty"`
	ActivityBefore *time.Time `json:"activity_before,omitempty"`

	Qualified *bool `json:"qualified,omitempty"`

	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`
}

// ListLeadsResponse is the response from ListLeads.
type ListLeadsResponse struct {
	Leads      []*model.Lead `json:"leads"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	Summary    model.Summary `json:"summary"`
}

// UpdateLeadRequest holds optional parameters for updating a lead.
// Nil pointer fields mean "don't change".
type UpdateLeadRequest struct {
	FirstName      *string    `json:"first_name,omitempty"`
	LastName       *string    `json:"last_name,omitempty"`
	Email          *string    `json:"email,omitempty"`
	Phone          *string    `json:"phone,omitempty"`
	Company        *string    `json:"company,omitempty"`
	City           *string    `json:"city,omitempty"`
	State          *string    `json:"state,omitempty"`
	Source         *string    `json:"source,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Score          *int       `json:"score,omitempty"`
	LeadValue      *float64   `json:"lead_value,omitempty"`
	IsQualified    *bool      `json:"is_qualified,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}
