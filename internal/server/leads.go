package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/groblegark/kleads/internal/auth"
	"github.com/groblegark/kleads/internal/events"
	"github.com/groblegark/kleads/internal/idgen"
	"github.com/groblegark/kleads/internal/model"
	"github.com/groblegark/kleads/internal/store"
)

// defaultPageLimit is used when the caller does not specify a page size.
const defaultPageLimit = 20

// createLeadInput holds transport-agnostic parameters for creating a lead.
type createLeadInput struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          string     `json:"phone"`
	Company        string     `json:"company"`
	City           string     `json:"city"`
	State          string     `json:"state"`
	Source         string     `json:"source"`
	Status         string     `json:"status"`
	Score          int        `json:"score"`
	LeadValue      float64    `json:"lead_value"`
	IsQualified    bool       `json:"is_qualified"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
}

// createLead validates input, persists a new lead owned by the identity, and
// publishes a LeadCreated event. Returns inputError for validation failures.
func (s *LeadsServer) createLead(ctx context.Context, ident *auth.Identity, in createLeadInput) (*model.Lead, error) {
	now := time.Now().UTC()
	id, err := idgen.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	status := model.Status(in.Status)
	if in.Status == "" {
		status = model.StatusNew
	}

	lead := &model.Lead{
		ID:             id,
		OwnerID:        ident.UserID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Phone:          in.Phone,
		Company:        in.Company,
		City:           in.City,
		State:          in.State,
		Source:         model.Source(in.Source),
		Status:         status,
		Score:          in.Score,
		LeadValue:      in.LeadValue,
		IsQualified:    in.IsQualified,
		LastActivityAt: in.LastActivityAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := model.ValidateLead(lead); err != nil {
		return nil, inputError("invalid lead: " + err.Error())
	}

	created := events.LeadCreated{Lead: lead}
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateLead(ctx, lead); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.TopicLeadCreated, lead.ID, lead.OwnerID, created)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	s.publishEvent(ctx, events.TopicLeadCreated, lead.ID, created)

	return lead, nil
}

// listLeadsResult is one fetched page plus its derived metadata.
type listLeadsResult struct {
	Leads      []*model.Lead `json:"leads"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"total_pages"`
	Summary    model.Summary `json:"summary"`
}

// listLeads runs a filtered, owner-scoped, paginated query and derives the
// pagination metadata and page-scoped summary from the result. A page beyond
// the last one yields an empty page, not an error.
func (s *LeadsServer) listLeads(ctx context.Context, ident *auth.Identity, filter model.LeadFilter, page, limit int) (*listLeadsResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}

	offset := (page - 1) * limit
	leads, total, err := s.store.ListLeads(ctx, ident.UserID, filter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	// Ensure leads is never null in JSON output.
	if leads == nil {
		leads = []*model.Lead{}
	}

	p := model.NewPagination(page, limit, total)
	return &listLeadsResult{
		Leads:      leads,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
		Summary:    model.Summarize(leads, total),
	}, nil
}

// updateLeadInput holds transport-agnostic parameters for updating a lead.
// Pointer fields indicate optionality: nil means "don't change".
type updateLeadInput struct {
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

// updateLead applies partial updates to an existing lead owned by the
// identity, persists them, and publishes a LeadUpdated event. A lead under
// another owner surfaces as sql.ErrNoRows, same as a missing one.
func (s *LeadsServer) updateLead(ctx context.Context, ident *auth.Identity, id string, in updateLeadInput) (*model.Lead, error) {
	lead, err := s.store.GetLead(ctx, id, ident.UserID)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)

	if in.FirstName != nil {
		lead.FirstName = *in.FirstName
		changes["first_name"] = lead.FirstName
	}
	if in.LastName != nil {
		lead.LastName = *in.LastName
		changes["last_name"] = lead.LastName
	}
	if in.Email != nil {
		lead.Email = *in.Email
		changes["email"] = lead.Email
	}
	if in.Phone != nil {
		lead.Phone = *in.Phone
		changes["phone"] = lead.Phone
	}
	if in.Company != nil {
		lead.Company = *in.Company
		changes["company"] = lead.Company
	}
	if in.City != nil {
		lead.City = *in.City
		changes["city"] = lead.City
	}
	if in.State != nil {
		lead.State = *in.State
		changes["state"] = lead.State
	}
	if in.Source != nil {
		lead.Source = model.Source(*in.Source)
		changes["source"] = lead.Source
	}
	if in.Status != nil {
		lead.Status = model.Status(*in.Status)
		changes["status"] = lead.Status
	}
	if in.Score != nil {
		lead.Score = *in.Score
		changes["score"] = lead.Score
	}
	if in.LeadValue != nil {
		lead.LeadValue = *in.LeadValue
		changes["lead_value"] = lead.LeadValue
	}
	if in.IsQualified != nil {
		lead.IsQualified = *in.IsQualified
		changes["is_qualified"] = lead.IsQualified
	}
	if in.LastActivityAt != nil {
		// Zero time clears the field.
		if in.LastActivityAt.IsZero() {
			lead.LastActivityAt = nil
		} else {
			lead.LastActivityAt = in.LastActivityAt
		}
		changes["last_activity_at"] = lead.LastActivityAt
	}

	lead.UpdatedAt = time.Now().UTC()

	if err := model.ValidateLead(lead); err != nil {
		return nil, inputError("invalid lead: " + err.Error())
	}

	updated := events.LeadUpdated{
		Lead:    lead,
		Changes: changes,
	}
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.UpdateLead(ctx, lead); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.TopicLeadUpdated, lead.ID, lead.OwnerID, updated)
	})
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}

	s.publishEvent(ctx, events.TopicLeadUpdated, lead.ID, updated)

	return lead, nil
}

// deleteLead removes a lead matched by id and owner simultaneously.
// An id owned by someone else reports sql.ErrNoRows, never success.
func (s *LeadsServer) deleteLead(ctx context.Context, ident *auth.Identity, id string) error {
	deleted := events.LeadDeleted{
		LeadID:  id,
		OwnerID: ident.UserID,
	}
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.DeleteLead(ctx, id, ident.UserID); err != nil {
			return err
		}
		return recordEvent(ctx, tx, events.TopicLeadDeleted, id, ident.UserID, deleted)
	})
	if err != nil {
		return err
	}

	s.publishEvent(ctx, events.TopicLeadDeleted, id, deleted)

	return nil
}
