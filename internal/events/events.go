package events

import (
	"context"

	"github.com/groblegark/kleads/internal/model"
)

// Event topic constants
const (
	TopicLeadCreated = "leads.lead.created"
	TopicLeadUpdated = "leads.lead.updated"
	TopicLeadDeleted = "leads.lead.deleted"
)

// Event types

type LeadCreated struct {
	Lead *model.Lead `json:"lead"`
}

type LeadUpdated struct {
	Lead    *model.Lead    `json:"lead"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type LeadDeleted struct {
	LeadID  string `json:"lead_id"`
	OwnerID string `json:"owner_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
