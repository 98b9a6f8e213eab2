package model

import (
	"encoding/json"
	"time"
)

// Event is one persisted activity record for a lead.
type Event struct {
	ID        int64           `json:"id"`
	Topic     string          `json:"topic"`
	LeadID    string          `json:"lead_id"`
	OwnerID   string          `json:"owner_id"`
	Actor     string          `json:"actor,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
