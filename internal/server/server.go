// Package server implements the lead operations and their HTTP/JSON transport.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/groblegark/kleads/internal/events"
	"github.com/groblegark/kleads/internal/model"
	"github.com/groblegark/kleads/internal/store"
)

// LeadsServer executes lead queries and mutations on behalf of an
// authenticated identity.
type LeadsServer struct {
	store     store.Store
	publisher events.Publisher
}

// NewLeadsServer returns a new LeadsServer backed by the given store and publisher.
func NewLeadsServer(s store.Store, p events.Publisher) *LeadsServer {
	return &LeadsServer{
		store:     s,
		publisher: p,
	}
}

// recordEvent persists an activity event through the given store, which is
// expected to be the transaction carrying the mutation the event describes,
// so the mutation and its history row commit or roll back together.
func recordEvent(ctx context.Context, tx store.Store, topic, leadID, ownerID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return tx.RecordEvent(ctx, &model.Event{
		Topic:   topic,
		LeadID:  leadID,
		OwnerID: ownerID,
		Actor:   ownerID,
		Payload: payload,
	})
}

// publishEvent sends the event to the broker after the mutation has
// committed. Best-effort; failures are logged but do not block the caller.
func (s *LeadsServer) publishEvent(ctx context.Context, topic, leadID string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "lead_id", leadID, "error", err)
	}
}

// inputError indicates invalid user input.
// The transport layer maps this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
