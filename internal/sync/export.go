package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/groblegark/kleads/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	LeadCount int       `json:"lead_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all leads from the store as JSONL to w.
// The store returns them already sorted by ID.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	leads, err := s.ExportLeads(ctx)
	if err != nil {
		return fmt.Errorf("export leads: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: time.Now().UTC(),
		LeadCount: len(leads),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write leads.
	for _, l := range leads {
		if err := enc.Encode(record{Type: "lead", Data: l}); err != nil {
			return fmt.Errorf("encode lead %s: %w", l.ID, err)
		}
	}

	return nil
}
