package store

import (
	"context"

	"github.com/groblegark/kleads/internal/model"
)

// Store defines the persistence interface for leads. Every read and write is
// additionally scoped by the owning user's ID; a lead under another owner is
// indistinguishable from a missing row.
type Store interface {
	// Lead CRUD
	CreateLead(ctx context.Context, lead *model.Lead) error
	GetLead(ctx context.Context, id, ownerID string) (*model.Lead, error)
	ListLeads(ctx context.Context, ownerID string, filter model.LeadFilter, limit, offset int) ([]*model.Lead, int, error) // returns leads, total count, error
	UpdateLead(ctx context.Context, lead *model.Lead) error
	DeleteLead(ctx context.Context, id, ownerID string) error

	// ExportLeads returns every lead across all owners, ordered by ID.
	// Backup path only; user-facing reads always go through the scoped methods.
	ExportLeads(ctx context.Context) ([]*model.Lead, error)

	// Activity events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, leadID, ownerID string) ([]*model.Event, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
