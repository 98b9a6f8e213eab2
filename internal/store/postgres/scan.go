package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/groblegark/kleads/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanLead scans a single row into a model.Lead.
// The row must contain columns in the order defined by leadColumns.
func scanLead(row scannable) (*model.Lead, error) {
	var l model.Lead
	var (
		phone          sql.NullString
		company        sql.NullString
		city           sql.NullString
		state          sql.NullString
		lastActivityAt sql.NullTime
	)

	err := row.Scan(
		&l.ID,
		&l.OwnerID,
		&l.FirstName,
		&l.LastName,
		&l.Email,
		&phone,
		&company,
		&city,
		&state,
		&l.Source,
		&l.Status,
		&l.Score,
		&l.LeadValue,
		&l.IsQualified,
		&lastActivityAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Phone = phone.String
	l.Company = company.String
	l.City = city.String
	l.State = state.String

	if lastActivityAt.Valid {
		t := lastActivityAt.Time
		l.LastActivityAt = &t
	}

	return &l, nil
}

// scanLeadWithTotal scans a row that has a leading total_count column
// followed by the standard lead columns. Used by queryListLeads with
// COUNT(*) OVER().
func scanLeadWithTotal(row scannable) (*model.Lead, int, error) {
	var total int
	var l model.Lead
	var (
		phone          sql.NullString
		company        sql.NullString
		city           sql.NullString
		state          sql.NullString
		lastActivityAt sql.NullTime
	)

	err := row.Scan(
		&total,
		&l.ID,
		&l.OwnerID,
		&l.FirstName,
		&l.LastName,
		&l.Email,
		&phone,
		&company,
		&city,
		&state,
		&l.Source,
		&l.Status,
		&l.Score,
		&l.LeadValue,
		&l.IsQualified,
		&lastActivityAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	l.Phone = phone.String
	l.Company = company.String
	l.City = city.String
	l.State = state.String

	if lastActivityAt.Valid {
		t := lastActivityAt.Time
		l.LastActivityAt = &t
	}

	return &l, total, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.LeadID, &e.OwnerID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// nullTimePtr converts a *time.Time to a sql.NullTime.
func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
