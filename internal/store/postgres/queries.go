package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/groblegark/kleads/internal/model"
)

// leadColumns is the column list used for SELECT statements on the leads table.
const leadColumns = `id, owner_id, first_name, last_name, email, phone,
	company, city, state, source, status, score, lead_value, is_qualified,
	last_activity_at, created_at, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateLead(ctx context.Context, db executor, l *model.Lead) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO leads (
			id, owner_id, first_name, last_name, email, phone,
			company, city, state, source, status, score, lead_value, is_qualified,
			last_activity_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17
		)`,
		l.ID,
		l.OwnerID,
		l.FirstName,
		l.LastName,
		l.Email,
		nullString(l.Phone),
		nullString(l.Company),
		nullString(l.City),
		nullString(l.State),
		string(l.Source),
		string(l.Status),
		l.Score,
		l.LeadValue,
		l.IsQualified,
		nullTimePtr(l.LastActivityAt),
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func queryGetLead(ctx context.Context, db executor, id, ownerID string) (*model.Lead, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1 AND owner_id = $2`,
		id, ownerID)
	return scanLead(row)
}

// buildLeadPredicates translates a LeadFilter into WHERE clauses and args.
// The owner scope is always the first predicate; everything else is emitted
// only when the filter carries content for it. The filter is never mutated.
func buildLeadPredicates(ownerID string, filter model.LeadFilter) ([]string, []any) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	// Ownership scoping comes first, unconditionally.
	whereClauses = append(whereClauses, "owner_id = "+nextArg())
	args = append(args, ownerID)

	// Text fields: case-insensitive substring. Empty string means absent.
	if filter.Email != "" {
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("email ILIKE '%%' || %s || '%%'", p))
		args = append(args, filter.Email)
	}
	if filter.Company != "" {
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("company ILIKE '%%' || %s || '%%'", p))
		args = append(args, filter.Company)
	}
	if filter.City != "" {
		p := nextArg()
		whereClauses = append(whereClauses, fmt.Sprintf("city ILIKE '%%' || %s || '%%'", p))
		args = append(args, filter.City)
	}

	// Membership: an empty slice is the same as no filter at all.
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(filter.Source) > 0 {
		placeholders := make([]string, len(filter.Source))
		for i, s := range filter.Source {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "source IN ("+strings.Join(placeholders, ", ")+")")
	}

	// Ranges: each bound is independently optional.
	if filter.ScoreMin != nil {
		whereClauses = append(whereClauses, "score >= "+nextArg())
		args = append(args, *filter.ScoreMin)
	}
	if filter.ScoreMax != nil {
		whereClauses = append(whereClauses, "score <= "+nextArg())
		args = append(args, *filter.ScoreMax)
	}
	if filter.ValueMin != nil {
		whereClauses = append(whereClauses, "lead_value >= "+nextArg())
		args = append(args, *filter.ValueMin)
	}
	if filter.ValueMax != nil {
		whereClauses = append(whereClauses, "lead_value <= "+nextArg())
		args = append(args, *filter.ValueMax)
	}
	if filter.CreatedAfter != nil {
		whereClauses = append(whereClauses, "created_at >= "+nextArg())
		args = append(args, *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		whereClauses = append(whereClauses, "created_at <= "+nextArg())
		args = append(args, *filter.CreatedBefore)
	}
	if filter.ActivityAfter != nil {
		whereClauses = append(whereClauses, "last_activity_at >= "+nextArg())
		args = append(args, *filter.ActivityAfter)
	}
	if filter.ActivityBefore != nil {
		whereClauses = append(whereClauses, "last_activity_at <= "+nextArg())
		args = append(args, *filter.ActivityBefore)
	}

	// Tri-state boolean: false still filters.
	if filter.Qualified != nil {
		whereClauses = append(whereClauses, "is_qualified = "+nextArg())
		args = append(args, *filter.Qualified)
	}

	return whereClauses, args
}

func queryListLeads(ctx context.Context, db executor, ownerID string, filter model.LeadFilter, limit, offset int) ([]*model.Lead, int, error) {
	whereClauses, predArgs := buildLeadPredicates(ownerID, filter)
	args := predArgs

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	// Sort is fixed: newest first, id breaks ties so pages are stable.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + leadColumns +
		" FROM leads WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY created_at DESC, id"

	argIdx := len(args)
	if limit > 0 {
		argIdx++
		dataQuery += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}
	if offset > 0 {
		argIdx++
		dataQuery += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	var total int
	for rows.Next() {
		l, t, err := scanLeadWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan leads: %w", err)
		}
		total = t
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan leads: %w", err)
	}

	// A page past the end of the window comes back with zero rows, which
	// loses the COUNT(*) OVER() total; fall back to a plain count so the
	// caller still gets well-defined pagination.
	if leads == nil && offset > 0 {
		countQuery := "SELECT COUNT(*) FROM leads WHERE " + strings.Join(whereClauses, " AND ")
		if err := db.QueryRowContext(ctx, countQuery, predArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count leads: %w", err)
		}
	}

	return leads, total, nil
}

func queryUpdateLead(ctx context.Context, db executor, l *model.Lead) error {
	// Owner is part of the match, never part of the SET; rows under another
	// owner surface as sql.ErrNoRows.
	return db.QueryRowContext(ctx, `
		UPDATE leads SET
			first_name = $3,
			last_name = $4,
			email = $5,
			phone = $6,
			company = $7,
			city = $8,
			state = $9,
			source = $10,
			status = $11,
			score = $12,
			lead_value = $13,
			is_qualified = $14,
			last_activity_at = $15,
			updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING updated_at`,
		l.ID,
		l.OwnerID,
		l.FirstName,
		l.LastName,
		l.Email,
		nullString(l.Phone),
		nullString(l.Company),
		nullString(l.City),
		nullString(l.State),
		string(l.Source),
		string(l.Status),
		l.Score,
		l.LeadValue,
		l.IsQualified,
		nullTimePtr(l.LastActivityAt),
	).Scan(&l.UpdatedAt)
}

func queryDeleteLead(ctx context.Context, db executor, id, ownerID string) error {
	res, err := db.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryExportLeads(ctx context.Context, db executor) ([]*model.Lead, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("export leads: %w", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leads: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan leads: %w", err)
	}
	return leads, nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, lead_id, owner_id, actor, payload)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		e.Topic, e.LeadID, e.OwnerID, e.Actor, []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, leadID, ownerID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, lead_id, owner_id, actor, payload, created_at
		FROM events
		WHERE lead_id = $1 AND owner_id = $2
		ORDER BY created_at ASC`,
		leadID, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}
