package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Call represents the call session database model.
type Call struct {
	ID              uuid.UUID  `db:"id"`
	LeadID          uuid.UUID  `db:"lead_id"`
	SalespersonID   uuid.UUID  `db:"salesperson_id"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         *time.Time `db:"end_time"`
	DurationSeconds *int       `db:"duration_seconds"`
	Outcome         *string    `db:"outcome"`
	Notes           string     `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`

	// Joined display fields, populated by list/get queries.
	CompanyName     string  `db:"company_name"`
	ContactPerson   string  `db:"contact_person"`
	SalespersonName *string `db:"salesperson_name"`
}

const callNotFoundMsg = "call not found"

const callSelect = `
	SELECT c.id, c.lead_id, c.salesperson_id, c.start_time, c.end_time,
	       c.duration_seconds, c.outcome, c.notes, c.created_at,
	       l.company_name, l.contact_person,
	       u.full_name AS salesperson_name
	FROM calls c
	JOIN leads l ON c.lead_id = l.id
	LEFT JOIN users u ON c.salesperson_id = u.id`

// Repository provides database operations for call sessions.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new calls repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new open call session.
func (r *Repository) Create(ctx context.Context, call *Call) error {
	query := `
		INSERT INTO calls (id, lead_id, salesperson_id, start_time, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		call.ID, call.LeadID, call.SalespersonID, call.StartTime, call.Notes, call.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}

	return nil
}

// GetByID retrieves a call with joined lead and salesperson display fields.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	query := callSelect + ` WHERE c.id = $1`

	call, err := scanCall(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(callNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	return call, nil
}

// CloseParams carries the fields written when a session is closed.
type CloseParams struct {
	EndTime         time.Time
	DurationSeconds int
	Outcome         string
	Notes           string

	// LeadStatus, when non-nil, is the status the outcome projects the
	// lead to. Applied in the same transaction as the close.
	LeadStatus *string
}

// CloseAndProjectStatus closes an open session and applies the outcome's
// lead-status projection atomically. The close is a conditional update keyed
// on end_time being null, so of two concurrent closes exactly one wins; the
// loser gets a conflict. Returns NotFound when the session does not exist and
// Conflict when it is already closed.
func (r *Repository) CloseAndProjectStatus(ctx context.Context, id uuid.UUID, params CloseParams) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin close: %w", err)
	}
	defer tx.Rollback(ctx)

	closeQuery := `
		UPDATE calls
		SET end_time = $2, duration_seconds = $3, outcome = $4, notes = $5
		WHERE id = $1 AND end_time IS NULL
		RETURNING lead_id`

	var leadID uuid.UUID
	if err := tx.QueryRow(ctx, closeQuery,
		id, params.EndTime, params.DurationSeconds, params.Outcome, params.Notes,
	).Scan(&leadID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyCloseMiss(ctx, id)
		}
		return fmt.Errorf("failed to close call: %w", err)
	}

	if params.LeadStatus != nil {
		statusQuery := `UPDATE leads SET status = $2, updated_at = $3 WHERE id = $1`
		if _, err := tx.Exec(ctx, statusQuery, leadID, *params.LeadStatus, params.EndTime); err != nil {
			return fmt.Errorf("failed to project lead status: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// classifyCloseMiss distinguishes a missing session from an already-closed one.
func (r *Repository) classifyCloseMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM calls WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check call state: %w", err)
	}
	if !exists {
		return apperr.NotFound(callNotFoundMsg)
	}
	return apperr.Conflict("call already ended")
}

// ListParams filters call listings.
type ListParams struct {
	SalespersonID *uuid.UUID
	LeadID        *uuid.UUID
	Outcome       *string
	StartDate     *time.Time
	EndDate       *time.Time
}

// List retrieves calls with optional filtering, newest first. Date bounds
// are inclusive on the call start time.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Call, error) {
	query := callSelect + ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if params.SalespersonID != nil {
		query += fmt.Sprintf(" AND c.salesperson_id = $%d", argIndex)
		args = append(args, *params.SalespersonID)
		argIndex++
	}
	if params.LeadID != nil {
		query += fmt.Sprintf(" AND c.lead_id = $%d", argIndex)
		args = append(args, *params.LeadID)
		argIndex++
	}
	if params.Outcome != nil {
		query += fmt.Sprintf(" AND c.outcome = $%d", argIndex)
		args = append(args, *params.Outcome)
		argIndex++
	}
	if params.StartDate != nil {
		query += fmt.Sprintf(" AND c.start_time >= $%d", argIndex)
		args = append(args, *params.StartDate)
		argIndex++
	}
	if params.EndDate != nil {
		query += fmt.Sprintf(" AND c.start_time < $%d", argIndex)
		args = append(args, params.EndDate.AddDate(0, 0, 1))
		argIndex++
	}

	query += " ORDER BY c.start_time DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calls: %w", err)
	}
	defer rows.Close()

	return scanCalls(rows)
}

// StatsRow holds raw aggregate counts for the stats endpoint.
type StatsRow struct {
	TotalCalls  int
	AvgDuration int
	Converted   int
	ByOutcome   map[string]int
}

// Stats aggregates call counts, optionally scoped to one salesperson.
func (r *Repository) Stats(ctx context.Context, salespersonID *uuid.UUID) (*StatsRow, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(duration_seconds)), 0),
		       COUNT(*) FILTER (WHERE outcome = 'converted')
		FROM calls`
	args := []interface{}{}
	if salespersonID != nil {
		query += ` WHERE salesperson_id = $1`
		args = append(args, *salespersonID)
	}

	row := &StatsRow{ByOutcome: map[string]int{}}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&row.TotalCalls, &row.AvgDuration, &row.Converted); err != nil {
		return nil, fmt.Errorf("failed to aggregate calls: %w", err)
	}

	outcomeQuery := `
		SELECT outcome, COUNT(*)
		FROM calls
		WHERE outcome IS NOT NULL`
	if salespersonID != nil {
		outcomeQuery += ` AND salesperson_id = $1`
	}
	outcomeQuery += ` GROUP BY outcome`

	rows, err := r.pool.Query(ctx, outcomeQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate call outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan call outcome row: %w", err)
		}
		row.ByOutcome[outcome] = count
	}

	return row, rows.Err()
}

func scanCall(row pgx.Row) (*Call, error) {
	var c Call
	err := row.Scan(
		&c.ID, &c.LeadID, &c.SalespersonID, &c.StartTime, &c.EndTime,
		&c.DurationSeconds, &c.Outcome, &c.Notes, &c.CreatedAt,
		&c.CompanyName, &c.ContactPerson, &c.SalespersonName,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCalls(rows pgx.Rows) ([]Call, error) {
	calls := []Call{}
	for rows.Next() {
		call, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call row: %w", err)
		}
		calls = append(calls, *call)
	}
	return calls, rows.Err()
}
