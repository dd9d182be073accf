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

// Followup represents the follow-up database model.
type Followup struct {
	ID            uuid.UUID  `db:"id"`
	LeadID        uuid.UUID  `db:"lead_id"`
	CallID        *uuid.UUID `db:"call_id"`
	SalespersonID uuid.UUID  `db:"salesperson_id"`
	ScheduledDate time.Time  `db:"scheduled_date"`
	Status        string     `db:"status"`
	CompletedDate *time.Time `db:"completed_date"`
	Notes         string     `db:"notes"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`

	// Joined display fields, populated by list/get queries.
	CompanyName     string  `db:"company_name"`
	ContactPerson   string  `db:"contact_person"`
	SalespersonName *string `db:"salesperson_name"`
}

const followupNotFoundMsg = "followup not found"

const followupSelect = `
	SELECT f.id, f.lead_id, f.call_id, f.salesperson_id, f.scheduled_date,
	       f.status, f.completed_date, f.notes, f.created_at, f.updated_at,
	       l.company_name, l.contact_person,
	       u.full_name AS salesperson_name
	FROM followups f
	JOIN leads l ON f.lead_id = l.id
	LEFT JOIN users u ON f.salesperson_id = u.id`

// Repository provides database operations for follow-ups.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new followups repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new pending follow-up.
func (r *Repository) Create(ctx context.Context, f *Followup) error {
	query := `
		INSERT INTO followups (id, lead_id, call_id, salesperson_id, scheduled_date,
			status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		f.ID, f.LeadID, f.CallID, f.SalespersonID, f.ScheduledDate,
		f.Status, f.Notes, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create followup: %w", err)
	}

	return nil
}

// GetByID retrieves a follow-up with joined display fields.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Followup, error) {
	query := followupSelect + ` WHERE f.id = $1`

	f, err := scanFollowup(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(followupNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get followup: %w", err)
	}

	return f, nil
}

// Update replaces the follow-up's schedule, notes and status.
// completed_date moves only through Complete or the sweep.
func (r *Repository) Update(ctx context.Context, f *Followup) error {
	query := `
		UPDATE followups
		SET scheduled_date = $2, notes = $3, status = $4, updated_at = $5
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, f.ID, f.ScheduledDate, f.Notes, f.Status, f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update followup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(followupNotFoundMsg)
	}

	return nil
}

// Complete stamps the follow-up completed as of now. Re-completing an
// already-completed follow-up re-stamps the completion time.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, notes string, completedAt time.Time) error {
	query := `
		UPDATE followups
		SET status = 'completed', completed_date = $2, notes = $3, updated_at = $2
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, completedAt, notes)
	if err != nil {
		return fmt.Errorf("failed to complete followup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(followupNotFoundMsg)
	}

	return nil
}

// Delete removes a follow-up.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM followups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete followup: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(followupNotFoundMsg)
	}

	return nil
}

// ListParams filters follow-up listings.
type ListParams struct {
	SalespersonID *uuid.UUID
	LeadID        *uuid.UUID
	Status        *string
	StartDate     *time.Time
	EndDate       *time.Time
}

// List retrieves follow-ups with optional filtering, soonest scheduled first.
// Date bounds are inclusive on the scheduled date.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Followup, error) {
	query := followupSelect + ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if params.SalespersonID != nil {
		query += fmt.Sprintf(" AND f.salesperson_id = $%d", argIndex)
		args = append(args, *params.SalespersonID)
		argIndex++
	}
	if params.LeadID != nil {
		query += fmt.Sprintf(" AND f.lead_id = $%d", argIndex)
		args = append(args, *params.LeadID)
		argIndex++
	}
	if params.Status != nil {
		query += fmt.Sprintf(" AND f.status = $%d", argIndex)
		args = append(args, *params.Status)
		argIndex++
	}
	if params.StartDate != nil {
		query += fmt.Sprintf(" AND f.scheduled_date >= $%d", argIndex)
		args = append(args, *params.StartDate)
		argIndex++
	}
	if params.EndDate != nil {
		query += fmt.Sprintf(" AND f.scheduled_date < $%d", argIndex)
		args = append(args, params.EndDate.AddDate(0, 0, 1))
		argIndex++
	}

	query += " ORDER BY f.scheduled_date ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list followups: %w", err)
	}
	defer rows.Close()

	return scanFollowups(rows)
}

// MissedRow identifies one follow-up flipped to missed by a sweep.
type MissedRow struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	SalespersonID uuid.UUID
	ScheduledDate time.Time
}

// SweepMissed marks every pending follow-up whose scheduled date has passed
// as missed. A single conditional update, so concurrent sweeps or a racing
// Complete cannot double-transition a row; re-running is a no-op.
func (r *Repository) SweepMissed(ctx context.Context, now time.Time) ([]MissedRow, error) {
	query := `
		UPDATE followups
		SET status = 'missed', updated_at = $1
		WHERE status = 'pending' AND scheduled_date < $1
		RETURNING id, lead_id, salesperson_id, scheduled_date`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to sweep missed followups: %w", err)
	}
	defer rows.Close()

	missed := []MissedRow{}
	for rows.Next() {
		var m MissedRow
		if err := rows.Scan(&m.ID, &m.LeadID, &m.SalespersonID, &m.ScheduledDate); err != nil {
			return nil, fmt.Errorf("failed to scan missed followup row: %w", err)
		}
		missed = append(missed, m)
	}

	return missed, rows.Err()
}

func scanFollowup(row pgx.Row) (*Followup, error) {
	var f Followup
	err := row.Scan(
		&f.ID, &f.LeadID, &f.CallID, &f.SalespersonID, &f.ScheduledDate,
		&f.Status, &f.CompletedDate, &f.Notes, &f.CreatedAt, &f.UpdatedAt,
		&f.CompanyName, &f.ContactPerson, &f.SalespersonName,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanFollowups(rows pgx.Rows) ([]Followup, error) {
	followups := []Followup{}
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan followup row: %w", err)
		}
		followups = append(followups, *f)
	}
	return followups, rows.Err()
}
