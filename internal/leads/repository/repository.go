package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calltrack_backend/internal/leads/transport"
	"calltrack_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead represents the lead database model.
type Lead struct {
	ID            uuid.UUID  `db:"id"`
	CompanyName   string     `db:"company_name"`
	ContactPerson string     `db:"contact_person"`
	Email         string     `db:"email"`
	Phone         string     `db:"phone"`
	Status        string     `db:"status"`
	Priority      string     `db:"priority"`
	AssignedTo    *uuid.UUID `db:"assigned_to"`
	UploadedBy    uuid.UUID  `db:"uploaded_by"`
	Notes         string     `db:"notes"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`

	// Joined display names, populated by list/get queries.
	AssignedToName *string `db:"assigned_to_name"`
	UploadedByName *string `db:"uploaded_by_name"`
}

const leadNotFoundMsg = "lead not found"

const leadSelect = `
	SELECT l.id, l.company_name, l.contact_person, l.email, l.phone, l.status,
	       l.priority, l.assigned_to, l.uploaded_by, l.notes, l.created_at, l.updated_at,
	       u1.full_name AS assigned_to_name,
	       u2.full_name AS uploaded_by_name
	FROM leads l
	LEFT JOIN users u1 ON l.assigned_to = u1.id
	LEFT JOIN users u2 ON l.uploaded_by = u2.id`

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead.
func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (id, company_name, contact_person, email, phone, status,
			priority, assigned_to, uploaded_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		lead.ID, lead.CompanyName, lead.ContactPerson, lead.Email, lead.Phone,
		lead.Status, lead.Priority, lead.AssignedTo, lead.UploadedBy, lead.Notes,
		lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

// CreateBatch inserts multiple leads in a single transaction.
// Used by the CSV importer; either all rows land or none do.
func (r *Repository) CreateBatch(ctx context.Context, leads []Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin lead batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO leads (id, company_name, contact_person, email, phone, status,
			priority, assigned_to, uploaded_by, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	for i := range leads {
		lead := &leads[i]
		if _, err := tx.Exec(ctx, query,
			lead.ID, lead.CompanyName, lead.ContactPerson, lead.Email, lead.Phone,
			lead.Status, lead.Priority, lead.AssignedTo, lead.UploadedBy, lead.Notes,
			lead.CreatedAt, lead.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert lead batch row: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a lead with joined display names.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := leadSelect + ` WHERE l.id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

// Exists reports whether a lead exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check lead existence: %w", err)
	}
	return exists, nil
}

// ListParams contains filters for listing leads.
type ListParams struct {
	Status     *transport.LeadStatus
	AssignedTo *uuid.UUID
	Priority   *transport.LeadPriority
}

// List retrieves leads with optional filtering, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, error) {
	query := leadSelect + ` WHERE 1=1`
	args := []interface{}{}
	argIndex := 1

	if params.Status != nil {
		query += fmt.Sprintf(" AND l.status = $%d", argIndex)
		args = append(args, string(*params.Status))
		argIndex++
	}
	if params.AssignedTo != nil {
		query += fmt.Sprintf(" AND l.assigned_to = $%d", argIndex)
		args = append(args, *params.AssignedTo)
		argIndex++
	}
	if params.Priority != nil {
		query += fmt.Sprintf(" AND l.priority = $%d", argIndex)
		args = append(args, string(*params.Priority))
		argIndex++
	}

	query += " ORDER BY l.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// Update replaces a lead's mutable fields, including an administrative
// status override.
func (r *Repository) Update(ctx context.Context, lead *Lead) error {
	query := `
		UPDATE leads SET
			company_name = $2,
			contact_person = $3,
			email = $4,
			phone = $5,
			status = $6,
			assigned_to = $7,
			priority = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		lead.ID, lead.CompanyName, lead.ContactPerson, lead.Email, lead.Phone,
		lead.Status, lead.AssignedTo, lead.Priority, lead.Notes, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}

	return nil
}

// Assign sets or clears the lead's salesperson.
func (r *Repository) Assign(ctx context.Context, id uuid.UUID, assignedTo *uuid.UUID) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE leads SET assigned_to = $2, updated_at = $3 WHERE id = $1`,
		id, assignedTo, time.Now())
	if err != nil {
		return fmt.Errorf("failed to assign lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}

	return nil
}

// Delete hard-deletes a lead. Administrative action only; the salesperson
// surface never exposes it.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}

	return nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.CompanyName, &lead.ContactPerson, &lead.Email, &lead.Phone,
		&lead.Status, &lead.Priority, &lead.AssignedTo, &lead.UploadedBy, &lead.Notes,
		&lead.CreatedAt, &lead.UpdatedAt, &lead.AssignedToName, &lead.UploadedByName,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]Lead, error) {
	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}
