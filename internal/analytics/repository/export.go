package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ExportDataset is a CSV-ready header plus rows.
type ExportDataset struct {
	Header []string
	Rows   [][]string
}

// ExportCalls returns every call flattened for reporting.
func (r *Repository) ExportCalls(ctx context.Context) (*ExportDataset, error) {
	query := `
		SELECT c.id, l.company_name, u.full_name, c.start_time, c.end_time,
		       c.duration_seconds, c.outcome, c.notes
		FROM calls c
		JOIN leads l ON c.lead_id = l.id
		LEFT JOIN users u ON c.salesperson_id = u.id
		ORDER BY c.start_time DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to export calls: %w", err)
	}
	defer rows.Close()

	ds := &ExportDataset{
		Header: []string{"id", "company_name", "salesperson", "start_time", "end_time", "duration_seconds", "outcome", "notes"},
	}
	for rows.Next() {
		var (
			id       uuid.UUID
			company  string
			person   *string
			start    time.Time
			end      *time.Time
			duration *int
			outcome  *string
			notes    string
		)
		if err := rows.Scan(&id, &company, &person, &start, &end, &duration, &outcome, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan call export row: %w", err)
		}
		ds.Rows = append(ds.Rows, []string{
			id.String(), company, strDeref(person), start.Format(time.RFC3339),
			timeDeref(end), intDeref(duration), strDeref(outcome), notes,
		})
	}

	return ds, rows.Err()
}

// ExportLeads returns every lead flattened for reporting.
func (r *Repository) ExportLeads(ctx context.Context) (*ExportDataset, error) {
	query := `
		SELECT l.id, l.company_name, l.contact_person, l.email, l.phone,
		       l.status, l.priority, u.full_name, l.created_at
		FROM leads l
		LEFT JOIN users u ON l.assigned_to = u.id
		ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to export leads: %w", err)
	}
	defer rows.Close()

	ds := &ExportDataset{
		Header: []string{"id", "company_name", "contact_person", "email", "phone", "status", "priority", "assigned_to", "created_at"},
	}
	for rows.Next() {
		var (
			id                             uuid.UUID
			company, contact, email, phone string
			status, priority               string
			assigned                       *string
			created                        time.Time
		)
		if err := rows.Scan(&id, &company, &contact, &email, &phone, &status, &priority, &assigned, &created); err != nil {
			return nil, fmt.Errorf("failed to scan lead export row: %w", err)
		}
		ds.Rows = append(ds.Rows, []string{
			id.String(), company, contact, email, phone, status, priority,
			strDeref(assigned), created.Format(time.RFC3339),
		})
	}

	return ds, rows.Err()
}

// ExportFollowups returns every follow-up flattened for reporting.
func (r *Repository) ExportFollowups(ctx context.Context) (*ExportDataset, error) {
	query := `
		SELECT f.id, l.company_name, u.full_name, f.scheduled_date, f.status,
		       f.completed_date, f.notes
		FROM followups f
		JOIN leads l ON f.lead_id = l.id
		LEFT JOIN users u ON f.salesperson_id = u.id
		ORDER BY f.scheduled_date DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to export followups: %w", err)
	}
	defer rows.Close()

	ds := &ExportDataset{
		Header: []string{"id", "company_name", "salesperson", "scheduled_date", "status", "completed_date", "notes"},
	}
	for rows.Next() {
		var (
			id        uuid.UUID
			company   string
			person    *string
			scheduled time.Time
			status    string
			completed *time.Time
			notes     string
		)
		if err := rows.Scan(&id, &company, &person, &scheduled, &status, &completed, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan followup export row: %w", err)
		}
		ds.Rows = append(ds.Rows, []string{
			id.String(), company, strDeref(person), scheduled.Format(time.RFC3339),
			status, timeDeref(completed), notes,
		})
	}

	return ds, rows.Err()
}

func strDeref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeDeref(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func intDeref(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
