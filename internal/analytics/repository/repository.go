package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DateRange is an optional inclusive window over call start times.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// CallTotals holds raw call aggregates for one scope.
type CallTotals struct {
	TotalCalls  int
	AvgDuration int
	Converted   int
}

// LeaderboardRow is one active salesperson's raw counts.
type LeaderboardRow struct {
	SalespersonID uuid.UUID
	FullName      string
	TotalCalls    int
	AvgDuration   int
	Conversions   int
}

// DayRow is one calendar day's raw call count.
type DayRow struct {
	Day   time.Time
	Count int
}

// FollowupScheduleMark is one follow-up's scheduled date and whether it was
// completed. The completion rate is derived from these in the service.
type FollowupScheduleMark struct {
	ScheduledDate time.Time
	Completed     bool
}

// Repository runs read-only aggregate queries across calls, leads, users
// and followups. It owns no tables.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new analytics repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// rangeClause appends date-window conditions on the given column. argIndex
// continues the caller's placeholder numbering.
func rangeClause(column string, r DateRange, args []interface{}) (string, []interface{}) {
	clause := ""
	if r.Start != nil {
		args = append(args, *r.Start)
		clause += fmt.Sprintf(" AND %s >= $%d", column, len(args))
	}
	if r.End != nil {
		args = append(args, r.End.AddDate(0, 0, 1))
		clause += fmt.Sprintf(" AND %s < $%d", column, len(args))
	}
	return clause, args
}

// CallTotals aggregates call counts, optionally scoped to a salesperson and
// date window. Average duration considers only closed calls and rounds to
// the nearest whole second.
func (r *Repository) CallTotals(ctx context.Context, scope *uuid.UUID, window DateRange) (*CallTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(duration_seconds)), 0),
		       COUNT(*) FILTER (WHERE outcome = 'converted')
		FROM calls
		WHERE 1=1`
	args := []interface{}{}

	if scope != nil {
		args = append(args, *scope)
		query += fmt.Sprintf(" AND salesperson_id = $%d", len(args))
	}
	clause, args := rangeClause("start_time", window, args)
	query += clause

	var totals CallTotals
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&totals.TotalCalls, &totals.AvgDuration, &totals.Converted); err != nil {
		return nil, fmt.Errorf("failed to aggregate call totals: %w", err)
	}

	return &totals, nil
}

// TotalLeads counts every lead in the book.
func (r *Repository) TotalLeads(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// ActiveSalespeople counts active users holding the salesperson role.
func (r *Repository) ActiveSalespeople(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM users WHERE role = 'salesperson' AND is_active`
	if err := r.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count salespeople: %w", err)
	}
	return count, nil
}

// CallsPerDay groups call counts by calendar day from `since` onward,
// ascending. Days with no calls produce no row.
func (r *Repository) CallsPerDay(ctx context.Context, scope *uuid.UUID, since time.Time) ([]DayRow, error) {
	query := `
		SELECT DATE(start_time) AS day, COUNT(*)
		FROM calls
		WHERE start_time >= $1`
	args := []interface{}{since}
	if scope != nil {
		args = append(args, *scope)
		query += fmt.Sprintf(" AND salesperson_id = $%d", len(args))
	}
	query += ` GROUP BY day ORDER BY day ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group calls per day: %w", err)
	}
	defer rows.Close()

	days := []DayRow{}
	for rows.Next() {
		var d DayRow
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan day row: %w", err)
		}
		days = append(days, d)
	}

	return days, rows.Err()
}

// CallsByOutcome groups closed-call counts by outcome.
func (r *Repository) CallsByOutcome(ctx context.Context, scope *uuid.UUID, window DateRange) (map[string]int, error) {
	query := `
		SELECT outcome, COUNT(*)
		FROM calls
		WHERE outcome IS NOT NULL`
	args := []interface{}{}
	if scope != nil {
		args = append(args, *scope)
		query += fmt.Sprintf(" AND salesperson_id = $%d", len(args))
	}
	clause, args := rangeClause("start_time", window, args)
	query += clause + ` GROUP BY outcome`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group calls by outcome: %w", err)
	}
	defer rows.Close()

	byOutcome := map[string]int{}
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, fmt.Errorf("failed to scan outcome row: %w", err)
		}
		byOutcome[outcome] = count
	}

	return byOutcome, rows.Err()
}

// LeadsByStatus groups lead counts by lifecycle status.
func (r *Repository) LeadsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to group leads by status: %w", err)
	}
	defer rows.Close()

	byStatus := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status row: %w", err)
		}
		byStatus[status] = count
	}

	return byStatus, rows.Err()
}

// FollowupSchedule returns every follow-up's scheduled date and completion
// state. The past-due cutoff is applied by the caller.
func (r *Repository) FollowupSchedule(ctx context.Context) ([]FollowupScheduleMark, error) {
	query := `SELECT scheduled_date, status = 'completed' FROM followups`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load followup schedule: %w", err)
	}
	defer rows.Close()

	marks := []FollowupScheduleMark{}
	for rows.Next() {
		var m FollowupScheduleMark
		if err := rows.Scan(&m.ScheduledDate, &m.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan followup schedule row: %w", err)
		}
		marks = append(marks, m)
	}

	return marks, rows.Err()
}

// Leaderboard returns every active salesperson with their call aggregates in
// the window. Salespeople with no calls still appear, with zero counts.
func (r *Repository) Leaderboard(ctx context.Context, window DateRange) ([]LeaderboardRow, error) {
	args := []interface{}{}
	clause, args := rangeClause("c.start_time", window, args)

	query := fmt.Sprintf(`
		SELECT u.id, u.full_name,
		       COUNT(c.id),
		       COALESCE(ROUND(AVG(c.duration_seconds)), 0),
		       COUNT(c.id) FILTER (WHERE c.outcome = 'converted')
		FROM users u
		LEFT JOIN calls c ON c.salesperson_id = u.id%s
		WHERE u.role = 'salesperson' AND u.is_active
		GROUP BY u.id, u.full_name
		ORDER BY COUNT(c.id) FILTER (WHERE c.outcome = 'converted') DESC, COUNT(c.id) DESC`, clause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	defer rows.Close()

	board := []LeaderboardRow{}
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.SalespersonID, &row.FullName, &row.TotalCalls, &row.AvgDuration, &row.Conversions); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		board = append(board, row)
	}

	return board, rows.Err()
}

// AssignedLeadCount counts leads currently assigned to a salesperson.
func (r *Repository) AssignedLeadCount(ctx context.Context, salespersonID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM leads WHERE assigned_to = $1`
	if err := r.pool.QueryRow(ctx, query, salespersonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count assigned leads: %w", err)
	}
	return count, nil
}

// FollowupStatusCounts counts a salesperson's pending and missed follow-ups.
func (r *Repository) FollowupStatusCounts(ctx context.Context, salespersonID uuid.UUID) (pending, missed int, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'missed')
		FROM followups
		WHERE salesperson_id = $1`

	if err := r.pool.QueryRow(ctx, query, salespersonID).Scan(&pending, &missed); err != nil {
		return 0, 0, fmt.Errorf("failed to count followups: %w", err)
	}

	return pending, missed, nil
}
