package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"calltrack_backend/internal/analytics/repository"
	"calltrack_backend/internal/analytics/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/mathutil"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Store is the aggregate-query surface the service needs.
type Store interface {
	CallTotals(ctx context.Context, scope *uuid.UUID, window repository.DateRange) (*repository.CallTotals, error)
	TotalLeads(ctx context.Context) (int, error)
	ActiveSalespeople(ctx context.Context) (int, error)
	CallsPerDay(ctx context.Context, scope *uuid.UUID, since time.Time) ([]repository.DayRow, error)
	CallsByOutcome(ctx context.Context, scope *uuid.UUID, window repository.DateRange) (map[string]int, error)
	LeadsByStatus(ctx context.Context) (map[string]int, error)
	FollowupSchedule(ctx context.Context) ([]repository.FollowupScheduleMark, error)
	Leaderboard(ctx context.Context, window repository.DateRange) ([]repository.LeaderboardRow, error)
	AssignedLeadCount(ctx context.Context, salespersonID uuid.UUID) (int, error)
	FollowupStatusCounts(ctx context.Context, salespersonID uuid.UUID) (pending, missed int, err error)
	ExportCalls(ctx context.Context) (*repository.ExportDataset, error)
	ExportLeads(ctx context.Context) (*repository.ExportDataset, error)
	ExportFollowups(ctx context.Context) (*repository.ExportDataset, error)
}

// Service implements reporting aggregates. Read-only; every rate is computed
// here from raw counts, nothing derived is stored.
type Service struct {
	store Store
	now   func() time.Time
}

// New creates a new analytics service.
func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

const trailingDays = 7

// Overall builds the dashboard summary. The independent aggregates run
// concurrently; the first failure cancels the rest.
func (s *Service) Overall(ctx context.Context, req transport.DateRangeRequest) (*transport.OverallSummary, error) {
	window := repository.DateRange{Start: req.StartDate, End: req.EndDate}
	now := s.now()

	var (
		totals     *repository.CallTotals
		totalLeads int
		active     int
		days       []repository.DayRow
		byOutcome  map[string]int
		byStatus   map[string]int
		schedule   []repository.FollowupScheduleMark
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.store.CallTotals(gctx, nil, window)
		return err
	})
	g.Go(func() (err error) {
		totalLeads, err = s.store.TotalLeads(gctx)
		return err
	})
	g.Go(func() (err error) {
		active, err = s.store.ActiveSalespeople(gctx)
		return err
	})
	g.Go(func() (err error) {
		days, err = s.store.CallsPerDay(gctx, nil, startOfDay(now).AddDate(0, 0, -(trailingDays-1)))
		return err
	})
	g.Go(func() (err error) {
		byOutcome, err = s.store.CallsByOutcome(gctx, nil, window)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.store.LeadsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		schedule, err = s.store.FollowupSchedule(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to build overall summary", err)
	}

	return &transport.OverallSummary{
		TotalCalls:             totals.TotalCalls,
		TotalLeads:             totalLeads,
		ActiveSalespeople:      active,
		AvgDurationSeconds:     totals.AvgDuration,
		ConversionRate:         mathutil.Rate2(totals.Converted, totals.TotalCalls),
		FollowupCompletionRate: followupCompletionRate(schedule, now),
		CallsPerDay:            fillTrailingDays(days, now),
		CallsByOutcome:         byOutcome,
		LeadsByStatus:          byStatus,
	}, nil
}

// Leaderboard ranks every active salesperson by conversions, then call
// volume. Salespeople with no calls in the window keep a null rate.
func (s *Service) Leaderboard(ctx context.Context, req transport.DateRangeRequest) ([]transport.LeaderboardEntry, error) {
	rows, err := s.store.Leaderboard(ctx, repository.DateRange{Start: req.StartDate, End: req.EndDate})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to build leaderboard", err)
	}

	board := make([]transport.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entry := transport.LeaderboardEntry{
			SalespersonID:      row.SalespersonID,
			FullName:           row.FullName,
			TotalCalls:         row.TotalCalls,
			AvgDurationSeconds: row.AvgDuration,
			Conversions:        row.Conversions,
		}
		if row.TotalCalls > 0 {
			rate := mathutil.Rate2(row.Conversions, row.TotalCalls)
			entry.ConversionRate = &rate
		}
		board = append(board, entry)
	}

	rankLeaderboard(board)
	return board, nil
}

// rankLeaderboard orders entries by conversion count, then call volume. The
// query already orders this way; ranking here keeps the ordering independent
// of how the rows arrive.
func rankLeaderboard(board []transport.LeaderboardEntry) {
	sort.SliceStable(board, func(i, j int) bool {
		if board[i].Conversions != board[j].Conversions {
			return board[i].Conversions > board[j].Conversions
		}
		return board[i].TotalCalls > board[j].TotalCalls
	})
}

// Performance builds one salesperson's detail view.
func (s *Service) Performance(ctx context.Context, salespersonID uuid.UUID, req transport.DateRangeRequest) (*transport.Performance, error) {
	window := repository.DateRange{Start: req.StartDate, End: req.EndDate}
	now := s.now()

	var (
		totals          *repository.CallTotals
		days            []repository.DayRow
		byOutcome       map[string]int
		assigned        int
		pending, missed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.store.CallTotals(gctx, &salespersonID, window)
		return err
	})
	g.Go(func() (err error) {
		days, err = s.store.CallsPerDay(gctx, &salespersonID, startOfDay(now).AddDate(0, 0, -(trailingDays-1)))
		return err
	})
	g.Go(func() (err error) {
		byOutcome, err = s.store.CallsByOutcome(gctx, &salespersonID, window)
		return err
	})
	g.Go(func() (err error) {
		assigned, err = s.store.AssignedLeadCount(gctx, salespersonID)
		return err
	})
	g.Go(func() (err error) {
		pending, missed, err = s.store.FollowupStatusCounts(gctx, salespersonID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to build performance view", err)
	}

	return &transport.Performance{
		SalespersonID:      salespersonID,
		TotalCalls:         totals.TotalCalls,
		AvgDurationSeconds: totals.AvgDuration,
		ConversionRate:     mathutil.Rate2(totals.Converted, totals.TotalCalls),
		AssignedLeads:      assigned,
		PendingFollowups:   pending,
		MissedFollowups:    missed,
		CallsPerDay:        fillTrailingDays(days, now),
		CallsByOutcome:     byOutcome,
	}, nil
}

// Export streams the requested dataset as CSV.
func (s *Service) Export(ctx context.Context, typ transport.ExportType, w io.Writer) error {
	var (
		ds  *repository.ExportDataset
		err error
	)
	switch typ {
	case transport.ExportCalls:
		ds, err = s.store.ExportCalls(ctx)
	case transport.ExportLeads:
		ds, err = s.store.ExportLeads(ctx)
	case transport.ExportFollowups:
		ds, err = s.store.ExportFollowups(ctx)
	default:
		return apperr.BadRequest("unknown export type")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to build export", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Header); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}
	for _, row := range ds.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write export row: %w", err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// followupCompletionRate computes the share of completed follow-ups among
// those already due. Follow-ups scheduled in the future count on neither side.
func followupCompletionRate(marks []repository.FollowupScheduleMark, now time.Time) float64 {
	var completed, due int
	for _, m := range marks {
		if !m.ScheduledDate.Before(now) {
			continue
		}
		due++
		if m.Completed {
			completed++
		}
	}

	return mathutil.Rate2(completed, due)
}

// fillTrailingDays expands sparse day rows into a dense ascending window of
// the trailing seven calendar days, zero-filling quiet days.
func fillTrailingDays(days []repository.DayRow, now time.Time) []transport.DayCount {
	counts := map[string]int{}
	for _, d := range days {
		counts[d.Day.Format("2006-01-02")] += d.Count
	}

	out := make([]transport.DayCount, 0, trailingDays)
	start := startOfDay(now).AddDate(0, 0, -(trailingDays - 1))
	for i := 0; i < trailingDays; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, transport.DayCount{Date: date, Count: counts[date]})
	}

	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
