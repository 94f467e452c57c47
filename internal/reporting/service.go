package reporting

import (
	"context"
	"math"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"voice-dashboard/internal/apperr"
)

// Repository computes raw aggregates from the fact store. Every call re-reads the store.
type Repository interface {
	Totals(ctx context.Context) (TotalsRow, error)
	Today(ctx context.Context) (DayRow, error)
	Recent(ctx context.Context, limit int) ([]RecentRow, error)
}

// Service derives dashboard read models.
// Identical concurrent reads share one store round trip; nothing is kept after it returns.
type Service struct {
	repo  Repository
	group singleflight.Group
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	row, err := do(ctx, &s.group, "totals", s.repo.Totals)
	if err != nil {
		return Totals{}, apperr.FromStore(err, "")
	}
	return Totals{
		TotalCalls:   row.TotalCalls,
		ActiveAgents: row.ActiveAgentsToday,
		TotalMinutes: int64(math.Round(finite(row.TotalDurationSeconds / 60))),
		Revenue:      row.Revenue.InexactFloat64(),
	}, nil
}

func (s *Service) RecentActivity(ctx context.Context, limit int) (RecentActivity, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows, err := do(ctx, &s.group, "recent:"+strconv.Itoa(limit), func(ctx context.Context) ([]RecentRow, error) {
		return s.repo.Recent(ctx, limit)
	})
	if err != nil {
		return RecentActivity{Calls: []RecentCall{}}, apperr.FromStore(err, "")
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	out := RecentActivity{Calls: make([]RecentCall, 0, len(rows))}
	for _, r := range rows {
		rc := RecentCall{
			CallerNumber: orUnknown(r.CallerNumber),
			AgentID:      orUnknown(r.AgentID),
			Status:       orUnknown(r.Status),
			StartTime:    r.StartTime.UTC().Format(time.RFC3339Nano),
		}
		if r.Duration != nil {
			rc.Duration = *r.Duration
		}
		out.Calls = append(out.Calls, rc)
	}
	return out, nil
}

func (s *Service) QuickStats(ctx context.Context) (QuickStats, error) {
	day, err := do(ctx, &s.group, "today", s.repo.Today)
	if err != nil {
		return QuickStats{}, apperr.FromStore(err, "")
	}
	return computeQuickStats(day), nil
}

func computeQuickStats(day DayRow) QuickStats {
	var qs QuickStats
	if day.Calls > 0 {
		qs.SuccessRate = 100 * float64(day.Completed) / float64(day.Calls)
	}
	qs.AvgDuration = finite(day.AvgDurationSeconds / 60)
	if day.DistinctAgents > 0 {
		qs.AgentUtilization = 100 * (day.TotalDurationSeconds / 60) / float64(minutesPerDay*day.DistinctAgents)
	}
	qs.SuccessRate = clampPercent(qs.SuccessRate)
	qs.AgentUtilization = clampPercent(qs.AgentUtilization)
	return qs
}

func do[T any](ctx context.Context, g *singleflight.Group, key string, fn func(context.Context) (T, error)) (T, error) {
	// Detach so one caller going away does not fail the others sharing the flight.
	shared := context.WithoutCancel(ctx)
	ch := g.DoChan(key, func() (any, error) { return fn(shared) })

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func clampPercent(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
