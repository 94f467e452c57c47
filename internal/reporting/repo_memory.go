package reporting

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"voice-dashboard/internal/calls"
)

// CallSource exposes the raw ledger to the in-memory aggregator.
type CallSource interface {
	Snapshot() []calls.Call
}

// MemoryRepo aggregates over an in-memory calls ledger.
// The calendar day is taken in UTC from clock.
type MemoryRepo struct {
	src   CallSource
	clock func() time.Time
}

func NewMemoryRepo(src CallSource) *MemoryRepo {
	return &MemoryRepo{src: src, clock: time.Now}
}

func (r *MemoryRepo) isToday(t time.Time) bool {
	y1, m1, d1 := r.clock().UTC().Date()
	y2, m2, d2 := t.UTC().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (r *MemoryRepo) Totals(ctx context.Context) (TotalsRow, error) {
	var t TotalsRow
	t.Revenue = decimal.Zero
	agents := map[string]struct{}{}
	for _, c := range r.src.Snapshot() {
		t.TotalCalls++
		if c.Duration != nil {
			t.TotalDurationSeconds += float64(*c.Duration)
		}
		if c.Cost.Valid {
			t.Revenue = t.Revenue.Add(c.Cost.Decimal)
		}
		if r.isToday(c.StartTime) {
			agents[c.AgentID] = struct{}{}
		}
	}
	t.ActiveAgentsToday = int64(len(agents))
	return t, nil
}

func (r *MemoryRepo) Today(ctx context.Context) (DayRow, error) {
	var (
		d       DayRow
		withDur int64
		agents  = map[string]struct{}{}
	)
	for _, c := range r.src.Snapshot() {
		if !r.isToday(c.StartTime) {
			continue
		}
		d.Calls++
		if c.Status == calls.CallStatusCompleted {
			d.Completed++
		}
		if c.Duration != nil {
			withDur++
			d.TotalDurationSeconds += float64(*c.Duration)
		}
		agents[c.AgentID] = struct{}{}
	}
	// AVG ignores NULL durations, as SQL does.
	if withDur > 0 {
		d.AvgDurationSeconds = d.TotalDurationSeconds / float64(withDur)
	}
	d.DistinctAgents = int64(len(agents))
	return d, nil
}

func (r *MemoryRepo) Recent(ctx context.Context, limit int) ([]RecentRow, error) {
	all := r.src.Snapshot()
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartTime.After(all[j].StartTime) })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]RecentRow, 0, len(all))
	for _, c := range all {
		out = append(out, RecentRow{
			CallerNumber: c.CallerNumber,
			AgentID:      c.AgentID,
			Status:       string(c.Status),
			Duration:     c.Duration,
			StartTime:    c.StartTime,
		})
	}
	return out, nil
}
