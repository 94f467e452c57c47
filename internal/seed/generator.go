package seed

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"voice-dashboard/internal/calls"
)

var (
	sampleAgents   = []string{"agent-001", "agent-002", "agent-003", "agent-004", "agent-005"}
	sampleStatuses = []calls.CallStatus{
		calls.CallStatusCompleted, calls.CallStatusCompleted, calls.CallStatusCompleted, calls.CallStatusCompleted,
		calls.CallStatusFailed, calls.CallStatusBusy,
	}
	costPerMinute = decimal.RequireFromString("0.05")
)

// Generator produces sample rows. It is not safe for concurrent use.
type Generator struct {
	rnd   *rand.Rand
	clock func() time.Time
}

func NewGenerator(src rand.Source, clock func() time.Time) *Generator {
	if clock == nil {
		clock = time.Now
	}
	return &Generator{rnd: rand.New(src), clock: clock}
}

func (g *Generator) Batch() Batch {
	return Batch{
		Calls:    g.Calls(DefaultCalls),
		Usage:    g.Usage(DefaultUsage),
		Payments: g.Payments(DefaultPayments),
	}
}

func (g *Generator) Calls(n int) []calls.Call {
	now := g.clock().UTC()
	out := make([]calls.Call, 0, n)
	for i := 0; i < n; i++ {
		duration := 30 + g.rnd.IntN(570)
		status := sampleStatuses[g.rnd.IntN(len(sampleStatuses))]
		start := g.within(now, 30)
		end := start.Add(time.Duration(duration) * time.Second)

		cost := decimal.Zero
		if status == calls.CallStatusCompleted {
			cost = decimal.NewFromInt(int64(duration)).Div(decimal.NewFromInt(60)).Mul(costPerMinute).Round(6)
		}

		out = append(out, calls.Call{
			CallID:       fmt.Sprintf("call-%d-%d", now.UnixMilli(), i),
			CallerNumber: g.phone(),
			AgentID:      g.agent(),
			Status:       status,
			Duration:     &duration,
			StartTime:    start,
			EndTime:      &end,
			Cost:         decimal.NewNullDecimal(cost),
			CreatedAt:    now,
		})
	}
	return out
}

func (g *Generator) Usage(n int) []UsageRecord {
	now := g.clock().UTC()
	out := make([]UsageRecord, 0, n)
	for i := 0; i < n; i++ {
		minutes := 100 + g.rnd.IntN(500)
		out = append(out, UsageRecord{
			UsageID:      fmt.Sprintf("usage-%d-%d", now.UnixMilli(), i),
			AgentID:      g.agent(),
			Timestamp:    g.within(now, 30),
			CallCount:    10 + g.rnd.IntN(50),
			TotalMinutes: minutes,
			TotalCost:    decimal.NewFromInt(int64(minutes)).Mul(costPerMinute),
		})
	}
	return out
}

func (g *Generator) Payments(n int) []Payment {
	now := g.clock().UTC()
	out := make([]Payment, 0, n)
	for i := 0; i < n; i++ {
		status := "completed"
		if g.rnd.Float64() <= 0.1 {
			status = "pending"
		}
		method := "bank_transfer"
		if g.rnd.Float64() > 0.5 {
			method = "credit_card"
		}
		out = append(out, Payment{
			PaymentID:     fmt.Sprintf("pay-%d-%d", now.UnixMilli(), i),
			UserID:        fmt.Sprintf("user-%d", 1+g.rnd.IntN(10)),
			Amount:        decimal.NewFromInt(int64(50 + g.rnd.IntN(500))),
			Currency:      "USD",
			Status:        status,
			PaymentMethod: method,
			Timestamp:     g.within(now, 60),
		})
	}
	return out
}

func (g *Generator) agent() string { return sampleAgents[g.rnd.IntN(len(sampleAgents))] }

func (g *Generator) phone() string {
	return fmt.Sprintf("+1%d", 1_000_000_000+g.rnd.Int64N(9_000_000_000))
}

// within returns a uniform instant in the last days days.
func (g *Generator) within(now time.Time, days int) time.Time {
	span := time.Duration(days) * 24 * time.Hour
	return now.Add(-time.Duration(g.rnd.Int64N(int64(span)))).Truncate(time.Millisecond)
}
