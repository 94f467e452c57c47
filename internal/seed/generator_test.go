package seed

import (
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-dashboard/internal/calls"
)

var fixedNow = time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)

func testGenerator(now time.Time) *Generator {
	return NewGenerator(rand.NewPCG(1, 2), func() time.Time { return now })
}

func TestGenerator_CallsRespectRanges(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	rows := testGenerator(now).Calls(DefaultCalls)
	require.Len(t, rows, DefaultCalls)

	agents := map[string]bool{}
	for _, a := range sampleAgents {
		agents[a] = true
	}
	for _, c := range rows {
		assert.True(t, agents[c.AgentID], "unexpected agent %s", c.AgentID)
		require.NotNil(t, c.Duration)
		assert.GreaterOrEqual(t, *c.Duration, 30)
		assert.Less(t, *c.Duration, 600)
		assert.False(t, c.StartTime.After(now))
		assert.True(t, c.StartTime.After(now.Add(-30*24*time.Hour).Add(-time.Millisecond)))
		require.NotNil(t, c.EndTime)
		assert.Equal(t, time.Duration(*c.Duration)*time.Second, c.EndTime.Sub(c.StartTime))
		assert.True(t, strings.HasPrefix(c.CallID, "call-"))
		assert.True(t, strings.HasPrefix(c.CallerNumber, "+1"))
		assert.Len(t, c.CallerNumber, 12)

		want := decimal.Zero
		if c.Status == calls.CallStatusCompleted {
			want = decimal.NewFromInt(int64(*c.Duration)).Div(decimal.NewFromInt(60)).Mul(costPerMinute).Round(6)
		}
		assert.True(t, c.Cost.Decimal.Equal(want), "cost %s for %s", c.Cost.Decimal, c.Status)
	}
}

func TestGenerator_UsageAndPayments(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC)
	g := testGenerator(now)

	for _, u := range g.Usage(DefaultUsage) {
		assert.GreaterOrEqual(t, u.CallCount, 10)
		assert.Less(t, u.CallCount, 60)
		assert.GreaterOrEqual(t, u.TotalMinutes, 100)
		assert.Less(t, u.TotalMinutes, 600)
		assert.True(t, u.TotalCost.Equal(decimal.NewFromInt(int64(u.TotalMinutes)).Mul(costPerMinute)))
	}

	payments := g.Payments(DefaultPayments)
	require.Len(t, payments, DefaultPayments)
	for _, p := range payments {
		assert.Equal(t, "USD", p.Currency)
		assert.Contains(t, []string{"completed", "pending"}, p.Status)
		assert.Contains(t, []string{"credit_card", "bank_transfer"}, p.PaymentMethod)
		assert.True(t, p.Amount.GreaterThanOrEqual(decimal.NewFromInt(50)))
		assert.True(t, p.Amount.LessThan(decimal.NewFromInt(550)))
		assert.True(t, p.Timestamp.After(now.Add(-60*24*time.Hour).Add(-time.Millisecond)))
	}
}
