package reporting

import (
	"time"

	"github.com/shopspring/decimal"
)

// Totals is the all-time dashboard header.
type Totals struct {
	TotalCalls   int64   `json:"totalCalls"`
	ActiveAgents int64   `json:"activeAgents"`
	TotalMinutes int64   `json:"totalMinutes"`
	Revenue      float64 `json:"revenue"`
}

type RecentCall struct {
	CallerNumber string `json:"caller_number"`
	AgentID      string `json:"agent_id"`
	Status       string `json:"status"`
	Duration     int    `json:"duration"`
	StartTime    string `json:"start_time"`
}

type RecentActivity struct {
	Calls []RecentCall `json:"calls"`
}

// QuickStats covers the current store-side calendar day.
// SuccessRate and AgentUtilization are percentages in [0,100]; AvgDuration is minutes.
type QuickStats struct {
	SuccessRate      float64 `json:"successRate"`
	AvgDuration      float64 `json:"avgDuration"`
	AgentUtilization float64 `json:"agentUtilization"`
}

// TotalsRow is the raw aggregate behind Totals.
type TotalsRow struct {
	TotalCalls           int64
	ActiveAgentsToday    int64
	TotalDurationSeconds float64
	Revenue              decimal.Decimal
}

// DayRow is the raw aggregate for the current day.
type DayRow struct {
	Calls                int64
	Completed            int64
	AvgDurationSeconds   float64
	TotalDurationSeconds float64
	DistinctAgents       int64
}

type RecentRow struct {
	CallerNumber string
	AgentID      string
	Status       string
	Duration     *int
	StartTime    time.Time
}

const (
	DefaultRecentLimit = 10
	minutesPerDay      = 24 * 60
)
