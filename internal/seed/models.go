package seed

import (
	"time"

	"github.com/shopspring/decimal"

	"voice-dashboard/internal/calls"
)

// UsageRecord is a row of usage_history.
type UsageRecord struct {
	UsageID      string          `json:"usage_id"`
	AgentID      string          `json:"agent_id"`
	Timestamp    time.Time       `json:"timestamp"`
	CallCount    int             `json:"call_count"`
	TotalMinutes int             `json:"total_minutes"`
	TotalCost    decimal.Decimal `json:"total_cost"`
}

// Payment is a row of payments.
type Payment struct {
	PaymentID     string          `json:"payment_id"`
	UserID        string          `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Batch is one seeding run.
type Batch struct {
	Calls    []calls.Call
	Usage    []UsageRecord
	Payments []Payment
}

type Summary struct {
	Calls        int `json:"calls"`
	UsageHistory int `json:"usageHistory"`
	Payments     int `json:"payments"`
}

// Counts per run.
const (
	DefaultCalls    = 100
	DefaultUsage    = 50
	DefaultPayments = 20
)
