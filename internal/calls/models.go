package calls

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Call is one row of the append-only calls ledger.
//
// agent_id is a weak reference: it is joined for display, never enforced.
type Call struct {
	CallID       string              `json:"call_id" db:"call_id"`
	CallerNumber string              `json:"caller_number,omitempty" db:"caller_number"`
	AgentID      string              `json:"agent_id" db:"agent_id"`
	Status       CallStatus          `json:"status" db:"status"`
	Duration     *int                `json:"duration,omitempty" db:"duration"`
	StartTime    time.Time           `json:"start_time" db:"start_time"`
	EndTime      *time.Time          `json:"end_time,omitempty" db:"end_time"`
	Direction    string              `json:"call_direction,omitempty" db:"call_direction"`
	FromNumber   string              `json:"from_number,omitempty" db:"from_number"`
	ToNumber     string              `json:"to_number,omitempty" db:"to_number"`
	RecordingURL string              `json:"recording_url,omitempty" db:"recording_url"`
	Transcript   string              `json:"transcript,omitempty" db:"transcript"`
	Cost         decimal.NullDecimal `json:"cost" db:"cost"`
	Region       string              `json:"region,omitempty" db:"region"`
	Metadata     json.RawMessage     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
}

// CallStatus is open-ended; these are the values the dashboard understands.
type CallStatus string

const (
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusInProgress CallStatus = "in_progress"
)

// RecordInput is the body of a call submission.
type RecordInput struct {
	CallID        string           `json:"call_id" validate:"required"`
	AgentID       string           `json:"agent_id" validate:"required"`
	Status        string           `json:"status" validate:"required"`
	StartTime     string           `json:"start_time" validate:"required"`
	CallerNumber  string           `json:"caller_number"`
	Duration      *int             `json:"duration"`
	EndTime       string           `json:"end_time"`
	Direction     string           `json:"direction"`
	CallDirection string           `json:"call_direction"`
	FromNumber    string           `json:"from_number"`
	ToNumber      string           `json:"to_number"`
	RecordingURL  string           `json:"recording_url"`
	Transcript    string           `json:"transcript"`
	Cost          *decimal.Decimal `json:"cost"`
	Region        string           `json:"region"`
	Metadata      json.RawMessage  `json:"metadata"`
}

// HistoryEntry is one row of the paginated call history.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Caller    string          `json:"caller"`
	Agent     string          `json:"agent"`
	Duration  int             `json:"duration"`
	Cost      float64         `json:"cost"`
	Timestamp string          `json:"timestamp"`
	Status    string          `json:"status"`
	Direction *string         `json:"direction"`
}

// HistoryRow is the raw joined row behind a HistoryEntry.
type HistoryRow struct {
	CallID       string
	CallerNumber string
	AgentID      string
	AgentName    string
	Duration     *int
	Cost         decimal.NullDecimal
	StartTime    time.Time
	EndTime      *time.Time
	Status       string
	Direction    *string
}

func (r HistoryRow) Entry() HistoryEntry {
	e := HistoryEntry{
		ID:        r.CallID,
		Caller:    firstNonEmpty(r.CallerNumber, "Unknown"),
		Agent:     firstNonEmpty(r.AgentName, r.AgentID, "Unknown"),
		Timestamp: r.StartTime.UTC().Format(time.RFC3339Nano),
		Status:    r.Status,
		Direction: r.Direction,
	}
	if r.Duration != nil {
		e.Duration = *r.Duration
	}
	if r.Cost.Valid {
		e.Cost = r.Cost.Decimal.InexactFloat64()
	}
	return e
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
