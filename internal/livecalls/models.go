package livecalls

import (
	"encoding/json"
	"time"
)

// LiveCall is a row of the live working set. Presence of the row is what makes a call live;
// there is no expiry.
type LiveCall struct {
	CallID          string          `json:"call_id"`
	AgentID         string          `json:"agent_id"`
	AgentName       string          `json:"agent_name"`
	CallerNumber    *string         `json:"caller_number"`
	Status          string          `json:"status"`
	StartTime       time.Time       `json:"start_time"`
	LastUpdated     time.Time       `json:"last_updated"`
	CurrentDuration int             `json:"current_duration"`
	SentimentScore  *float64        `json:"sentiment_score"`
	CurrentTopic    *string         `json:"current_topic"`
	Metadata        json.RawMessage `json:"metadata"`
}

const (
	StatusActive     = "active"
	UnknownAgentName = "Unknown Agent"
)

// UpsertInput is a poll tick from the agent process.
type UpsertInput struct {
	CallID          string          `json:"call_id" validate:"required"`
	AgentID         string          `json:"agent_id" validate:"required"`
	StartTime       string          `json:"start_time" validate:"required"`
	Status          string          `json:"status"`
	CallerNumber    string          `json:"caller_number"`
	CurrentDuration *int            `json:"current_duration"`
	SentimentScore  *float64        `json:"sentiment_score"`
	CurrentTopic    string          `json:"current_topic"`
	Metadata        json.RawMessage `json:"metadata"`
}

// Snapshot is a validated upsert handed to a repository.
// On update only Status, LastUpdated, CurrentDuration and the non-empty analytics fields apply.
type Snapshot struct {
	CallID          string
	AgentID         string
	CallerNumber    string
	Status          string
	StartTime       time.Time
	LastUpdated     time.Time
	CurrentDuration int
	SentimentScore  *float64
	CurrentTopic    string
	Metadata        json.RawMessage
}

func (s Snapshot) liveCall() LiveCall {
	lc := LiveCall{
		CallID:          s.CallID,
		AgentID:         s.AgentID,
		Status:          s.Status,
		StartTime:       s.StartTime,
		LastUpdated:     s.LastUpdated,
		CurrentDuration: s.CurrentDuration,
	}
	if s.SentimentScore != nil {
		v := *s.SentimentScore
		lc.SentimentScore = &v
	}
	if len(s.Metadata) > 0 {
		lc.Metadata = append(json.RawMessage(nil), s.Metadata...)
	}
	if s.CallerNumber != "" {
		v := s.CallerNumber
		lc.CallerNumber = &v
	}
	if s.CurrentTopic != "" {
		v := s.CurrentTopic
		lc.CurrentTopic = &v
	}
	return lc
}

// apply merges an update tick into an existing row.
func (s Snapshot) apply(lc *LiveCall) {
	lc.Status = s.Status
	lc.LastUpdated = s.LastUpdated
	lc.CurrentDuration = s.CurrentDuration
	if s.SentimentScore != nil {
		v := *s.SentimentScore
		lc.SentimentScore = &v
	}
	if s.CurrentTopic != "" {
		v := s.CurrentTopic
		lc.CurrentTopic = &v
	}
	if len(s.Metadata) > 0 {
		lc.Metadata = append(json.RawMessage(nil), s.Metadata...)
	}
}
