package agents

import (
	"encoding/json"
	"time"
)

// Agent is a voice agent registered in the fact store.
// Rows are created on first upsert and mutated in place afterwards.
type Agent struct {
	AgentID            string          `json:"agent_id" db:"agent_id"`
	AgentName          string          `json:"agent_name" db:"agent_name"`
	Status             string          `json:"status" db:"status"`
	VoiceModel         string          `json:"voice_model,omitempty" db:"voice_model"`
	Language           string          `json:"language" db:"language"`
	MaxConcurrentCalls int             `json:"max_concurrent_calls" db:"max_concurrent_calls"`
	TotalCalls         int64           `json:"total_calls" db:"total_calls"`
	TotalMinutes       float64         `json:"total_minutes" db:"total_minutes"`
	AverageRating      *float64        `json:"average_rating" db:"average_rating"`
	Config             json.RawMessage `json:"config,omitempty" db:"config"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	DefaultLanguage           = "en-US"
	DefaultMaxConcurrentCalls = 1
)

// UpsertInput is the body of an agent upsert. Nil optional fields are omitted.
type UpsertInput struct {
	AgentID            string          `json:"agent_id" validate:"required"`
	AgentName          string          `json:"agent_name" validate:"required"`
	Status             *string         `json:"status,omitempty"`
	VoiceModel         *string         `json:"voice_model,omitempty"`
	Language           *string         `json:"language,omitempty"`
	MaxConcurrentCalls *int            `json:"max_concurrent_calls,omitempty"`
	Config             json.RawMessage `json:"config,omitempty"`
}

// UpsertResult reports which branch an upsert took.
type UpsertResult struct {
	AgentID string
	Created bool
}

// Summary is the dashboard projection returned by the agent listing.
type Summary struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Provider           string          `json:"provider"`
	Status             string          `json:"status"`
	Language           string          `json:"language"`
	MaxConcurrentCalls int             `json:"maxConcurrentCalls"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
	TotalCalls         int64           `json:"totalCalls"`
	TotalMinutes       float64         `json:"totalMinutes"`
	AverageRating      *float64        `json:"averageRating"`
	Config             json.RawMessage `json:"config"`
}

func (a Agent) Summary() Summary {
	provider := a.VoiceModel
	if provider == "" {
		provider = "Unknown"
	}
	status := a.Status
	if status == "" {
		status = StatusActive
	}
	cfg := a.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage("null")
	}
	return Summary{
		ID:                 a.AgentID,
		Name:               a.AgentName,
		Provider:           provider,
		Status:             status,
		Language:           a.Language,
		MaxConcurrentCalls: a.MaxConcurrentCalls,
		CreatedAt:          formatTime(a.CreatedAt),
		UpdatedAt:          formatTime(a.UpdatedAt),
		TotalCalls:         a.TotalCalls,
		TotalMinutes:       a.TotalMinutes,
		AverageRating:      a.AverageRating,
		Config:             cfg,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
