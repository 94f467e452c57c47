package audit

import (
	"encoding/json"
	"time"
)

// Event is an append-only record of an agent mutation.
//
// Events are never updated or deleted. Actor and IP capture are best-effort;
// callers must not fail the request when appending fails.
type Event struct {
	ID      string    `json:"id" db:"id"`
	Type    EventType `json:"type" db:"type"`
	AgentID string    `json:"agent_id" db:"agent_id"`

	// ActorUserID is the token subject, empty when auth is disabled.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	IPAddress   string `json:"ip_address,omitempty" db:"ip_address"`

	Message  string          `json:"message,omitempty" db:"message"`
	Metadata json.RawMessage `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeAgentCreated EventType = "agent_created"
	EventTypeAgentUpdated EventType = "agent_updated"
	EventTypeAgentDeleted EventType = "agent_deleted"
)

// Actor identifies who caused an event.
type Actor struct {
	UserID string
	Role   string
	IP     string
}
