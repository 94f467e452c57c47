package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events. It is append-only.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.AgentID == "" || e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogAgentUpsert records an agent create or update.
func (s *Service) LogAgentUpsert(ctx context.Context, a Actor, agentID string, created bool) error {
	e := Event{
		Type:        EventTypeAgentUpdated,
		AgentID:     agentID,
		ActorUserID: a.UserID,
		ActorRole:   a.Role,
		IPAddress:   a.IP,
		Message:     "agent updated",
	}
	if created {
		e.Type = EventTypeAgentCreated
		e.Message = "agent created"
	}
	return s.Append(ctx, e)
}

func (s *Service) LogAgentDelete(ctx context.Context, a Actor, agentID string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAgentDeleted,
		AgentID:     agentID,
		ActorUserID: a.UserID,
		ActorRole:   a.Role,
		IPAddress:   a.IP,
		Message:     "agent deleted",
	})
}
