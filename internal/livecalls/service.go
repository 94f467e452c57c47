package livecalls

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"voice-dashboard/internal/apperr"
	"voice-dashboard/pkg/utils"
)

// Repository is the persistence contract for the live working set.
type Repository interface {
	// Upsert inserts or merges a tick atomically and reports whether a row was created.
	Upsert(ctx context.Context, s Snapshot) (bool, error)
	// End removes the row; a missing row is not an error.
	End(ctx context.Context, callID string) error
	// ListActive returns rows with status active, newest start first.
	// AgentName may be empty when the backend cannot join agents.
	ListActive(ctx context.Context) ([]LiveCall, error)
}

// AgentDirectory resolves agent display names.
type AgentDirectory interface {
	Names(ctx context.Context, agentIDs []string) (map[string]string, error)
}

const (
	msgUpsertRequired = "call_id, agent_id, and start_time are required"
	msgEndRequired    = "call_id is required"
)

type Service struct {
	repo     Repository
	agents   AgentDirectory
	clock    func() time.Time
	validate *validator.Validate
}

// NewService builds the tracker. agents may be nil when repo already joins names.
func NewService(repo Repository, agents AgentDirectory) *Service {
	return &Service{repo: repo, agents: agents, clock: time.Now, validate: validator.New()}
}

// Upsert records a poll tick and reports whether the call was newly tracked.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (bool, error) {
	in.CallID = strings.TrimSpace(in.CallID)
	in.AgentID = strings.TrimSpace(in.AgentID)
	in.StartTime = strings.TrimSpace(in.StartTime)
	if err := s.validate.Struct(in); err != nil {
		return false, apperr.FromValidator(err, msgUpsertRequired)
	}
	start, err := utils.ParseTimestamp(in.StartTime)
	if err != nil {
		return false, apperr.Validation("start_time: " + err.Error())
	}

	snap := Snapshot{
		CallID:         in.CallID,
		AgentID:        in.AgentID,
		CallerNumber:   in.CallerNumber,
		Status:         strings.TrimSpace(in.Status),
		StartTime:      start,
		LastUpdated:    s.clock().UTC(),
		SentimentScore: in.SentimentScore,
		CurrentTopic:   in.CurrentTopic,
	}
	if snap.Status == "" {
		snap.Status = StatusActive
	}
	if in.CurrentDuration != nil {
		snap.CurrentDuration = *in.CurrentDuration
	}
	if m := strings.TrimSpace(string(in.Metadata)); m != "" && m != "null" {
		snap.Metadata = in.Metadata
	}

	created, err := s.repo.Upsert(ctx, snap)
	if err != nil {
		return false, apperr.FromStore(err, "")
	}
	return created, nil
}

func (s *Service) End(ctx context.Context, callID string) error {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return apperr.Validation(msgEndRequired)
	}
	if err := s.repo.End(ctx, callID); err != nil {
		return apperr.FromStore(err, "")
	}
	return nil
}

// List returns active calls with agent names resolved.
func (s *Service) List(ctx context.Context) ([]LiveCall, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}

	if s.agents != nil {
		var missing []string
		seen := map[string]bool{}
		for _, r := range rows {
			if r.AgentName == "" && !seen[r.AgentID] {
				seen[r.AgentID] = true
				missing = append(missing, r.AgentID)
			}
		}
		if len(missing) > 0 {
			names, err := s.agents.Names(ctx, missing)
			if err != nil {
				return nil, apperr.FromStore(err, "")
			}
			for i := range rows {
				if rows[i].AgentName == "" {
					rows[i].AgentName = names[rows[i].AgentID]
				}
			}
		}
	}

	for i := range rows {
		if rows[i].AgentName == "" {
			rows[i].AgentName = UnknownAgentName
		}
	}
	if rows == nil {
		rows = []LiveCall{}
	}
	return rows, nil
}
