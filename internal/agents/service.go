package agents

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"voice-dashboard/internal/apperr"
)

// Repository is the persistence contract for agents.
type Repository interface {
	// Upsert inserts or updates in one store statement and reports whether a row was created.
	Upsert(ctx context.Context, in UpsertInput, now time.Time) (bool, error)
	List(ctx context.Context) ([]Agent, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, agentID string) (bool, error)
	// Names resolves display names for the given ids; unknown ids are absent from the map.
	Names(ctx context.Context, agentIDs []string) (map[string]string, error)
}

const (
	msgUpsertRequired  = "agent_id and agent_name are required"
	msgDeleteRequired  = "agent_id is required"
	msgUpsertTransient = "Cannot update recently added agent. Please wait a few minutes and try again."
	msgDeleteTransient = "Cannot delete recently added agent. Please wait a few minutes and try again."
	msgNotFound        = "agent not found"
)

type Service struct {
	repo     Repository
	clock    func() time.Time
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, validate: validator.New()}
}

// Upsert creates the agent or updates it in place.
// An omitted status resets the row to active on update.
func (s *Service) Upsert(ctx context.Context, in UpsertInput) (UpsertResult, error) {
	in = normalize(in)
	if err := s.validate.Struct(in); err != nil {
		return UpsertResult{}, apperr.FromValidator(err, msgUpsertRequired)
	}

	created, err := s.repo.Upsert(ctx, in, s.clock().UTC())
	if err != nil {
		return UpsertResult{}, apperr.FromStore(err, msgUpsertTransient)
	}
	return UpsertResult{AgentID: in.AgentID, Created: created}, nil
}

func (s *Service) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.FromStore(err, "")
	}
	out := make([]Summary, 0, len(rows))
	for _, a := range rows {
		out = append(out, a.Summary())
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, agentID string) error {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return apperr.Validation(msgDeleteRequired)
	}
	ok, err := s.repo.Delete(ctx, agentID)
	if err != nil {
		return apperr.FromStore(err, msgDeleteTransient)
	}
	if !ok {
		return apperr.NotFound(msgNotFound)
	}
	return nil
}

// Names implements the agent directory used by live-call listings.
func (s *Service) Names(ctx context.Context, agentIDs []string) (map[string]string, error) {
	if len(agentIDs) == 0 {
		return map[string]string{}, nil
	}
	return s.repo.Names(ctx, agentIDs)
}

// normalize trims identifiers and treats empty optionals as omitted.
func normalize(in UpsertInput) UpsertInput {
	in.AgentID = strings.TrimSpace(in.AgentID)
	in.AgentName = strings.TrimSpace(in.AgentName)

	status := StatusActive
	if in.Status != nil && strings.TrimSpace(*in.Status) != "" {
		status = strings.TrimSpace(*in.Status)
	}
	in.Status = &status

	in.VoiceModel = emptyToNil(in.VoiceModel)
	in.Language = emptyToNil(in.Language)

	if cfg := bytes.TrimSpace(in.Config); len(cfg) == 0 || bytes.Equal(cfg, []byte("null")) {
		in.Config = nil
	}
	return in
}

func emptyToNil(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}
