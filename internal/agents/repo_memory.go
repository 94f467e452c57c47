package agents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository used for local runs and tests.
type MemoryRepo struct {
	mu     sync.Mutex
	agents map[string]Agent
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{agents: make(map[string]Agent)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, in UpsertInput, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := StatusActive
	if in.Status != nil {
		status = *in.Status
	}

	a, ok := r.agents[in.AgentID]
	if ok {
		a.AgentName = in.AgentName
		a.Status = status
		if in.VoiceModel != nil {
			a.VoiceModel = *in.VoiceModel
		}
		if in.Language != nil {
			a.Language = *in.Language
		}
		if in.MaxConcurrentCalls != nil {
			a.MaxConcurrentCalls = *in.MaxConcurrentCalls
		}
		if len(in.Config) > 0 {
			a.Config = append([]byte(nil), in.Config...)
		}
		a.UpdatedAt = now
		r.agents[in.AgentID] = a
		return false, nil
	}

	a = Agent{
		AgentID:            in.AgentID,
		AgentName:          in.AgentName,
		Status:             status,
		Language:           DefaultLanguage,
		MaxConcurrentCalls: DefaultMaxConcurrentCalls,
		Config:             append([]byte(nil), in.Config...),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.VoiceModel != nil {
		a.VoiceModel = *in.VoiceModel
	}
	if in.Language != nil {
		a.Language = *in.Language
	}
	if in.MaxConcurrentCalls != nil && *in.MaxConcurrentCalls != 0 {
		a.MaxConcurrentCalls = *in.MaxConcurrentCalls
	}
	r.agents[in.AgentID] = a
	return true, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AgentID < out[j].AgentID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, agentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agentID]; !ok {
		return false, nil
	}
	delete(r.agents, agentID)
	return true, nil
}

func (r *MemoryRepo) Names(ctx context.Context, agentIDs []string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(agentIDs))
	for _, id := range agentIDs {
		if a, ok := r.agents[id]; ok {
			out[id] = a.AgentName
		}
	}
	return out, nil
}

// Get returns a copy of the stored row.
func (r *MemoryRepo) Get(agentID string) (Agent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[agentID]
	return a, ok
}
