package calls

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// AgentNames resolves agent display names for the in-memory history join.
type AgentNames interface {
	Names(ctx context.Context, agentIDs []string) (map[string]string, error)
}

// MemoryRepo is an in-memory calls ledger used for local runs and tests.
type MemoryRepo struct {
	mu     sync.Mutex
	calls  []Call
	agents AgentNames
}

func NewMemoryRepo(agents AgentNames) *MemoryRepo {
	return &MemoryRepo{agents: agents}
}

func (r *MemoryRepo) Insert(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return nil
}

func (r *MemoryRepo) Patch(ctx context.Context, callID string, sets []Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.calls {
		if r.calls[i].CallID != callID {
			continue
		}
		for _, a := range sets {
			applyAssignment(&r.calls[i], a)
		}
	}
	return nil
}

func (r *MemoryRepo) History(ctx context.Context, limit, offset int) ([]HistoryRow, error) {
	snapshot := r.Snapshot()
	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].StartTime.After(snapshot[j].StartTime)
	})

	if offset >= len(snapshot) {
		return []HistoryRow{}, nil
	}
	end := offset + limit
	if end > len(snapshot) {
		end = len(snapshot)
	}
	page := snapshot[offset:end]

	names := map[string]string{}
	if r.agents != nil && len(page) > 0 {
		ids := make([]string, 0, len(page))
		for _, c := range page {
			ids = append(ids, c.AgentID)
		}
		var err error
		if names, err = r.agents.Names(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]HistoryRow, 0, len(page))
	for _, c := range page {
		h := HistoryRow{
			CallID:       c.CallID,
			CallerNumber: c.CallerNumber,
			AgentID:      c.AgentID,
			AgentName:    names[c.AgentID],
			Duration:     c.Duration,
			Cost:         c.Cost,
			StartTime:    c.StartTime,
			EndTime:      c.EndTime,
			Status:       string(c.Status),
		}
		if c.Direction != "" {
			d := c.Direction
			h.Direction = &d
		}
		out = append(out, h)
	}
	return out, nil
}

// Snapshot returns a copy of every stored call in insertion order.
func (r *MemoryRepo) Snapshot() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func applyAssignment(c *Call, a Assignment) {
	str := func() string {
		s, _ := a.Value.(string)
		return s
	}
	switch a.Column {
	case "caller_number":
		c.CallerNumber = str()
	case "agent_id":
		c.AgentID = str()
	case "status":
		c.Status = CallStatus(str())
	case "call_direction":
		c.Direction = str()
	case "from_number":
		c.FromNumber = str()
	case "to_number":
		c.ToNumber = str()
	case "recording_url":
		c.RecordingURL = str()
	case "transcript":
		c.Transcript = str()
	case "region":
		c.Region = str()
	case "duration":
		c.Duration = nil
		if v, ok := a.Value.(int64); ok {
			d := int(v)
			c.Duration = &d
		}
	case "start_time":
		if v, ok := a.Value.(time.Time); ok {
			c.StartTime = v
		} else {
			c.StartTime = time.Time{}
		}
	case "end_time":
		c.EndTime = nil
		if v, ok := a.Value.(time.Time); ok {
			c.EndTime = &v
		}
	case "cost":
		c.Cost = decimal.NullDecimal{}
		if v, ok := a.Value.(decimal.Decimal); ok {
			c.Cost = decimal.NewNullDecimal(v)
		}
	case "metadata":
		c.Metadata = nil
		if v, ok := a.Value.(string); ok {
			c.Metadata = json.RawMessage(v)
		}
	}
}
