package livecalls

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory live working set used for local runs and tests.
type MemoryRepo struct {
	mu    sync.Mutex
	calls map[string]LiveCall
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{calls: make(map[string]LiveCall)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, s Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lc, ok := r.calls[s.CallID]; ok {
		s.apply(&lc)
		r.calls[s.CallID] = lc
		return false, nil
	}
	r.calls[s.CallID] = s.liveCall()
	return true, nil
}

func (r *MemoryRepo) End(ctx context.Context, callID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calls, callID)
	return nil
}

func (r *MemoryRepo) ListActive(ctx context.Context) ([]LiveCall, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LiveCall, 0, len(r.calls))
	for _, lc := range r.calls {
		if lc.Status == StatusActive {
			out = append(out, lc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].CallID > out[j].CallID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out, nil
}

// Len reports how many rows are tracked regardless of status.
func (r *MemoryRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
