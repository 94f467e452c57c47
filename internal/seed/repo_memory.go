package seed

import (
	"context"
	"sync"

	"voice-dashboard/internal/calls"
)

// CallWriter is the calls ledger the in-memory seeder appends to.
type CallWriter interface {
	Insert(ctx context.Context, c calls.Call) error
}

// MemoryRepo appends calls to an in-memory ledger and keeps usage and payments locally.
type MemoryRepo struct {
	calls CallWriter

	mu       sync.Mutex
	usage    []UsageRecord
	payments []Payment
}

func NewMemoryRepo(calls CallWriter) *MemoryRepo { return &MemoryRepo{calls: calls} }

func (r *MemoryRepo) Write(ctx context.Context, b Batch) error {
	for _, c := range b.Calls {
		if err := r.calls.Insert(ctx, c); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage = append(r.usage, b.Usage...)
	r.payments = append(r.payments, b.Payments...)
	return nil
}

func (r *MemoryRepo) Counts() (usage, payments int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.usage), len(r.payments)
}
