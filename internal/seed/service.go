package seed

import (
	"context"
	"crypto/subtle"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"voice-dashboard/internal/apperr"
)

var ErrUnauthorized = errors.New("seed: unauthorized")

// Service fills the store with sample data.
type Service struct {
	repo   Repository
	secret string

	mu  sync.Mutex
	gen *Generator
}

// NewService builds a seeder. An empty secret leaves seeding open.
func NewService(repo Repository, secret string) *Service {
	seed := uint64(time.Now().UnixNano())
	return &Service{
		repo:   repo,
		secret: secret,
		gen:    NewGenerator(rand.NewPCG(seed, seed>>1), time.Now),
	}
}

// Authorize checks the caller-supplied secret.
func (s *Service) Authorize(secret string) error {
	if s.secret == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

func (s *Service) Seed(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	b := s.gen.Batch()
	s.mu.Unlock()

	if err := s.repo.Write(ctx, b); err != nil {
		return Summary{}, apperr.FromStore(err, "")
	}
	return Summary{Calls: len(b.Calls), UsageHistory: len(b.Usage), Payments: len(b.Payments)}, nil
}
