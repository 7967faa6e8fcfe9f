package repository

import (
	"context"
	"sync"
	"time"

	"attendance_tracker/internal/model"
)

// ExpiredRetention is how long a challenge outlives its deadline before the
// sweep (or redis eviction) removes it. The window lets verification report
// "expired" instead of "not requested" shortly after the deadline.
const ExpiredRetention = 10 * time.Minute

// ChallengeStore holds live OTP challenges keyed by normalized mobile number.
// Get returns nil, nil when no challenge exists. Set replaces any existing
// entry for the same mobile atomically.
type ChallengeStore interface {
	Get(ctx context.Context, mobile string) (*model.PhoneChallenge, error)
	Set(ctx context.Context, challenge *model.PhoneChallenge) error
	Delete(ctx context.Context, mobile string) error
	Close() error
}

type memoryChallengeStore struct {
	mu         sync.RWMutex
	challenges map[string]model.PhoneChallenge
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryChallengeStore creates an in-process challenge store. When
// sweepInterval > 0 a janitor goroutine evicts entries past their retention
// window; Close stops it. Intended for development and tests.
func NewMemoryChallengeStore(sweepInterval time.Duration) ChallengeStore {
	s := &memoryChallengeStore{
		challenges: make(map[string]model.PhoneChallenge),
		stop:       make(chan struct{}),
	}
	if sweepInterval > 0 {
		go s.sweep(sweepInterval)
	}
	return s
}

func (s *memoryChallengeStore) Get(_ context.Context, mobile string) (*model.PhoneChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.challenges[mobile]
	if !ok {
		return nil, nil
	}
	// Copy out so callers never share the stored value.
	return &ch, nil
}

func (s *memoryChallengeStore) Set(_ context.Context, challenge *model.PhoneChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[challenge.Mobile] = *challenge
	return nil
}

func (s *memoryChallengeStore) Delete(_ context.Context, mobile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, mobile)
	return nil
}

func (s *memoryChallengeStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *memoryChallengeStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for mobile, ch := range s.challenges {
				if now.After(ch.ExpiresAt.Add(ExpiredRetention)) {
					delete(s.challenges, mobile)
				}
			}
			s.mu.Unlock()
		}
	}
}
