package memory

import (
	"context"
	"sync"
	"time"

	"crisis-quiz-service/internal/domain"
)

// UserStore keeps player records in memory.
type UserStore struct {
	mu    sync.RWMutex
	clock func() time.Time
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{clock: time.Now, users: make(map[string]domain.User)}
}

func (s *UserStore) Get(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

// Ensure returns the user with id, creating it with name when absent.
func (s *UserStore) Ensure(_ context.Context, id, name string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	u := domain.User{ID: id, Name: name, CreatedAt: s.clock()}
	s.users[id] = u
	return u, nil
}

func (s *UserStore) UpdateStats(_ context.Context, id string, mutate func(*domain.UserStats)) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	mutate(&u.Stats)
	s.users[id] = u
	return u, nil
}
