package memory

import (
	"context"
	"sync"

	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/store"
)

// Store is the in-memory implementation, used in tests and as the default
// driver when no backing service is configured.
type Store struct {
	mu         sync.RWMutex
	current    *user.User
	registered []user.RegisteredUser
	history    map[string][]analysis.HistoryItem
}

func New() *Store {
	return &Store{
		history: make(map[string][]analysis.HistoryItem),
	}
}

func (s *Store) CurrentUser(ctx context.Context) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return user.User{}, store.ErrNoSession
	}
	return *s.current, nil
}

func (s *Store) SaveCurrentUser(ctx context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &u
	return nil
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	return nil
}

func (s *Store) RegisteredUsers(ctx context.Context) ([]user.RegisteredUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]user.RegisteredUser, len(s.registered))
	copy(out, s.registered)
	return out, nil
}

func (s *Store) AppendRegisteredUser(ctx context.Context, ru user.RegisteredUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registered = append(s.registered, ru)
	return nil
}

func (s *Store) History(ctx context.Context, userID string) ([]analysis.HistoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.history[store.HistoryKey(userID)]
	out := make([]analysis.HistoryItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) AppendHistory(ctx context.Context, userID string, item analysis.HistoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.HistoryKey(userID)

	items := append([]analysis.HistoryItem{item}, s.history[key]...)
	if len(items) > analysis.MaxHistoryItems {
		items = items[:analysis.MaxHistoryItems]
	}

	s.history[key] = items
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }
