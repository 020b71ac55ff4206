package cached

import (
	"context"
	"time"

	"github.com/tumorvision/tumorvision/internal/cache"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/store"
)

// Store fronts history reads with a short TTL cache. Appends invalidate the
// user's cached list, so a read right after a completed analysis always sees
// the new item. Every other operation passes straight through.
type Store struct {
	store.Store
	history *cache.Cache[[]analysis.HistoryItem]
}

func New(inner store.Store, ttl time.Duration) *Store {
	return &Store{
		Store:   inner,
		history: cache.New[[]analysis.HistoryItem](ttl),
	}
}

func (s *Store) History(ctx context.Context, userID string) ([]analysis.HistoryItem, error) {
	if items, ok := s.history.Get(userID); ok {
		return items, nil
	}

	items, err := s.Store.History(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.history.Set(userID, items)
	return items, nil
}

func (s *Store) AppendHistory(ctx context.Context, userID string, item analysis.HistoryItem) error {
	if err := s.Store.AppendHistory(ctx, userID, item); err != nil {
		return err
	}

	s.history.Delete(userID)
	return nil
}
