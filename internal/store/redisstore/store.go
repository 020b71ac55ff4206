package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/observability"
	"github.com/tumorvision/tumorvision/internal/store"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store keeps the same key scheme the storage contract names: a plain string
// key for the session record and lists for registered users and per-user
// history.
type Store struct {
	rdb  *redis.Client
	prom *observability.Prom
}

func New(cfg Config, prom *observability.Prom) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	return &Store{rdb: rdb, prom: prom}
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveStore(op, fn)
	}
	return fn()
}

func (s *Store) CurrentUser(ctx context.Context) (user.User, error) {
	var u user.User
	op := "store.current_user"

	err := s.observe(op, func() error {
		raw, err := s.rdb.Get(ctx, store.KeyCurrentUser).Bytes()
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &u)
	})

	if err != nil {
		if errors.Is(err, redis.Nil) {
			return user.User{}, store.ErrNoSession
		}
		return user.User{}, fmt.Errorf("redis get current user: %w", err)
	}
	return u, nil
}

func (s *Store) SaveCurrentUser(ctx context.Context, u user.User) error {
	op := "store.save_current_user"

	return s.observe(op, func() error {
		raw, err := json.Marshal(u)
		if err != nil {
			return err
		}
		return s.rdb.Set(ctx, store.KeyCurrentUser, raw, 0).Err()
	})
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	op := "store.clear_current_user"

	return s.observe(op, func() error {
		return s.rdb.Del(ctx, store.KeyCurrentUser).Err()
	})
}

func (s *Store) RegisteredUsers(ctx context.Context) ([]user.RegisteredUser, error) {
	var out []user.RegisteredUser
	op := "store.registered_users"

	err := s.observe(op, func() error {
		raws, err := s.rdb.LRange(ctx, store.KeyRegisteredUsers, 0, -1).Result()
		if err != nil {
			return err
		}

		out = make([]user.RegisteredUser, 0, len(raws))
		for _, raw := range raws {
			var ru user.RegisteredUser
			if err := json.Unmarshal([]byte(raw), &ru); err != nil {
				return err
			}
			out = append(out, ru)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("redis list registered users: %w", err)
	}
	return out, nil
}

func (s *Store) AppendRegisteredUser(ctx context.Context, ru user.RegisteredUser) error {
	op := "store.append_registered_user"

	return s.observe(op, func() error {
		raw, err := json.Marshal(ru)
		if err != nil {
			return err
		}
		return s.rdb.RPush(ctx, store.KeyRegisteredUsers, raw).Err()
	})
}

func (s *Store) History(ctx context.Context, userID string) ([]analysis.HistoryItem, error) {
	var out []analysis.HistoryItem
	op := "store.history"

	err := s.observe(op, func() error {
		raws, err := s.rdb.LRange(ctx, store.HistoryKey(userID), 0, -1).Result()
		if err != nil {
			return err
		}

		out = make([]analysis.HistoryItem, 0, len(raws))
		for _, raw := range raws {
			var item analysis.HistoryItem
			if err := json.Unmarshal([]byte(raw), &item); err != nil {
				return err
			}
			out = append(out, item)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("redis list history: %w", err)
	}
	return out, nil
}

func (s *Store) AppendHistory(ctx context.Context, userID string, item analysis.HistoryItem) error {
	op := "store.append_history"

	return s.observe(op, func() error {
		raw, err := json.Marshal(item)
		if err != nil {
			return err
		}

		key := store.HistoryKey(userID)

		// LPUSH keeps newest first; LTRIM enforces the cap in the same round trip.
		pipe := s.rdb.TxPipeline()
		pipe.LPush(ctx, key, raw)
		pipe.LTrim(ctx, key, 0, int64(analysis.MaxHistoryItems-1))
		_, err = pipe.Exec(ctx)
		return err
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
