package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/observability"
	"github.com/tumorvision/tumorvision/internal/store"
)

// Store keeps the key-value contract on top of postgres: one kv table holding
// the same JSON documents the redis driver holds, keyed by the same scheme.
type Store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPool(dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func New(pool *pgxpool.Pool, prom *observability.Prom) *Store {
	return &Store{pool: pool, prom: prom}
}

// EnsureSchema creates the kv table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		)
	`)
	return err
}

func (s *Store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveStore(op, fn)
	}
	return fn()
}

func (s *Store) get(ctx context.Context, op, key string, out any) error {
	return s.observe(op, func() error {
		var raw []byte

		err := s.pool.QueryRow(ctx,
			`SELECT value FROM kv WHERE key = $1`, key,
		).Scan(&raw)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, out)
	})
}

func (s *Store) put(ctx context.Context, op, key string, v any) error {
	return s.observe(op, func() error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}

		_, err = s.pool.Exec(ctx, `
			INSERT INTO kv (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
		`, key, raw)
		return err
	})
}

func (s *Store) CurrentUser(ctx context.Context) (user.User, error) {
	var u user.User

	err := s.get(ctx, "store.current_user", store.KeyCurrentUser, &u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, store.ErrNoSession
		}
		return user.User{}, fmt.Errorf("kv get current user: %w", err)
	}
	return u, nil
}

func (s *Store) SaveCurrentUser(ctx context.Context, u user.User) error {
	return s.put(ctx, "store.save_current_user", store.KeyCurrentUser, u)
}

func (s *Store) ClearCurrentUser(ctx context.Context) error {
	return s.observe("store.clear_current_user", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1`, store.KeyCurrentUser)
		return err
	})
}

func (s *Store) RegisteredUsers(ctx context.Context) ([]user.RegisteredUser, error) {
	var out []user.RegisteredUser

	err := s.get(ctx, "store.registered_users", store.KeyRegisteredUsers, &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get registered users: %w", err)
	}
	return out, nil
}

func (s *Store) AppendRegisteredUser(ctx context.Context, ru user.RegisteredUser) error {
	existing, err := s.RegisteredUsers(ctx)
	if err != nil {
		return err
	}

	return s.put(ctx, "store.append_registered_user", store.KeyRegisteredUsers, append(existing, ru))
}

func (s *Store) History(ctx context.Context, userID string) ([]analysis.HistoryItem, error) {
	var out []analysis.HistoryItem

	err := s.get(ctx, "store.history", store.HistoryKey(userID), &out)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv get history: %w", err)
	}
	return out, nil
}

func (s *Store) AppendHistory(ctx context.Context, userID string, item analysis.HistoryItem) error {
	existing, err := s.History(ctx, userID)
	if err != nil {
		return err
	}

	items := append([]analysis.HistoryItem{item}, existing...)
	if len(items) > analysis.MaxHistoryItems {
		items = items[:analysis.MaxHistoryItems]
	}

	return s.put(ctx, "store.append_history", store.HistoryKey(userID), items)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
