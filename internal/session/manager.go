package session

import (
	"context"
	"errors"
	"sync"

	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/store"
)

// Manager owns the single active session. Session validity is exactly "a
// current-user record exists in storage"; there is no expiry and no integrity
// check on the restored record.
type Manager struct {
	store store.Store

	mu      sync.RWMutex
	current *user.User
}

func NewManager(st store.Store) *Manager {
	return &Manager{store: st}
}

// Restore loads a previously stored session, if any. Whatever record is found
// is trusted as-is.
func (m *Manager) Restore(ctx context.Context) error {
	u, err := m.store.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoSession) {
			return nil
		}
		return err
	}

	m.mu.Lock()
	m.current = &u
	m.mu.Unlock()
	return nil
}

// Establish makes u the active session and mirrors it into storage.
func (m *Manager) Establish(ctx context.Context, u user.User) error {
	if err := m.store.SaveCurrentUser(ctx, u); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = &u
	m.mu.Unlock()
	return nil
}

// Clear drops the session unconditionally, in memory and in storage.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()

	return m.store.ClearCurrentUser(ctx)
}

func (m *Manager) Current() (user.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return user.User{}, false
	}
	return *m.current, true
}

func (m *Manager) Authenticated() bool {
	_, ok := m.Current()
	return ok
}
