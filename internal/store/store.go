package store

import (
	"context"
	"errors"

	"github.com/tumorvision/tumorvision/internal/domain/analysis"
	"github.com/tumorvision/tumorvision/internal/domain/user"
)

var ErrNoSession = errors.New("no stored session")

// Fixed key scheme shared by every implementation.
const (
	KeyCurrentUser     = "currentUser"
	KeyRegisteredUsers = "registeredUsers"
	historyKeyPrefix   = "history_"
)

func HistoryKey(userID string) string {
	return historyKeyPrefix + userID
}

// Store is the narrow repository in front of the key-value storage. Every
// component goes through it so the mechanism (redis, postgres kv table, or the
// in-memory fake) is swappable.
type Store interface {
	CurrentUser(ctx context.Context) (user.User, error)
	SaveCurrentUser(ctx context.Context, u user.User) error
	ClearCurrentUser(ctx context.Context) error

	RegisteredUsers(ctx context.Context) ([]user.RegisteredUser, error)
	AppendRegisteredUser(ctx context.Context, ru user.RegisteredUser) error

	// History returns a user's items newest first. AppendHistory prepends and
	// evicts past analysis.MaxHistoryItems.
	History(ctx context.Context, userID string) ([]analysis.HistoryItem, error)
	AppendHistory(ctx context.Context, userID string, item analysis.HistoryItem) error

	Ping(ctx context.Context) error
}
