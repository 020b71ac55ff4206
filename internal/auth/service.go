package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tumorvision/tumorvision/internal/clockx"
	"github.com/tumorvision/tumorvision/internal/domain/user"
	"github.com/tumorvision/tumorvision/internal/session"
	"github.com/tumorvision/tumorvision/internal/store"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrNameTooShort       = errors.New("name too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

// Simulated resolution latencies. Both are applied before the outcome is
// known, success or failure alike.
const (
	SignInDelay = 1500 * time.Millisecond
	SignUpDelay = 2000 * time.Millisecond
)

// The two built-in demo accounts. They resolve before the registered-user
// list and cannot be shadowed by signups.
var demoAccounts = []user.RegisteredUser{
	{
		User: user.User{
			ID:       "demo-patient",
			Name:     "Demo Patient",
			Email:    "demo@example.com",
			Role:     user.RolePatient,
			JoinDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		Password: "demo123",
	},
	{
		User: user.User{
			ID:       "demo-doctor",
			Name:     "Dr. Admin",
			Email:    "admin@tumor-vision.com",
			Role:     user.RoleDoctor,
			JoinDate: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		Password: "admin123",
	},
}

// Service resolves sign-in and sign-up against the demo accounts plus the
// stored registered-user list. It never talks to a network; the only delay is
// the simulated latency, routed through the clock so tests advance it
// virtually.
type Service struct {
	store    store.Store
	sessions *session.Manager
	clock    clockx.Clock
}

func NewService(st store.Store, sessions *session.Manager, clock clockx.Clock) *Service {
	return &Service{
		store:    st,
		sessions: sessions,
		clock:    clock,
	}
}

// SignIn resolves credentials through three tiers, first match wins: demo
// accounts, then a linear scan of the registered list for an exact
// email+password match, then failure.
func (s *Service) SignIn(ctx context.Context, email, password string) (user.User, error) {
	if !validEmail(email) {
		return user.User{}, ErrInvalidEmail
	}
	if !validPassword(password) {
		return user.User{}, ErrPasswordTooShort
	}

	if err := s.clock.Sleep(ctx, SignInDelay); err != nil {
		return user.User{}, err
	}

	for _, acc := range demoAccounts {
		if acc.Email == email && acc.Password == password {
			return s.establish(ctx, acc.User)
		}
	}

	registered, err := s.store.RegisteredUsers(ctx)
	if err != nil {
		return user.User{}, err
	}

	for _, ru := range registered {
		if ru.Email == email && ru.Password == password {
			return s.establish(ctx, ru.User)
		}
	}

	return user.User{}, ErrInvalidCredentials
}

// SignUp appends a new registered record and signs the new user in. The
// duplicate check is a case-sensitive exact email match, demo accounts
// included.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (user.User, error) {
	if !validName(name) {
		return user.User{}, ErrNameTooShort
	}
	if !validEmail(email) {
		return user.User{}, ErrInvalidEmail
	}
	if !validPassword(password) {
		return user.User{}, ErrPasswordTooShort
	}

	if err := s.clock.Sleep(ctx, SignUpDelay); err != nil {
		return user.User{}, err
	}

	for _, acc := range demoAccounts {
		if acc.Email == email {
			return user.User{}, ErrEmailTaken
		}
	}

	registered, err := s.store.RegisteredUsers(ctx)
	if err != nil {
		return user.User{}, err
	}

	for _, ru := range registered {
		if ru.Email == email {
			return user.User{}, ErrEmailTaken
		}
	}

	ru := user.RegisteredUser{
		User: user.User{
			ID:       uuid.NewString(),
			Name:     strings.TrimSpace(name),
			Email:    email,
			Role:     user.RolePatient,
			JoinDate: s.clock.Now(),
		},
		Password: password,
	}

	if err := s.store.AppendRegisteredUser(ctx, ru); err != nil {
		return user.User{}, err
	}

	return s.establish(ctx, ru.User)
}

func (s *Service) establish(ctx context.Context, u user.User) (user.User, error) {
	if err := s.sessions.Establish(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
