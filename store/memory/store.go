// Package memory is an in-process core.Store. It keeps detached copies of
// every record, so callers never share slices or maps with the store.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-accounts/core"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]core.Account
	users    map[string]core.User
	now      func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...Option) *Store {
	store := &Store{
		accounts: map[string]core.Account{},
		users:    map[string]core.User{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

func (s *Store) LoadAccount(ctx context.Context, id string) (core.Account, error) {
	if err := ctx.Err(); err != nil {
		return core.Account{}, err
	}
	id = strings.TrimSpace(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return core.Account{}, core.NotFound(core.KindAccount, id)
	}
	return account.Clone(), nil
}

func (s *Store) SaveAccount(ctx context.Context, account core.Account) (core.Account, error) {
	if err := ctx.Err(); err != nil {
		return core.Account{}, err
	}
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = strings.TrimSpace(account.ID)
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if existing, ok := s.accounts[account.ID]; ok && !existing.CreatedAt.IsZero() {
		account.CreatedAt = existing.CreatedAt
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	s.accounts[account.ID] = account.Clone()
	return account.Clone(), nil
}

func (s *Store) LoadUser(ctx context.Context, id string) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	id = strings.TrimSpace(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return core.User{}, core.NotFound(core.KindUser, id)
	}
	return user.Clone(), nil
}

// SaveUser never persists the primary account hint.
func (s *Store) SaveUser(ctx context.Context, user core.User) (core.User, error) {
	if err := ctx.Err(); err != nil {
		return core.User{}, err
	}
	now := s.now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = strings.TrimSpace(user.ID)
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.StripHint()
	if existing, ok := s.users[user.ID]; ok && !existing.CreatedAt.IsZero() {
		user.CreatedAt = existing.CreatedAt
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = user.Clone()
	return user.Clone(), nil
}

// Len reports the number of stored accounts and users.
func (s *Store) Len() (accounts int, users int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), len(s.users)
}

var _ core.Store = (*Store)(nil)
