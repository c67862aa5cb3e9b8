package core

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-accounts/dispatch"
)

type memoryStore struct {
	mu       sync.Mutex
	accounts map[string]Account
	users    map[string]User
	seq      int

	loadAccountFn func(ctx context.Context, id string) (Account, error)
	saveAccountFn func(ctx context.Context, account Account) (Account, error)
	saveUserFn    func(ctx context.Context, user User) (User, error)

	accountSaves int
	userSaves    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: map[string]Account{},
		users:    map[string]User{},
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *memoryStore) LoadAccount(ctx context.Context, id string) (Account, error) {
	if m.loadAccountFn != nil {
		return m.loadAccountFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		return Account{}, NotFound(KindAccount, id)
	}
	return account.Clone(), nil
}

func (m *memoryStore) SaveAccount(ctx context.Context, account Account) (Account, error) {
	if m.saveAccountFn != nil {
		return m.saveAccountFn(ctx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == "" {
		account.ID = m.nextID("acc")
	}
	m.accountSaves++
	m.accounts[account.ID] = account.Clone()
	return account.Clone(), nil
}

func (m *memoryStore) LoadUser(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return User{}, NotFound(KindUser, id)
	}
	return user.Clone(), nil
}

func (m *memoryStore) SaveUser(ctx context.Context, user User) (User, error) {
	if m.saveUserFn != nil {
		return m.saveUserFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = m.nextID("usr")
	}
	user.Account = nil
	m.userSaves++
	m.users[user.ID] = user.Clone()
	return user.Clone(), nil
}

func (m *memoryStore) putAccount(account Account) Account {
	saved, _ := m.SaveAccount(context.Background(), account)
	return saved
}

func (m *memoryStore) putUser(user User) User {
	saved, _ := m.SaveUser(context.Background(), user)
	return saved
}

func (m *memoryStore) account(t *testing.T, id string) Account {
	t.Helper()
	account, err := m.LoadAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("load account %s: %v", id, err)
	}
	return account
}

func (m *memoryStore) user(t *testing.T, id string) User {
	t.Helper()
	user, err := m.LoadUser(context.Background(), id)
	if err != nil {
		t.Fatalf("load user %s: %v", id, err)
	}
	return user
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.Name)
	}
	return out
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return copyAnyMap(l.values), nil
}

func newTestService(t *testing.T, store Store, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(Config{}, append([]Option{WithStore(store)}, opts...)...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

// registerUserComponent installs stand-ins for the user and auth operations
// that the account extensions wrap.
func registerUserComponent(t *testing.T, registry *dispatch.Registry, store *memoryStore) {
	t.Helper()
	if err := registry.Add(PatternUserRegister, func(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
		name := args.String("name")
		if name == "" {
			return dispatch.Result{dispatch.KeyOK: false, "why": "name-required"}, nil
		}
		user := NewUser(name, args.String("nick"))
		saved, err := store.SaveUser(ctx, user)
		if err != nil {
			return nil, err
		}
		if hint, ok := args.Value("hint"); ok {
			saved.Account = decodeHint(hint)
		}
		return dispatch.Result{dispatch.KeyOK: true, "user": saved}, nil
	}); err != nil {
		t.Fatalf("register user:register: %v", err)
	}
	if err := registry.Add(PatternUserLogin, func(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
		user, err := store.LoadUser(ctx, args.String("user_id"))
		if err != nil {
			return dispatch.Result{dispatch.KeyOK: false, "why": "user-not-found"}, nil
		}
		return dispatch.Result{dispatch.KeyOK: true, "user": user, "login": "login_1"}, nil
	}); err != nil {
		t.Fatalf("register user:login: %v", err)
	}
	if err := registry.Add(PatternAuthInstance, func(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
		user, err := store.LoadUser(ctx, args.String("user_id"))
		if err != nil {
			return dispatch.Result{dispatch.KeyOK: true}, nil
		}
		return dispatch.Result{dispatch.KeyOK: true, "user": user}, nil
	}); err != nil {
		t.Fatalf("register auth:instance: %v", err)
	}
}
