package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-accounts/core"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// Store joins the account and user tables into one core.Store.
type Store struct {
	*AccountStore
	*UserStore
}

func NewStore(db *bun.DB) (*Store, error) {
	accounts, err := NewAccountStore(db)
	if err != nil {
		return nil, err
	}
	users, err := NewUserStore(db)
	if err != nil {
		return nil, err
	}
	return &Store{AccountStore: accounts, UserStore: users}, nil
}

type RepositoryFactory struct {
	db    *bun.DB
	store *Store
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.Store, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.store != nil {
		return f.store, nil
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	store, err := NewStore(f.db)
	if err != nil {
		return nil, err
	}
	f.store = store
	return store, nil
}

func (f *RepositoryFactory) Store() *Store {
	if f == nil {
		return nil
	}
	return f.store
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
