package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*accountRecord]
}

func NewAccountStore(db *bun.DB) (*AccountStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*accountRecord](db, accountHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid account repository wiring: %w", err)
		}
	}
	return &AccountStore{db: db, repo: repo}, nil
}

func (s *AccountStore) LoadAccount(ctx context.Context, id string) (core.Account, error) {
	if s == nil || s.repo == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.Account{}, core.NotFound(core.KindAccount, id)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("id", "=", id))
	if err != nil {
		return core.Account{}, err
	}
	if len(records) == 0 {
		return core.Account{}, core.NotFound(core.KindAccount, id)
	}
	return records[0].toDomain(), nil
}

// SaveAccount inserts accounts without an id or with an unknown id and
// rewrites every column of known ones. created_at is kept from the stored row.
func (s *AccountStore) SaveAccount(ctx context.Context, account core.Account) (core.Account, error) {
	if s == nil || s.db == nil {
		return core.Account{}, fmt.Errorf("sqlstore: account store is not configured")
	}
	record := newAccountRecord(account)
	record.ID = strings.TrimSpace(record.ID)
	now := time.Now().UTC()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findAccountTx(ctx, tx, record.ID)
		if err != nil {
			return err
		}
		record.UpdatedAt = now
		if existing == nil {
			if record.ID == "" {
				record.ID = uuid.NewString()
			}
			if record.CreatedAt.IsZero() {
				record.CreatedAt = now
			}
			_, insertErr := tx.NewInsert().Model(record).Exec(ctx)
			return insertErr
		}
		record.CreatedAt = existing.CreatedAt
		_, updateErr := tx.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
	if err != nil {
		return core.Account{}, err
	}
	return record.toDomain(), nil
}

func findAccountTx(ctx context.Context, tx bun.Tx, id string) (*accountRecord, error) {
	if id == "" {
		return nil, nil
	}
	record := &accountRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
