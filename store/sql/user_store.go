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

type UserStore struct {
	db   *bun.DB
	repo repository.Repository[*userRecord]
}

func NewUserStore(db *bun.DB) (*UserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*userRecord](db, userHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid user repository wiring: %w", err)
		}
	}
	return &UserStore{db: db, repo: repo}, nil
}

func (s *UserStore) LoadUser(ctx context.Context, id string) (core.User, error) {
	if s == nil || s.repo == nil {
		return core.User{}, fmt.Errorf("sqlstore: user store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return core.User{}, core.NotFound(core.KindUser, id)
	}
	records, _, err := s.repo.List(ctx, repository.SelectBy("id", "=", id))
	if err != nil {
		return core.User{}, err
	}
	if len(records) == 0 {
		return core.User{}, core.NotFound(core.KindUser, id)
	}
	return records[0].toDomain(), nil
}

func (s *UserStore) SaveUser(ctx context.Context, user core.User) (core.User, error) {
	if s == nil || s.db == nil {
		return core.User{}, fmt.Errorf("sqlstore: user store is not configured")
	}
	record := newUserRecord(user)
	record.ID = strings.TrimSpace(record.ID)
	now := time.Now().UTC()

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := findUserTx(ctx, tx, record.ID)
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
		return core.User{}, err
	}
	return record.toDomain(), nil
}

func findUserTx(ctx context.Context, tx bun.Tx, id string) (*userRecord, error) {
	if id == "" {
		return nil, nil
	}
	record := &userRecord{}
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
