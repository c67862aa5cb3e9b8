package sqlstore

import (
	"time"

	"github.com/goliatone/go-accounts/core"
	"github.com/uptrace/bun"
)

type accountRecord struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID           string         `bun:"id,pk"`
	Name         string         `bun:"name,notnull"`
	Active       bool           `bun:"active,notnull"`
	Users        []string       `bun:"users,type:jsonb,notnull"`
	Fields       map[string]any `bun:"fields,type:jsonb,notnull"`
	Origin       string         `bun:"origin,notnull"`
	OriginUserID string         `bun:"origin_user_id,notnull"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type userRecord struct {
	bun.BaseModel `bun:"table:account_users,alias:au"`

	ID        string         `bun:"id,pk"`
	Name      string         `bun:"name,notnull"`
	Nick      string         `bun:"nick,notnull"`
	Accounts  []string       `bun:"accounts,type:jsonb,notnull"`
	Fields    map[string]any `bun:"fields,type:jsonb,notnull"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newAccountRecord(account core.Account) *accountRecord {
	return &accountRecord{
		ID:           account.ID,
		Name:         account.Name,
		Active:       account.Active,
		Users:        nonNilIDs(account.Users),
		Fields:       copyAnyMap(account.Fields),
		Origin:       account.Origin,
		OriginUserID: account.OriginUserID,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

func (r *accountRecord) toDomain() core.Account {
	if r == nil {
		return core.Account{}
	}
	return core.Account{
		ID:           r.ID,
		Name:         r.Name,
		Active:       r.Active,
		Users:        nonNilIDs(r.Users),
		Fields:       copyAnyMap(r.Fields),
		Origin:       r.Origin,
		OriginUserID: r.OriginUserID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// newUserRecord has no column for the account hint, so it is never stored.
func newUserRecord(user core.User) *userRecord {
	return &userRecord{
		ID:        user.ID,
		Name:      user.Name,
		Nick:      user.Nick,
		Accounts:  nonNilIDs(user.Accounts),
		Fields:    copyAnyMap(user.Fields),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (r *userRecord) toDomain() core.User {
	if r == nil {
		return core.User{}
	}
	return core.User{
		ID:        r.ID,
		Name:      r.Name,
		Nick:      r.Nick,
		Accounts:  nonNilIDs(r.Accounts),
		Fields:    copyAnyMap(r.Fields),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func nonNilIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	return append(out, ids...)
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
