package core

import (
	"strings"
	"time"
)

const (
	KindAccount = "account"
	KindUser    = "user"

	OriginAuto = "auto"

	DefaultLoadLimit     = 3
	DefaultAccountSuffix = " Account"
)

// Field keys that identify an operation or belong to a typed attribute. They
// are never merged into Fields.
const (
	FieldRole         = "role"
	FieldCmd          = "cmd"
	FieldID           = "id"
	FieldName         = "name"
	FieldUsers        = "users"
	FieldActive       = "active"
	FieldOrigin       = "origin"
	FieldOriginUserID = "origin_user_id"
)

var reservedAccountFields = map[string]struct{}{
	FieldRole:         {},
	FieldCmd:          {},
	FieldID:           {},
	FieldUsers:        {},
	FieldActive:       {},
	FieldOrigin:       {},
	FieldOriginUserID: {},
}

func IsReservedAccountField(key string) bool {
	_, ok := reservedAccountFields[strings.TrimSpace(strings.ToLower(key))]
	return ok
}

type Account struct {
	ID           string
	Name         string
	Active       bool
	Users        []string
	Fields       map[string]any
	Origin       string
	OriginUserID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountHint is the transient user.account value: either an account id or
// an inline account record. It is consumed during resolution and never saved.
type AccountHint struct {
	ID     string
	Inline *Account
}

func (h *AccountHint) IsZero() bool {
	return h == nil || (strings.TrimSpace(h.ID) == "" && h.Inline == nil)
}

func (h *AccountHint) AccountID() string {
	if h == nil {
		return ""
	}
	if id := strings.TrimSpace(h.ID); id != "" {
		return id
	}
	if h.Inline != nil {
		return strings.TrimSpace(h.Inline.ID)
	}
	return ""
}

type User struct {
	ID       string
	Name     string
	Nick     string
	Accounts []string
	Account  *AccountHint
	Fields   map[string]any

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PrimaryAccountID returns the account at index 0 of the membership list.
func (u User) PrimaryAccountID() string {
	if len(u.Accounts) == 0 {
		return ""
	}
	return u.Accounts[0]
}

// PublicAccount is an account stripped of membership, status and provenance
// so it can leave the trust boundary.
type PublicAccount struct {
	ID        string
	Name      string
	Fields    map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership is the pair persisted by a dual-entity save.
type Membership struct {
	User    User
	Account Account
}

// NewAccount builds an unsaved account. Active defaults to true.
func NewAccount(name string, fields map[string]any) Account {
	account := Account{
		Name:   strings.TrimSpace(name),
		Active: true,
		Users:  []string{},
		Fields: map[string]any{},
	}
	account.MergeFields(fields)
	return account
}

func NewUser(name string, nick string) User {
	return User{
		Name:     strings.TrimSpace(name),
		Nick:     strings.TrimSpace(nick),
		Accounts: []string{},
		Fields:   map[string]any{},
	}
}

// MergeFields copies every non reserved key into the account. The name key
// updates Name and a boolean active key updates Active.
func (a *Account) MergeFields(fields map[string]any) []string {
	if a == nil || len(fields) == 0 {
		return nil
	}
	if a.Fields == nil {
		a.Fields = map[string]any{}
	}
	applied := []string{}
	for key, value := range fields {
		key = strings.TrimSpace(key)
		if key == FieldActive {
			if active, ok := value.(bool); ok {
				a.Active = active
				applied = append(applied, key)
			}
			continue
		}
		if key == "" || IsReservedAccountField(key) {
			continue
		}
		if key == FieldName {
			if name, ok := value.(string); ok {
				a.Name = strings.TrimSpace(name)
				applied = append(applied, key)
			}
			continue
		}
		a.Fields[key] = value
		applied = append(applied, key)
	}
	return applied
}

func (a Account) Clone() Account {
	a.Users = append([]string(nil), a.Users...)
	a.Fields = copyAnyMap(a.Fields)
	return a
}

func (a Account) HasUser(userID string) bool {
	return containsID(a.Users, userID)
}

// Clean drops the membership list, active flag and provenance fields.
func (a Account) Clean() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Name:      a.Name,
		Fields:    copyAnyMap(a.Fields),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func (u User) Clone() User {
	u.Accounts = append([]string(nil), u.Accounts...)
	u.Fields = copyAnyMap(u.Fields)
	if u.Account != nil {
		hint := *u.Account
		if hint.Inline != nil {
			inline := hint.Inline.Clone()
			hint.Inline = &inline
		}
		u.Account = &hint
	}
	return u
}

func (u User) HasAccount(accountID string) bool {
	return containsID(u.Accounts, accountID)
}

// StripHint clears the transient account hint.
func (u *User) StripHint() {
	if u != nil {
		u.Account = nil
	}
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
