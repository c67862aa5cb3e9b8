package core

import (
	"fmt"
	"strings"
	"time"
)

// decodeAccount accepts Account, *Account, an id string or a field map.
// An id string yields an account carrying only its id.
func decodeAccount(value any) (Account, error) {
	switch typed := value.(type) {
	case Account:
		return typed, nil
	case *Account:
		if typed == nil {
			return Account{}, badInputError("core: account is nil", nil)
		}
		return *typed, nil
	case string:
		id := strings.TrimSpace(typed)
		if id == "" {
			return Account{}, validationError("account", "account id is required")
		}
		return Account{ID: id}, nil
	case map[string]any:
		return accountFromMap(typed), nil
	default:
		return Account{}, badInputError(fmt.Sprintf("core: unsupported account value %T", value), nil)
	}
}

func decodeUser(value any) (User, error) {
	switch typed := value.(type) {
	case User:
		return typed, nil
	case *User:
		if typed == nil {
			return User{}, badInputError("core: user is nil", nil)
		}
		return *typed, nil
	case string:
		id := strings.TrimSpace(typed)
		if id == "" {
			return User{}, validationError("user", "user id is required")
		}
		return User{ID: id}, nil
	case map[string]any:
		return userFromMap(typed), nil
	default:
		return User{}, badInputError(fmt.Sprintf("core: unsupported user value %T", value), nil)
	}
}

// entityID extracts the id of an account or user arg without loading it.
func entityID(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case Account:
		return strings.TrimSpace(typed.ID)
	case *Account:
		if typed != nil {
			return strings.TrimSpace(typed.ID)
		}
	case User:
		return strings.TrimSpace(typed.ID)
	case *User:
		if typed != nil {
			return strings.TrimSpace(typed.ID)
		}
	case map[string]any:
		return stringValue(typed[FieldID])
	}
	return ""
}

func accountFromMap(values map[string]any) Account {
	account := Account{
		ID:           stringValue(values[FieldID]),
		Name:         stringValue(values[FieldName]),
		Active:       true,
		Users:        DedupeIDs(stringSlice(values[FieldUsers])),
		Fields:       map[string]any{},
		Origin:       stringValue(values[FieldOrigin]),
		OriginUserID: stringValue(values[FieldOriginUserID]),
	}
	if active, ok := values[FieldActive].(bool); ok {
		account.Active = active
	}
	if createdAt, ok := values["created_at"].(time.Time); ok {
		account.CreatedAt = createdAt
	}
	if updatedAt, ok := values["updated_at"].(time.Time); ok {
		account.UpdatedAt = updatedAt
	}
	for key, value := range values {
		if IsReservedAccountField(key) || key == FieldName || key == "created_at" || key == "updated_at" {
			continue
		}
		account.Fields[key] = value
	}
	return account
}

func userFromMap(values map[string]any) User {
	user := User{
		ID:       stringValue(values[FieldID]),
		Name:     stringValue(values[FieldName]),
		Nick:     stringValue(values["nick"]),
		Accounts: DedupeIDs(stringSlice(values["accounts"])),
		Fields:   map[string]any{},
	}
	if hint, ok := values["account"]; ok && hint != nil {
		user.Account = decodeHint(hint)
	}
	for key, value := range values {
		switch key {
		case FieldID, FieldName, "nick", "accounts", "account", FieldRole, FieldCmd:
			continue
		}
		user.Fields[key] = value
	}
	return user
}

func decodeHint(value any) *AccountHint {
	switch typed := value.(type) {
	case string:
		if id := strings.TrimSpace(typed); id != "" {
			return &AccountHint{ID: id}
		}
	case AccountHint:
		return &typed
	case *AccountHint:
		return typed
	case Account:
		return &AccountHint{Inline: &typed}
	case *Account:
		if typed != nil {
			return &AccountHint{Inline: typed}
		}
	case map[string]any:
		account := accountFromMap(typed)
		return &AccountHint{Inline: &account}
	}
	return nil
}

func stringValue(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case fmt.Stringer:
		return strings.TrimSpace(typed.String())
	default:
		return ""
	}
}

func stringSlice(value any) []string {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if text := stringValue(item); text != "" {
				out = append(out, text)
			}
		}
		return out
	default:
		return nil
	}
}

func fieldsFromArgs(values map[string]any, skip ...string) map[string]any {
	out := map[string]any{}
	for key, value := range values {
		if IsReservedAccountField(key) {
			continue
		}
		skipped := false
		for _, candidate := range skip {
			if key == candidate {
				skipped = true
				break
			}
		}
		if !skipped {
			out[key] = value
		}
	}
	return out
}
