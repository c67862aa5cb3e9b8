package core

import "strings"

// LinkID appends id when it is not already present. Order of first insertion
// is kept. An empty id leaves ids untouched.
func LinkID(ids []string, id string) []string {
	id = strings.TrimSpace(id)
	if id == "" || containsID(ids, id) {
		return ids
	}
	return append(ids, id)
}

// UnlinkID removes every occurrence of id.
func UnlinkID(ids []string, id string) []string {
	id = strings.TrimSpace(id)
	if id == "" || len(ids) == 0 {
		return ids
	}
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

// PromoteID moves id to index 0, adding it when absent.
func PromoteID(ids []string, id string) []string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ids
	}
	rest := UnlinkID(ids, id)
	out := make([]string, 0, len(rest)+1)
	out = append(out, id)
	return append(out, rest...)
}

// DedupeIDs drops blanks and repeated ids, keeping first occurrences.
func DedupeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = LinkID(out, id)
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

// LinkAccount records account in the user's membership list.
func (u *User) LinkAccount(account *Account) {
	if u == nil || account == nil {
		return
	}
	u.Accounts = LinkID(u.Accounts, account.ID)
}

// LinkUser records user in the account's member list.
func (a *Account) LinkUser(user *User) {
	if a == nil || user == nil {
		return
	}
	a.Users = LinkID(a.Users, user.ID)
}

func (u *User) UnlinkAccount(account *Account) {
	if u == nil || account == nil {
		return
	}
	u.Accounts = UnlinkID(u.Accounts, account.ID)
}

func (a *Account) UnlinkUser(user *User) {
	if a == nil || user == nil {
		return
	}
	a.Users = UnlinkID(a.Users, user.ID)
}

// SetPrimary makes account the user's primary account.
func (u *User) SetPrimary(account *Account) {
	if u == nil || account == nil {
		return
	}
	u.Accounts = PromoteID(u.Accounts, account.ID)
}

// Link applies both directions of the membership.
func Link(user *User, account *Account) {
	user.LinkAccount(account)
	account.LinkUser(user)
}

func Unlink(user *User, account *Account) {
	user.UnlinkAccount(account)
	account.UnlinkUser(user)
}
