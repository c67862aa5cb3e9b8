package sqlstore

import "github.com/goliatone/go-accounts/core"

var (
	_ core.AccountStore           = (*AccountStore)(nil)
	_ core.UserStore              = (*UserStore)(nil)
	_ core.Store                  = (*Store)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
