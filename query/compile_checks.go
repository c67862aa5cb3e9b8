package query

import (
	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetAccountMessage, core.Account]         = (*GetAccountQuery)(nil)
	_ gocmd.Querier[GetUserMessage, core.User]               = (*GetUserQuery)(nil)
	_ gocmd.Querier[CleanAccountMessage, core.PublicAccount] = (*CleanAccountQuery)(nil)
	_ gocmd.Querier[ResolveAccountMessage, core.Account]     = (*ResolveAccountQuery)(nil)
	_ gocmd.Querier[LoadAccountsMessage, []core.Account]     = (*LoadAccountsQuery)(nil)
	_ gocmd.Querier[LoadUsersMessage, []core.User]           = (*LoadUsersQuery)(nil)

	_ MembershipReader = (*core.Service)(nil)
)
