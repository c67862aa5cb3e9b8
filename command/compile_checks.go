package command

import (
	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[CreateAccountMessage] = (*CreateAccountCommand)(nil)
	_ gocmd.Commander[SuspendMessage]       = (*SuspendCommand)(nil)
	_ gocmd.Commander[UpdateMessage]        = (*UpdateCommand)(nil)
	_ gocmd.Commander[SetPrimaryMessage]    = (*SetPrimaryCommand)(nil)
	_ gocmd.Commander[AddUserMessage]       = (*AddUserCommand)(nil)
	_ gocmd.Commander[RemoveUserMessage]    = (*RemoveUserCommand)(nil)
	_ gocmd.Commander[ReconcileMessage]     = (*ReconcileCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
