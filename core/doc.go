// Package core holds the account and user membership model and the service
// that keeps both sides of the relationship in step. Handlers for the
// role:account operations and the user/auth lifecycle extensions are
// installed on a dispatch.Registry through Service.Register. Stores and
// transports live in adapter packages; core depends only on their contracts.
package core
