package core

import (
	"context"
	"time"
)

const (
	EventAccountCreated     = "account.created"
	EventAccountSuspended   = "account.suspended"
	EventAccountUpdated     = "account.updated"
	EventMembershipLinked   = "membership.linked"
	EventMembershipUnlinked = "membership.unlinked"
	EventMembershipPrimary  = "membership.primary"
)

type Event struct {
	Name       string
	AccountID  string
	UserID     string
	OccurredAt time.Time
	Payload    map[string]any
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, Event) error { return nil }

// publish never fails the calling operation; delivery errors are logged.
func (s *Service) publish(ctx context.Context, name string, accountID string, userID string, payload map[string]any) {
	if s == nil || s.eventPublisher == nil {
		return
	}
	event := Event{
		Name:       name,
		AccountID:  accountID,
		UserID:     userID,
		OccurredAt: s.now(),
		Payload:    copyAnyMap(payload),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logWithLevel(ctx, "warn", "event publish failed", map[string]any{
			"event":      name,
			"account_id": accountID,
			"user_id":    userID,
			"error":      err.Error(),
		})
	}
}
