package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// SubscriptionService makes registered endpoints reachable or unreachable.
type SubscriptionService struct {
	subscriptions domain.SubscriptionRepository
	accounts      domain.AccountRepository
	logger        *slog.Logger
}

func NewSubscriptionService(subscriptions domain.SubscriptionRepository, accounts domain.AccountRepository, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		accounts:      accounts,
		logger:        logger.With("component", "subscription_service"),
	}
}

// Subscribe resolves name to its registered number and marks it reachable.
func (s *SubscriptionService) Subscribe(ctx context.Context, name string) error {
	s.logger.InfoContext(ctx, "Subscribe name", "name", name)

	account, found := s.accounts.FindByName(name)
	if !found {
		return fmt.Errorf("%w: %s", domain.ErrNotRegistered, name)
	}
	s.subscriptions.Subscribe(account.Name, account.Number)
	return nil
}

// Unsubscribe removes the subscription of name, if any.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, name string) {
	s.logger.InfoContext(ctx, "Unsubscribe name", "name", name)
	s.subscriptions.Unsubscribe(name)
}

// IsSubscribed reports whether name currently has a subscription.
func (s *SubscriptionService) IsSubscribed(name string) bool {
	return s.subscriptions.IsSubscribedByName(name)
}
