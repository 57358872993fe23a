package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// Dispatcher delivers or queues a single message between two numbers.
type Dispatcher interface {
	Dispatch(ctx context.Context, source, destination, message string)
}

// MessageRouter expands a destination into accounts and hands one
// message per destination to the Dispatcher.
type MessageRouter struct {
	accounts      domain.AccountRepository
	groups        domain.GroupRepository
	subscriptions domain.SubscriptionRepository
	dispatcher    Dispatcher
	logger        *slog.Logger
}

// NewMessageRouter creates a new MessageRouter.
func NewMessageRouter(
	accounts domain.AccountRepository,
	groups domain.GroupRepository,
	subscriptions domain.SubscriptionRepository,
	dispatcher Dispatcher,
	logger *slog.Logger,
) *MessageRouter {
	return &MessageRouter{
		accounts:      accounts,
		groups:        groups,
		subscriptions: subscriptions,
		dispatcher:    dispatcher,
		logger:        logger.With("component", "router"),
	}
}

// Route sends message from sourceName to every account dest resolves to and
// returns the number of dispatches. The sender must be subscribed and
// registered; unknown destination names are skipped.
func (r *MessageRouter) Route(ctx context.Context, sourceName string, dest domain.Destination, message string) (int, error) {
	r.logger.InfoContext(ctx, "Routing message", "source", sourceName, "kind", dest.Kind.String(), "destination", dest.String(), "message", message)

	if !r.subscriptions.IsSubscribedByName(sourceName) {
		routesCounter.WithLabelValues(dest.Kind.String(), "not_subscribed").Inc()
		return 0, fmt.Errorf("%w: %s", domain.ErrNotSubscribed, sourceName)
	}
	source, found := r.accounts.FindByName(sourceName)
	if !found {
		routesCounter.WithLabelValues(dest.Kind.String(), "not_registered").Inc()
		return 0, fmt.Errorf("%w: %s", domain.ErrNotRegistered, sourceName)
	}

	destinations := r.resolve(ctx, dest)
	for _, d := range destinations {
		r.dispatcher.Dispatch(ctx, source.Number, d.Number, message)
	}

	routesCounter.WithLabelValues(dest.Kind.String(), "ok").Inc()
	r.logger.DebugContext(ctx, "Message routed", "source", sourceName, "dispatches", len(destinations))
	return len(destinations), nil
}

func (r *MessageRouter) resolve(ctx context.Context, dest domain.Destination) []domain.Account {
	switch dest.Kind {
	case domain.DestinationBroadcast:
		return r.accounts.All()
	case domain.DestinationGroup:
		return r.resolveGroup(ctx, dest.Group)
	default:
		return r.resolveNames(ctx, dest.Names)
	}
}

func (r *MessageRouter) resolveNames(ctx context.Context, names []string) []domain.Account {
	out := make([]domain.Account, 0, len(names))
	for _, name := range names {
		account, found := r.accounts.FindByName(name)
		if !found {
			r.logger.DebugContext(ctx, "Skipping unknown destination", "name", name)
			continue
		}
		out = append(out, account)
	}
	return out
}

// resolveGroup matches literal patterns by exact number and expands each
// wildcard pattern by prefix. The two result sets are concatenated without
// deduplication, so an account matched twice receives the message twice.
func (r *MessageRouter) resolveGroup(ctx context.Context, group string) []domain.Account {
	patterns, found := r.groups.FindPatterns(group)
	if !found {
		r.logger.InfoContext(ctx, "Group not found, nothing to send", "group", group)
		return nil
	}

	var literals, wildcards []string
	for _, p := range patterns {
		if domain.IsWildcard(p) {
			wildcards = append(wildcards, p)
		} else {
			literals = append(literals, p)
		}
	}

	out := r.accounts.FindAmongNumbers(literals)
	for _, w := range wildcards {
		out = append(out, r.accounts.FindByNumberPrefix(domain.PatternPrefix(w))...)
	}
	return out
}
