package app

import (
	"context"
	"log/slog"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// AccountService registers endpoints and number groups.
type AccountService struct {
	accounts domain.AccountRepository
	groups   domain.GroupRepository
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts domain.AccountRepository, groups domain.GroupRepository, logger *slog.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		groups:   groups,
		logger:   logger.With("component", "account_service"),
	}
}

// RegisterNumber validates and stores an account. An account already holding
// the number is replaced.
func (s *AccountService) RegisterNumber(ctx context.Context, name, number string) (domain.Account, error) {
	s.logger.InfoContext(ctx, "Registering account", "name", name, "number", number)

	account, err := domain.NewAccount(name, number)
	if err != nil {
		registrationsCounter.WithLabelValues("account", "invalid").Inc()
		return domain.Account{}, err
	}

	if existing, found := s.accounts.FindByNumber(number); found {
		s.logger.InfoContext(ctx, "Replacing account registered with the same number", "previous_name", existing.Name, "number", number)
	}
	s.accounts.Register(account)
	registrationsCounter.WithLabelValues("account", "ok").Inc()
	return account, nil
}

// RegisterGroup validates the group and merges the patterns in front of the
// ones already registered under the same name.
func (s *AccountService) RegisterGroup(ctx context.Context, name string, patterns []string) (domain.Group, error) {
	s.logger.InfoContext(ctx, "Registering group", "group", name, "patterns", patterns)

	if err := domain.ValidateGroup(name, patterns); err != nil {
		registrationsCounter.WithLabelValues("group", "invalid").Inc()
		return domain.Group{}, err
	}

	merged := s.groups.Merge(name, patterns)
	registrationsCounter.WithLabelValues("group", "ok").Inc()
	s.logger.DebugContext(ctx, "Group patterns merged", "group", name, "patterns", merged)
	return domain.Group{Name: name, Patterns: merged}, nil
}

// Accounts lists registered accounts in registration order.
func (s *AccountService) Accounts() []domain.Account {
	return s.accounts.All()
}

// Group returns the stored patterns of a group.
func (s *AccountService) Group(name string) (domain.Group, bool) {
	patterns, ok := s.groups.FindPatterns(name)
	if !ok {
		return domain.Group{}, false
	}
	return domain.Group{Name: name, Patterns: patterns}, true
}
