package memory

import (
	"strings"
	"sync"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// AccountDirectory is an in-memory domain.AccountRepository.
type AccountDirectory struct {
	mu       sync.RWMutex
	accounts []domain.Account
}

// NewAccountDirectory creates an empty AccountDirectory.
func NewAccountDirectory() *AccountDirectory {
	return &AccountDirectory{}
}

// Register replaces the account holding the same number, if any, and appends
// the new one.
func (d *AccountDirectory) Register(account domain.Account) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, existing := range d.accounts {
		if existing.Number == account.Number {
			d.accounts = append(d.accounts[:i], d.accounts[i+1:]...)
			break
		}
	}
	d.accounts = append(d.accounts, account)
}

func (d *AccountDirectory) FindByNumber(number string) (domain.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, a := range d.accounts {
		if a.Number == number {
			return a, true
		}
	}
	return domain.Account{}, false
}

func (d *AccountDirectory) FindByName(name string) (domain.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, a := range d.accounts {
		if a.Name == name {
			return a, true
		}
	}
	return domain.Account{}, false
}

// All returns a snapshot in insertion order.
func (d *AccountDirectory) All() []domain.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]domain.Account, len(d.accounts))
	copy(out, d.accounts)
	return out
}

func (d *AccountDirectory) FindByNumberPrefix(prefix string) []domain.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []domain.Account
	for _, a := range d.accounts {
		if strings.HasPrefix(a.Number, prefix) {
			out = append(out, a)
		}
	}
	return out
}

func (d *AccountDirectory) FindAmongNumbers(numbers []string) []domain.Account {
	set := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		set[n] = struct{}{}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []domain.Account
	for _, a := range d.accounts {
		if _, ok := set[a.Number]; ok {
			out = append(out, a)
		}
	}
	return out
}
