package domain

import "time"

// AccountRepository holds registered accounts in insertion order.
type AccountRepository interface {
	// Register removes any account holding the same number, then appends.
	Register(account Account)
	FindByNumber(number string) (Account, bool)
	FindByName(name string) (Account, bool)
	All() []Account
	FindByNumberPrefix(prefix string) []Account
	FindAmongNumbers(numbers []string) []Account
}

// GroupRepository holds number patterns per group name.
type GroupRepository interface {
	// Merge prepends patterns to those already stored for the group.
	Merge(name string, patterns []string) []string
	FindPatterns(name string) ([]string, bool)
	Delete(name string)
}

// SubscriptionRepository tracks which names are currently reachable.
type SubscriptionRepository interface {
	Subscribe(name, number string)
	Unsubscribe(name string)
	IsSubscribedByName(name string) bool
	IsSubscribedByNumber(number string) bool
}

// PendingDeliveryQueue stores undelivered messages, at most one per key.
type PendingDeliveryQueue interface {
	// EnqueueIfAbsent adds an entry for key unless one exists. It reports
	// whether an entry was added.
	EnqueueIfAbsent(key DeliveryKey, now time.Time) bool
	// Requeue puts a previously claimed entry back, keeping its timestamp.
	Requeue(entry *PendingDelivery) bool
	// Remove deletes the entry for key, reporting whether one existed.
	Remove(key DeliveryKey) bool
	Contains(key DeliveryKey) bool
	Snapshot() []*PendingDelivery
	Len() int
}
