package memory

import "sync"

// SubscriptionRegistry maps subscribed names to their numbers.
type SubscriptionRegistry struct {
	mu            sync.RWMutex
	subscriptions map[string]string
}

func NewSubscriptionRegistry() *SubscriptionRegistry {
	return &SubscriptionRegistry{subscriptions: make(map[string]string)}
}

func (r *SubscriptionRegistry) Subscribe(name, number string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[name] = number
}

// Unsubscribe is a no-op for names without a subscription.
func (r *SubscriptionRegistry) Unsubscribe(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subscriptions, name)
}

func (r *SubscriptionRegistry) IsSubscribedByName(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subscriptions[name]
	return ok
}

func (r *SubscriptionRegistry) IsSubscribedByNumber(number string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range r.subscriptions {
		if n == number {
			return true
		}
	}
	return false
}
