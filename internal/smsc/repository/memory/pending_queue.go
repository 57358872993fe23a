package memory

import (
	"sync"
	"time"

	"github.com/aradsms/smsc/internal/smsc/domain"
)

// PendingQueue is an in-memory domain.PendingDeliveryQueue. Entries keep
// their enqueue order; the index enforces one entry per key.
type PendingQueue struct {
	mu      sync.Mutex
	entries []*domain.PendingDelivery
	index   map[domain.DeliveryKey]*domain.PendingDelivery
}

func NewPendingQueue() *PendingQueue {
	return &PendingQueue{index: make(map[domain.DeliveryKey]*domain.PendingDelivery)}
}

func (q *PendingQueue) EnqueueIfAbsent(key domain.DeliveryKey, now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.index[key]; exists {
		return false
	}
	entry := domain.NewPendingDelivery(key, now)
	q.entries = append(q.entries, entry)
	q.index[key] = entry
	return true
}

func (q *PendingQueue) Requeue(entry *domain.PendingDelivery) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := entry.Key()
	if _, exists := q.index[key]; exists {
		return false
	}
	q.entries = append(q.entries, entry)
	q.index[key] = entry
	return true
}

func (q *PendingQueue) Remove(key domain.DeliveryKey) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry, exists := q.index[key]
	if !exists {
		return false
	}
	delete(q.index, key)
	for i, e := range q.entries {
		if e == entry {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			break
		}
	}
	return true
}

func (q *PendingQueue) Contains(key domain.DeliveryKey) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, exists := q.index[key]
	return exists
}

// Snapshot returns copies of the queued entries in enqueue order.
func (q *PendingQueue) Snapshot() []*domain.PendingDelivery {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*domain.PendingDelivery, len(q.entries))
	for i, e := range q.entries {
		c := *e
		out[i] = &c
	}
	return out
}

func (q *PendingQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
