package memory

import "sync"

// GroupRegistry is an in-memory domain.GroupRepository.
type GroupRegistry struct {
	mu     sync.RWMutex
	groups map[string][]string
}

func NewGroupRegistry() *GroupRegistry {
	return &GroupRegistry{groups: make(map[string][]string)}
}

// Merge stores patterns ahead of the ones already registered for name and
// returns the merged list.
func (r *GroupRegistry) Merge(name string, patterns []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.groups[name]
	merged := make([]string, 0, len(patterns)+len(existing))
	merged = append(merged, patterns...)
	merged = append(merged, existing...)
	r.groups[name] = merged

	out := make([]string, len(merged))
	copy(out, merged)
	return out
}

// FindPatterns returns a copy of the group's patterns.
func (r *GroupRegistry) FindPatterns(name string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns, ok := r.groups[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(patterns))
	copy(out, patterns)
	return out, true
}

func (r *GroupRegistry) Delete(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.groups, name)
}
