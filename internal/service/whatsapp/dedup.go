package whatsapp

import "sync"

// recentIDs remembers the last message ids seen so redelivered webhooks are
// answered once.
type recentIDs struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
	next  int
}

func newRecentIDs(size int) *recentIDs {
	return &recentIDs{
		seen:  make(map[string]struct{}, size),
		order: make([]string, size),
	}
}

// markSeen records id and reports whether it was already present.
func (r *recentIDs) markSeen(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[id]; ok {
		return true
	}
	if old := r.order[r.next]; old != "" {
		delete(r.seen, old)
	}
	r.order[r.next] = id
	r.next = (r.next + 1) % len(r.order)
	r.seen[id] = struct{}{}
	return false
}
