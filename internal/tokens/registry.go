// Package tokens tracks the push-addressable device tokens registered per
// user. A user may hold several tokens (one per device); tokens are an
// unordered set with no duplicates.
package tokens

import (
	"context"
	"sort"
	"sync"
)

type Registry interface {
	// Register is idempotent: registering a held token is a no-op.
	Register(ctx context.Context, userID, token string) error
	// Unregister removes one token; the user's entry disappears once empty.
	Unregister(ctx context.Context, userID, token string) error
	// List returns the user's current tokens, empty if none registered.
	List(ctx context.Context, userID string) ([]string, error)
	// All returns the deduplicated token universe mapped to its holders.
	All(ctx context.Context) (map[string][]string, error)
}

type MemoryRegistry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{byUser: make(map[string]map[string]struct{})}
}

func (r *MemoryRegistry) Register(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
	}
	set[token] = struct{}{}
	return nil
}

func (r *MemoryRegistry) Unregister(_ context.Context, userID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	delete(set, token)
	if len(set) == 0 {
		delete(r.byUser, userID)
	}
	return nil
}

func (r *MemoryRegistry) List(_ context.Context, userID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.byUser[userID]
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

func (r *MemoryRegistry) All(_ context.Context) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]string)
	for userID, set := range r.byUser {
		for t := range set {
			out[t] = append(out[t], userID)
		}
	}
	return out, nil
}
