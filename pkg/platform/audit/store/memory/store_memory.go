package memory

import (
	"context"
	"sync"

	id "handover/pkg/domain"
	audit "handover/pkg/platform/audit"
	txcontext "handover/pkg/platform/tx"
)

// InMemoryStore keeps entries in append order. Duplicate log ids are ignored.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []audit.Entry
	seen    map[id.LogID]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{seen: make(map[id.LogID]struct{})}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.seen = make(map[id.LogID]struct{})
}

// Append records entry. Inside a journaled transaction the entry is removed
// again on rollback.
func (s *InMemoryStore) Append(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[entry.LogID]; ok {
		return nil
	}
	s.seen[entry.LogID] = struct{}{}
	s.entries = append(s.entries, entry)
	txcontext.OnRollback(ctx, func() { s.remove(entry.LogID) })
	return nil
}

func (s *InMemoryStore) remove(logID id.LogID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, logID)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].LogID == logID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *InMemoryStore) ListByRef(_ context.Context, refID string) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if e.RefID == refID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ListByTransfer(_ context.Context, transferID id.TransferID) ([]audit.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Entry
	for _, e := range s.entries {
		if e.TransferID == transferID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len returns the number of stored entries.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
