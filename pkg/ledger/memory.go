package ledger

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is a map-backed Store for hosts that do not need durability
// across process restarts. It still provides replay within a process, which
// covers retried node invocations inside one run.
type MemoryStore struct {
	mu sync.RWMutex

	// entries maps runID -> nodeID -> step index -> recorded value.
	entries map[string]map[string]map[int]json.RawMessage
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]map[string]map[int]json.RawMessage),
	}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, runID, nodeID string, index int) (json.RawMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes, ok := s.entries[runID]
	if !ok {
		return nil, false, nil
	}
	steps, ok := nodes[nodeID]
	if !ok {
		return nil, false, nil
	}
	value, ok := steps[index]
	return value, ok, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, runID, nodeID string, index int, value json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, ok := s.entries[runID]
	if !ok {
		nodes = make(map[string]map[int]json.RawMessage)
		s.entries[runID] = nodes
	}
	steps, ok := nodes[nodeID]
	if !ok {
		steps = make(map[int]json.RawMessage)
		nodes[nodeID] = steps
	}
	steps[index] = value
	return nil
}

// Discard implements Store.
func (s *MemoryStore) Discard(_ context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, runID)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
