// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu        sync.RWMutex
	decisions []*Decision // append order
	closed    bool
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// RecordDecision stores a copy of d.
func (m *MockStore) RecordDecision(ctx context.Context, d *Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	c := *d
	m.decisions = append(m.decisions, &c)
	return nil
}

// GetDecision retrieves a decision by ID.
func (m *MockStore) GetDecision(ctx context.Context, id string) (*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.decisions {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// ListDecisions returns matching decisions, newest first.
func (m *MockStore) ListDecisions(ctx context.Context, f DecisionFilter) ([]*Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit := normalizeLimit(f.Limit)
	var out []*Decision
	for _, d := range slices.Backward(m.decisions) {
		if !matches(d, f) {
			continue
		}
		c := *d
		out = append(out, &c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func matches(d *Decision, f DecisionFilter) bool {
	if f.Router != "" && d.Router != f.Router {
		return false
	}
	if f.MessageID != "" && d.MessageID != f.MessageID {
		return false
	}
	if f.UnroutableOnly && !d.Unroutable {
		return false
	}
	if f.Since != nil && d.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// CountUnroutable counts unroutable decisions.
func (m *MockStore) CountUnroutable(ctx context.Context, router string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, d := range m.decisions {
		if d.Unroutable && (router == "" || d.Router == router) {
			n++
		}
	}
	return n, nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
