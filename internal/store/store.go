// ABOUTME: Store interface and data types for the routing journal
// ABOUTME: Records every routing decision for later inspection and auditing

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Decision is one journaled routing decision
type Decision struct {
	ID          string
	MessageID   string
	MessageType string
	Router      string // "connections" or "applications"
	ConnectorID string // empty when unroutable
	URI         string
	Unroutable  bool
	Explicit    bool // message carried its own destination
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// DecisionFilter narrows ListDecisions results. Zero values match everything.
type DecisionFilter struct {
	Router         string
	MessageID      string
	UnroutableOnly bool
	Since          *time.Time
	Limit          int // default 100, max 1000
}

// Store persists routing decisions
type Store interface {
	// RecordDecision appends a decision. ID and CreatedAt are filled in when empty.
	RecordDecision(ctx context.Context, d *Decision) error
	// GetDecision returns a single decision or ErrNotFound.
	GetDecision(ctx context.Context, id string) (*Decision, error)
	// ListDecisions returns decisions, newest first.
	ListDecisions(ctx context.Context, f DecisionFilter) ([]*Decision, error)
	// CountUnroutable counts unroutable decisions, optionally for one router.
	CountUnroutable(ctx context.Context, router string) (int, error)
	Close() error
}

// normalizeLimit applies default (100) and cap (1000) to a list limit.
func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}
