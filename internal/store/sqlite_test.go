// ABOUTME: Tests for SQLite journal implementation
// ABOUTME: Covers schema creation, decision persistence, filtering, and ordering

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "journal.db")

	s, err := NewSQLiteStore(dbPath, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:", nil)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.RecordDecision(context.Background(), &Decision{MessageID: "m", Router: "connections", URI: "u"}))
	list, err := s.ListDecisions(context.Background(), DecisionFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRecordAndGetDecision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d := &Decision{
		MessageID:   "msg-1",
		MessageType: "sms",
		Router:      "connections",
		ConnectorID: "smsc",
		URI:         "queue:connection-smsc",
		Explicit:    true,
		Elapsed:     42 * time.Microsecond,
	}
	require.NoError(t, s.RecordDecision(ctx, d))
	require.NotEmpty(t, d.ID)
	require.False(t, d.CreatedAt.IsZero())

	got, err := s.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", got.MessageID)
	assert.Equal(t, "sms", got.MessageType)
	assert.Equal(t, "smsc", got.ConnectorID)
	assert.Equal(t, "queue:connection-smsc", got.URI)
	assert.True(t, got.Explicit)
	assert.False(t, got.Unroutable)
	assert.Equal(t, 42*time.Microsecond, got.Elapsed)
	assert.WithinDuration(t, d.CreatedAt, got.CreatedAt, time.Microsecond)

	_, err = s.GetDecision(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDecisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	seed := []*Decision{
		{MessageID: "m1", Router: "connections", ConnectorID: "a", URI: "c-a", CreatedAt: base},
		{MessageID: "m2", Router: "connections", URI: "dead", Unroutable: true, CreatedAt: base.Add(time.Second)},
		{MessageID: "m3", Router: "applications", URI: "dead", Unroutable: true, CreatedAt: base.Add(2 * time.Second)},
		{MessageID: "m1", Router: "applications", ConnectorID: "b", URI: "a-b", CreatedAt: base.Add(1500 * time.Millisecond)},
	}
	for _, d := range seed {
		require.NoError(t, s.RecordDecision(ctx, d))
	}

	t.Run("newest first", func(t *testing.T) {
		list, err := s.ListDecisions(ctx, DecisionFilter{})
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, []string{"m3", "m1", "m2", "m1"}, messageIDs(list))
	})

	t.Run("by router", func(t *testing.T) {
		list, err := s.ListDecisions(ctx, DecisionFilter{Router: "connections"})
		require.NoError(t, err)
		assert.Equal(t, []string{"m2", "m1"}, messageIDs(list))
	})

	t.Run("by message", func(t *testing.T) {
		list, err := s.ListDecisions(ctx, DecisionFilter{MessageID: "m1"})
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("unroutable only", func(t *testing.T) {
		list, err := s.ListDecisions(ctx, DecisionFilter{UnroutableOnly: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"m3", "m2"}, messageIDs(list))
	})

	t.Run("since and limit", func(t *testing.T) {
		since := base.Add(time.Second)
		list, err := s.ListDecisions(ctx, DecisionFilter{Since: &since, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"m3", "m1"}, messageIDs(list))
	})

	t.Run("count unroutable", func(t *testing.T) {
		n, err := s.CountUnroutable(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.CountUnroutable(ctx, "applications")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func messageIDs(list []*Decision) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.MessageID
	}
	return out
}
