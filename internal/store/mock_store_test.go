// ABOUTME: Tests for the in-memory mock store
// ABOUTME: Ensures it filters and orders like the SQLite store

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Store = (*MockStore)(nil)
var _ Store = (*SQLiteStore)(nil)

func TestMockStore(t *testing.T) {
	m := NewMockStore()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, m.RecordDecision(ctx, &Decision{MessageID: "m1", Router: "connections", CreatedAt: base}))
	require.NoError(t, m.RecordDecision(ctx, &Decision{MessageID: "m2", Router: "connections", Unroutable: true, CreatedAt: base.Add(time.Second)}))
	d := &Decision{MessageID: "m3", Router: "applications", Unroutable: true}
	require.NoError(t, m.RecordDecision(ctx, d))

	got, err := m.GetDecision(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "m3", got.MessageID)

	_, err = m.GetDecision(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := m.ListDecisions(ctx, DecisionFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"m3", "m2", "m1"}, messageIDs(list))

	list, err = m.ListDecisions(ctx, DecisionFilter{Router: "connections", UnroutableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, messageIDs(list))

	n, err := m.CountUnroutable(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.NoError(t, m.Close())
}
