package localstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStore_BlockUnblockLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, found, err := store.Lookup(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Block(ctx, BlockEntry{Phone: "+15551234567", ContactName: "Alex"}))

	entry, found, err := store.Lookup(ctx, "+15551234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alex", entry.ContactName)
	assert.False(t, entry.BlockedAt.IsZero())

	// re-blocking is an upsert, not an error
	require.NoError(t, store.Block(ctx, BlockEntry{Phone: "+15551234567", ContactName: "Alex B"}))

	entry, found, err = store.Lookup(ctx, "+15551234567")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Alex B", entry.ContactName)

	require.NoError(t, store.Unblock(ctx, "+15551234567"))

	_, found, err = store.Lookup(ctx, "+15551234567")
	require.NoError(t, err)
	assert.False(t, found)

	// unblocking an absent number is a no-op
	require.NoError(t, store.Unblock(ctx, "+15551234567"))
}

func TestStore_Snapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot)

	require.NoError(t, store.Block(ctx, BlockEntry{Phone: "+15551234567", ContactName: "Alex"}))
	require.NoError(t, store.Block(ctx, BlockEntry{Phone: "+15559998888", ContactName: "Sam"}))

	snapshot, err = store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"+15551234567": "Alex",
		"+15559998888": "Sam",
	}, snapshot)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Block(ctx, BlockEntry{Phone: "+15551234567", ContactName: "Alex"}))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err := reopened.Lookup(ctx, "+15551234567")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestStore_AuditLogs(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendBlockedCall(ctx, BlockedCall{
		Phone: "+15551234567", ContactName: "Alex", OccurredAt: base.Add(time.Minute),
	}))
	require.NoError(t, store.AppendBlockedCall(ctx, BlockedCall{
		Phone: "+15551234567", ContactName: "Alex", OccurredAt: base,
	}))

	calls, err := store.ListBlockedCalls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, base, calls[0].OccurredAt, "oldest first")
	assert.NotEmpty(t, calls[0].ID)

	require.NoError(t, store.AppendBlockedMessage(ctx, BlockedMessage{
		Phone:       "+15551234567",
		ContactName: "Alex",
		Preview:     strings.Repeat("a", 80),
	}))

	messages, err := store.ListBlockedMessages(ctx)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Len(t, messages[0].Preview, 50, "preview is truncated")
}

func TestTruncatePreview(t *testing.T) {
	assert.Equal(t, "short", TruncatePreview("short"))
	assert.Equal(t, strings.Repeat("x", 50), TruncatePreview(strings.Repeat("x", 51)))

	// multi-byte runes are not split
	long := strings.Repeat("é", 60)
	assert.Equal(t, strings.Repeat("é", 50), TruncatePreview(long))
}
