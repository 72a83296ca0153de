package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	m       sync.Mutex
	entries []Entry
	loadErr error
	saveErr error
}

func (s *memStore) Load(context.Context) ([]Entry, error) {
	s.m.Lock()
	defer s.m.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *memStore) Save(_ context.Context, entries []Entry) error {
	s.m.Lock()
	defer s.m.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
	return nil
}

func TestQueue_AppendAndPending(t *testing.T) {
	q := NewQueue(&memStore{})
	ctx := context.Background()

	entry, err := q.Append(ctx, map[string]string{"fullName": "יהודה כהן"})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, StatusPending, entry.Status)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Nil(t, entry.SentAt)

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entry.ID, pending[0].ID)
}

func TestQueue_CapacityEvictsOldestFirst(t *testing.T) {
	q := NewQueue(&memStore{})
	ctx := context.Background()

	var first Entry
	for i := 0; i < Capacity; i++ {
		e, err := q.Append(ctx, map[string]string{"n": fmt.Sprint(i)})
		require.NoError(t, err)
		if i == 0 {
			first = e
		}
	}

	overflow, err := q.Append(ctx, map[string]string{"n": "overflow"})
	require.NoError(t, err)

	entries, err := q.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, Capacity)

	// Oldest gone, newest at the end.
	for _, e := range entries {
		assert.NotEqual(t, first.ID, e.ID)
	}
	assert.Equal(t, overflow.ID, entries[Capacity-1].ID)
}

func TestQueue_MarkSent(t *testing.T) {
	q := NewQueue(&memStore{})
	ctx := context.Background()

	entry, err := q.Append(ctx, map[string]string{"fullName": "יהודה כהן"})
	require.NoError(t, err)

	require.NoError(t, q.MarkSent(ctx, entry.ID))

	pending, err := q.Pending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	entries, err := q.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, StatusSent, entries[0].Status)
	require.NotNil(t, entries[0].SentAt)

	// Sent entries stay in the queue until evicted by capacity.
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestQueue_MarkSentTwice(t *testing.T) {
	q := NewQueue(&memStore{})
	ctx := context.Background()

	entry, err := q.Append(ctx, map[string]string{"a": "b"})
	require.NoError(t, err)

	require.NoError(t, q.MarkSent(ctx, entry.ID))
	assert.ErrorIs(t, q.MarkSent(ctx, entry.ID), ErrNotPending)
	assert.ErrorIs(t, q.MarkSent(ctx, "no-such-id"), ErrNotPending)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backups", "order-backups.json")
	store := NewFileStore(path)
	ctx := context.Background()

	// Missing file reads as an empty queue.
	entries, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)

	q := NewQueue(store)
	entry, err := q.Append(ctx, map[string]string{"fullName": "יהודה כהן", "phone": "050-1234567"})
	require.NoError(t, err)

	// A fresh queue over the same file sees the persisted entry.
	q2 := NewQueue(NewFileStore(path))
	pending, err := q2.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entry.ID, pending[0].ID)
	assert.Equal(t, "יהודה כהן", pending[0].Payload["fullName"])
}
