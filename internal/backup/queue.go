package backup

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Capacity bounds the queue. When full, the oldest entry is evicted first,
// whatever its status.
const Capacity = 10

var ErrNotPending = errors.New("entry is not pending")

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
)

// Entry is one backed-up submission. Entries flip to sent on a successful
// retry and are otherwise only removed by capacity eviction.
type Entry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
	Status    Status            `json:"status"`
	SentAt    *time.Time        `json:"sentAt,omitempty"`
}

// Store persists the whole queue under a single key as one JSON array.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Queue is a bounded FIFO of unconfirmed submissions. Every operation is one
// guarded load-modify-save, so concurrent retry passes in this process never
// observe a partial write.
type Queue struct {
	mu    sync.Mutex
	store Store
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store}
}

// Append stores a new pending entry, evicting the oldest entries beyond
// capacity.
func (q *Queue) Append(ctx context.Context, payload map[string]string) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.store.Load(ctx)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Payload:   payload,
		Status:    StatusPending,
	}
	entries = append(entries, entry)
	if len(entries) > Capacity {
		entries = entries[len(entries)-Capacity:]
	}

	if err := q.store.Save(ctx, entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Pending returns the entries still awaiting a successful delivery.
func (q *Queue) Pending(ctx context.Context) ([]Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	var pending []Entry
	for _, e := range entries {
		if e.Status == StatusPending {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

// MarkSent flips a pending entry to sent with a timestamp. It fails with
// ErrNotPending when the entry was already flipped or evicted, so a
// concurrent pass that lost the race knows not to count the send as its own.
func (q *Queue) MarkSent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.store.Load(ctx)
	if err != nil {
		return err
	}

	for i := range entries {
		if entries[i].ID == id {
			if entries[i].Status != StatusPending {
				return ErrNotPending
			}
			now := time.Now()
			entries[i].Status = StatusSent
			entries[i].SentAt = &now
			return q.store.Save(ctx, entries)
		}
	}
	return ErrNotPending
}

// Entries returns the full queue, oldest first.
func (q *Queue) Entries(ctx context.Context) ([]Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.store.Load(ctx)
}
