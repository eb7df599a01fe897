package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BatchQueue is the in-memory rejection batch queue. Re-enqueueing an
// application merges the artifact ids and pushes its due time forward.
type BatchQueue struct {
	mu      sync.Mutex
	due     map[uuid.UUID]time.Time
	members map[uuid.UUID][]uuid.UUID
	now     func() time.Time
}

// NewBatchQueue creates an empty queue.
func NewBatchQueue() *BatchQueue {
	return &BatchQueue{
		due:     make(map[uuid.UUID]time.Time),
		members: make(map[uuid.UUID][]uuid.UUID),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (q *BatchQueue) Enqueue(_ context.Context, applicationID uuid.UUID, artifactIDs []uuid.UUID, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range artifactIDs {
		if !slices.Contains(q.members[applicationID], id) {
			q.members[applicationID] = append(q.members[applicationID], id)
		}
	}
	q.due[applicationID] = q.now().Add(delay)
	return nil
}

func (q *BatchQueue) Due(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []uuid.UUID
	for id, at := range q.due {
		if !at.After(now) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int { return q.due[a].Compare(q.due[b]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (q *BatchQueue) Drain(_ context.Context, applicationID uuid.UUID) ([]uuid.UUID, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := q.members[applicationID]
	delete(q.members, applicationID)
	delete(q.due, applicationID)
	return ids, nil
}

// Len returns the number of queued applications.
func (q *BatchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.due)
}
