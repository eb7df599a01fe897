package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchQueue_MergesAndPushesDueTime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewBatchQueue()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	appID := uuid.New()
	a, b := uuid.New(), uuid.New()
	require.NoError(t, q.Enqueue(ctx, appID, []uuid.UUID{a}, time.Minute))

	q.now = func() time.Time { return base.Add(30 * time.Second) }
	require.NoError(t, q.Enqueue(ctx, appID, []uuid.UUID{a, b}, time.Minute))
	assert.Equal(t, 1, q.Len())

	due, err := q.Due(ctx, base.Add(time.Minute), 0)
	require.NoError(t, err)
	assert.Empty(t, due, "second enqueue moved the due time")

	due, err = q.Due(ctx, base.Add(90*time.Second), 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{appID}, due)

	ids, err := q.Drain(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.Zero(t, q.Len())
}

func TestBatchQueue_DueOrderAndLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	q := NewBatchQueue()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	first, second, later := uuid.New(), uuid.New(), uuid.New()
	require.NoError(t, q.Enqueue(ctx, second, []uuid.UUID{uuid.New()}, 2*time.Second))
	require.NoError(t, q.Enqueue(ctx, first, []uuid.UUID{uuid.New()}, time.Second))
	require.NoError(t, q.Enqueue(ctx, later, []uuid.UUID{uuid.New()}, time.Hour))

	due, err := q.Due(ctx, base.Add(time.Minute), 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, due)

	due, err = q.Due(ctx, base.Add(time.Minute), 1)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first}, due)

	ids, err := q.Drain(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)
}
