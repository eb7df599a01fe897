// Package batchqueue coalesces document rejections per application before
// the applicant is notified. Each application owns a set of artifact ids and
// one entry in a sorted set scored by its due time.
package batchqueue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// memberTTL bounds how long an undrained member set survives past its due time.
const memberTTL = 24 * time.Hour

// Queue is the Redis-backed rejection batch queue.
type Queue struct {
	rdb    redis.Cmdable
	prefix string
	now    func() time.Time
}

// New creates a queue whose keys start with prefix.
func New(rdb redis.Cmdable, prefix string) *Queue {
	return &Queue{
		rdb:    rdb,
		prefix: prefix,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (q *Queue) dueKey() string { return q.prefix + ":due" }

func (q *Queue) membersKey(applicationID uuid.UUID) string {
	return q.prefix + ":app:" + applicationID.String()
}

// Enqueue adds artifact ids to the batch of an application and moves its due
// time to now+delay.
func (q *Queue) Enqueue(ctx context.Context, applicationID uuid.UUID, artifactIDs []uuid.UUID, delay time.Duration) error {
	due := q.now().Add(delay)
	members := make([]any, 0, len(artifactIDs))
	for _, id := range artifactIDs {
		members = append(members, id.String())
	}

	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		key := q.membersKey(applicationID)
		if len(members) > 0 {
			p.SAdd(ctx, key, members...)
			p.Expire(ctx, key, delay+memberTTL)
		}
		p.ZAdd(ctx, q.dueKey(), redis.Z{
			Score:  float64(due.UnixMilli()),
			Member: applicationID.String(),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("enqueue batch %s: %w", applicationID, err)
	}
	return nil
}

// Due returns up to limit applications whose batch is due at now, oldest first.
func (q *Queue) Due(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	raw, err := q.rdb.ZRangeByScore(ctx, q.dueKey(), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list due batches: %w", err)
	}

	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse batch member %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// Drain removes the batch of an application and returns its artifact ids.
func (q *Queue) Drain(ctx context.Context, applicationID uuid.UUID) ([]uuid.UUID, error) {
	var members *redis.StringSliceCmd

	_, err := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		key := q.membersKey(applicationID)
		members = p.SMembers(ctx, key)
		p.Del(ctx, key)
		p.ZRem(ctx, q.dueKey(), applicationID.String())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain batch %s: %w", applicationID, err)
	}

	out := make([]uuid.UUID, 0, len(members.Val()))
	for _, s := range members.Val() {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse artifact id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}
