// Package queue moves receipt jobs between the API process and the
// worker. Ready jobs sit on a Redis list; jobs scheduled for later sit
// in a sorted set scored by their run-at time and are promoted when due.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bioassoc/memberhub/internal/jobs"
)

const (
	readyKey   = "queue:receipts:ready"
	delayedKey = "queue:receipts:delayed"
)

type Queue interface {
	Enqueue(ctx context.Context, j jobs.Job) error
	// Dequeue blocks up to block waiting for a ready job. ok is false on
	// timeout with no job available.
	Dequeue(ctx context.Context, block time.Duration) (j jobs.Job, ok bool, err error)
}

type RedisQueue struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{client: client, now: time.Now}
}

func (q *RedisQueue) Enqueue(ctx context.Context, j jobs.Job) error {
	raw, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("queue encode: %w", err)
	}

	if j.RunAt.After(q.now()) {
		err = q.client.ZAdd(ctx, delayedKey, redis.Z{
			Score:  float64(j.RunAt.Unix()),
			Member: raw,
		}).Err()
	} else {
		err = q.client.LPush(ctx, readyKey, raw).Err()
	}

	if err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}

	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, block time.Duration) (jobs.Job, bool, error) {
	if err := q.promoteDue(ctx); err != nil {
		return jobs.Job{}, false, err
	}

	res, err := q.client.BRPop(ctx, block, readyKey).Result()

	if err == redis.Nil {
		return jobs.Job{}, false, nil
	}

	if err != nil {
		return jobs.Job{}, false, fmt.Errorf("queue dequeue: %w", err)
	}

	// BRPop returns [key, value].
	var j jobs.Job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return jobs.Job{}, false, fmt.Errorf("queue decode: %w", err)
	}

	return j, true, nil
}

// promoteDue moves delayed jobs whose run-at has passed onto the ready
// list. ZRem before LPush so two workers cannot promote the same entry.
func (q *RedisQueue) promoteDue(ctx context.Context) error {
	max := fmt.Sprintf("%d", q.now().Unix())

	due, err := q.client.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf", Max: max, Count: 100,
	}).Result()

	if err != nil {
		return fmt.Errorf("queue promote: %w", err)
	}

	for _, raw := range due {
		removed, err := q.client.ZRem(ctx, delayedKey, raw).Result()
		if err != nil {
			return fmt.Errorf("queue promote: %w", err)
		}

		if removed == 0 {
			continue // another worker took it
		}

		if err := q.client.LPush(ctx, readyKey, raw).Err(); err != nil {
			return fmt.Errorf("queue promote: %w", err)
		}
	}

	return nil
}
