package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	listKey      = "yoscore:judge:queue"
	dedupKey     = "yoscore:judge:dedup"
	activeKey    = "yoscore:judge:active"
	completedKey = "yoscore:judge:completed"
	failedKey    = "yoscore:judge:failed"
	pausedKey    = "yoscore:judge:paused"

	popTimeout = 2 * time.Second
)

// RedisQueue is the production Queue backed by a Redis list with a dedup set
// keyed on submission id.
type RedisQueue struct {
	rdb *redis.Client
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job Job) error {
	added, err := q.rdb.SAdd(ctx, dedupKey, q.member(job)).Result()
	if err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}
	if added == 0 {
		return ErrDuplicate
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue enqueue: %w", err)
	}
	if err := q.rdb.LPush(ctx, listKey, payload).Err(); err != nil {
		// Free the slot so the caller can retry the enqueue.
		q.rdb.SRem(ctx, dedupKey, q.member(job))
		return fmt.Errorf("queue enqueue: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*Job, error) {
	paused, err := q.rdb.Get(ctx, pausedKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("queue dequeue: %w", err)
	}
	if paused == "1" {
		// Hold the caller for the usual pop window so paused workers do
		// not spin against Redis.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(popTimeout):
		}
		return nil, nil
	}

	vals, err := q.rdb.BRPop(ctx, popTimeout, listKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("queue dequeue: %w", err)
	}
	if len(vals) < 2 {
		return nil, nil
	}

	var job Job
	if err := json.Unmarshal([]byte(vals[1]), &job); err != nil {
		return nil, fmt.Errorf("queue dequeue: corrupt job payload: %w", err)
	}

	q.rdb.Incr(ctx, activeKey)
	return &job, nil
}

func (q *RedisQueue) Requeue(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue requeue: %w", err)
	}
	if err := q.rdb.LPush(ctx, listKey, payload).Err(); err != nil {
		return fmt.Errorf("queue requeue: %w", err)
	}
	q.rdb.Decr(ctx, activeKey)
	return nil
}

func (q *RedisQueue) Done(ctx context.Context, job Job, success bool) error {
	removed, err := q.rdb.SRem(ctx, dedupKey, q.member(job)).Result()
	if err != nil {
		return fmt.Errorf("queue done: %w", err)
	}
	// Slot already released (e.g. by the stuck-run supervisor): the outcome
	// was recorded then, so do not touch the counters twice.
	if removed == 0 {
		return nil
	}
	q.rdb.Decr(ctx, activeKey)
	if success {
		q.rdb.Incr(ctx, completedKey)
	} else {
		q.rdb.Incr(ctx, failedKey)
	}
	return nil
}

func (q *RedisQueue) Counts(ctx context.Context) (Counts, error) {
	var counts Counts

	waiting, err := q.rdb.LLen(ctx, listKey).Result()
	if err != nil {
		return counts, fmt.Errorf("queue counts: %w", err)
	}
	counts.Waiting = waiting

	counts.Active = q.counter(ctx, activeKey)
	counts.Completed = q.counter(ctx, completedKey)
	counts.Failed = q.counter(ctx, failedKey)

	paused, err := q.rdb.Get(ctx, pausedKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return counts, fmt.Errorf("queue counts: %w", err)
	}
	counts.Paused = paused == "1"

	return counts, nil
}

func (q *RedisQueue) Pause(ctx context.Context, paused bool) error {
	val := "0"
	if paused {
		val = "1"
	}
	return q.rdb.Set(ctx, pausedKey, val, 0).Err()
}

func (q *RedisQueue) counter(ctx context.Context, key string) int64 {
	val, err := q.rdb.Get(ctx, key).Result()
	if err != nil {
		return 0
	}
	n, _ := strconv.ParseInt(val, 10, 64)
	if n < 0 {
		return 0
	}
	return n
}

func (q *RedisQueue) member(job Job) string {
	return strconv.FormatUint(uint64(job.SubmissionID), 10)
}
