package queue

import (
	"context"
	"sync"
	"time"
)

// MemoryQueue is an in-process Queue with the same dedup and counting
// semantics as RedisQueue. Used by tests and single-node dev mode.
type MemoryQueue struct {
	mu        sync.Mutex
	jobs      []Job
	inFlight  map[uint]bool
	active    int64
	completed int64
	failed    int64
	paused    bool
	wake      chan struct{}
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		inFlight: make(map[uint]bool),
		wake:     make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight[job.SubmissionID] {
		return ErrDuplicate
	}
	q.inFlight[job.SubmissionID] = true
	q.jobs = append(q.jobs, job)

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (*Job, error) {
	deadline := time.NewTimer(100 * time.Millisecond)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if !q.paused && len(q.jobs) > 0 {
			job := q.jobs[0]
			q.jobs = q.jobs[1:]
			q.active++
			q.mu.Unlock()
			return &job, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		case <-deadline.C:
			return nil, nil
		}
	}
}

func (q *MemoryQueue) Requeue(ctx context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	q.active--
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *MemoryQueue) Done(ctx context.Context, job Job, success bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.inFlight[job.SubmissionID] {
		return nil
	}
	delete(q.inFlight, job.SubmissionID)
	q.active--
	if success {
		q.completed++
	} else {
		q.failed++
	}
	return nil
}

func (q *MemoryQueue) Counts(ctx context.Context) (Counts, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Counts{
		Waiting:   int64(len(q.jobs)),
		Active:    q.active,
		Completed: q.completed,
		Failed:    q.failed,
		Paused:    q.paused,
	}, nil
}

func (q *MemoryQueue) Pause(ctx context.Context, paused bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.paused = paused
	return nil
}
