package queue

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned when a job for the same submission is already
// queued or being processed. The dedup guarantee is what keeps two workers
// from judging the same submission concurrently.
var ErrDuplicate = errors.New("job already queued for this submission")

// Job is one judge task, keyed by submission id.
type Job struct {
	ID           string    `json:"id"`
	SubmissionID uint      `json:"submissionId"`
	Attempt      int       `json:"attempt"`
	EnqueuedAt   time.Time `json:"enqueuedAt"`
}

// Counts is the queue health snapshot exposed for monitoring.
type Counts struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
	Paused    bool  `json:"paused"`
}

// Queue decouples admission from execution. Delivery is at-least-once;
// consumers must tolerate redelivery. Enqueue dedups by submission id and
// the slot is held until Done, so a submission is processed at most once
// concurrently.
type Queue interface {
	// Enqueue adds a job, or returns ErrDuplicate if one is outstanding
	// for the same submission.
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks briefly and returns the next job, or nil when the
	// queue is empty or paused.
	Dequeue(ctx context.Context) (*Job, error)
	// Requeue puts a dequeued job back for another attempt without
	// releasing its dedup slot.
	Requeue(ctx context.Context, job Job) error
	// Done releases the job's dedup slot and records the outcome.
	Done(ctx context.Context, job Job, success bool) error
	Counts(ctx context.Context) (Counts, error)
	Pause(ctx context.Context, paused bool) error
}
