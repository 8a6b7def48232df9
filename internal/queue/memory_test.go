package queue

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryQueueDedup(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	if err := q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, Job{ID: "b", SubmissionID: 1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate submission: err = %v, want ErrDuplicate", err)
	}
	if err := q.Enqueue(ctx, Job{ID: "c", SubmissionID: 2}); err != nil {
		t.Errorf("distinct submission rejected: %v", err)
	}

	counts, _ := q.Counts(ctx)
	if counts.Waiting != 2 {
		t.Errorf("Waiting = %d, want 2", counts.Waiting)
	}
}

func TestMemoryQueueDedupSlotHeldUntilDone(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1})
	job, err := q.Dequeue(ctx)
	if err != nil || job == nil {
		t.Fatalf("Dequeue: job=%v err=%v", job, err)
	}

	// Still in flight: the slot is taken.
	if err := q.Enqueue(ctx, Job{ID: "b", SubmissionID: 1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("in-flight submission: err = %v, want ErrDuplicate", err)
	}

	q.Done(ctx, *job, true)

	if err := q.Enqueue(ctx, Job{ID: "c", SubmissionID: 1}); err != nil {
		t.Errorf("slot not freed after Done: %v", err)
	}
}

func TestMemoryQueueFIFO(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1})
	q.Enqueue(ctx, Job{ID: "b", SubmissionID: 2})

	first, _ := q.Dequeue(ctx)
	second, _ := q.Dequeue(ctx)
	if first == nil || second == nil {
		t.Fatal("expected two jobs")
	}
	if first.SubmissionID != 1 || second.SubmissionID != 2 {
		t.Errorf("order = %d,%d, want 1,2", first.SubmissionID, second.SubmissionID)
	}
}

func TestMemoryQueueEmptyDequeue(t *testing.T) {
	q := NewMemoryQueue()

	job, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if job != nil {
		t.Errorf("empty queue returned job %+v", job)
	}
}

func TestMemoryQueueDequeueContextCancel(t *testing.T) {
	q := NewMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Dequeue(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMemoryQueuePause(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1})
	q.Pause(ctx, true)

	job, err := q.Dequeue(ctx)
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if job != nil {
		t.Errorf("paused queue delivered job %+v", job)
	}

	counts, _ := q.Counts(ctx)
	if !counts.Paused || counts.Waiting != 1 {
		t.Errorf("counts = %+v, want paused with 1 waiting", counts)
	}

	// Enqueue still works while paused; delivery resumes on unpause.
	if err := q.Enqueue(ctx, Job{ID: "b", SubmissionID: 2}); err != nil {
		t.Errorf("enqueue while paused: %v", err)
	}
	q.Pause(ctx, false)
	if job, _ = q.Dequeue(ctx); job == nil {
		t.Error("unpaused queue delivered nothing")
	}
}

func TestMemoryQueueCounts(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1})
	q.Enqueue(ctx, Job{ID: "b", SubmissionID: 2})

	j1, _ := q.Dequeue(ctx)
	q.Done(ctx, *j1, true)
	j2, _ := q.Dequeue(ctx)
	q.Done(ctx, *j2, false)

	counts, _ := q.Counts(ctx)
	want := Counts{Waiting: 0, Active: 0, Completed: 1, Failed: 1}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}

func TestMemoryQueueDoneIdempotent(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1})
	job, _ := q.Dequeue(ctx)

	// First Done releases the slot and records the outcome; a second Done
	// for the same job (worker finishing after the supervisor already
	// released it) must not move the counters again.
	q.Done(ctx, *job, false)
	q.Done(ctx, *job, true)

	counts, _ := q.Counts(ctx)
	want := Counts{Waiting: 0, Active: 0, Completed: 0, Failed: 1}
	if counts != want {
		t.Errorf("counts = %+v, want %+v", counts, want)
	}
}

func TestMemoryQueueRequeueKeepsSlot(t *testing.T) {
	q := NewMemoryQueue()
	ctx := context.Background()

	q.Enqueue(ctx, Job{ID: "a", SubmissionID: 1, Attempt: 1})
	job, _ := q.Dequeue(ctx)

	retried := *job
	retried.Attempt = 2
	q.Requeue(ctx, retried)

	// The slot stays held across the retry.
	if err := q.Enqueue(ctx, Job{ID: "b", SubmissionID: 1}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("requeued submission: err = %v, want ErrDuplicate", err)
	}

	got, err := q.Dequeue(ctx)
	if err != nil || got == nil {
		t.Fatalf("Dequeue after requeue: job=%v err=%v", got, err)
	}
	if got.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", got.Attempt)
	}
}
