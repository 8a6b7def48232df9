package worker

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// stubStore implements service.SubmissionStore with just enough behavior
// for the supervisor paths.
type stubStore struct {
	mu    sync.Mutex
	subs  map[uint]*model.Submission
	stuck []model.Submission
}

func newStubStore() *stubStore {
	return &stubStore{subs: make(map[uint]*model.Submission)}
}

func (s *stubStore) Create(sub *model.Submission) error { return nil }

func (s *stubStore) FindByID(id uint) (*model.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sub
	return &copied, nil
}

func (s *stubStore) UpdateJudgeStatus(id uint, status model.JudgeStatus) error { return nil }

func (s *stubStore) MarkGraded(id uint, runID uint, score int) error { return nil }

func (s *stubStore) MarkFailed(id uint, runID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok || sub.JudgeStatus.IsTerminal() {
		return gorm.ErrRecordNotFound
	}
	sub.Status = model.SubmissionFailed
	sub.JudgeStatus = model.JudgeFailed
	return nil
}

func (s *stubStore) ListGradedScores(userID uint) ([]int, error)  { return nil, nil }
func (s *stubStore) ListUserIDsWithGraded() ([]uint, error)       { return nil, nil }
func (s *stubStore) CountGraded() (int64, error)                  { return 0, nil }
func (s *stubStore) ListByUser(userID uint, page, limit int) ([]model.Submission, int64, error) {
	return nil, 0, nil
}

func (s *stubStore) ListStuckRunning(olderThan time.Time) ([]model.Submission, error) {
	return s.stuck, nil
}

// countingQueue returns no jobs and counts how often it is polled.
type countingQueue struct {
	dequeues int64
}

func (q *countingQueue) Enqueue(ctx context.Context, job queue.Job) error { return nil }

func (q *countingQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	atomic.AddInt64(&q.dequeues, 1)
	return nil, nil
}

func (q *countingQueue) Requeue(ctx context.Context, job queue.Job) error      { return nil }
func (q *countingQueue) Done(ctx context.Context, job queue.Job, _ bool) error { return nil }
func (q *countingQueue) Counts(ctx context.Context) (queue.Counts, error) {
	return queue.Counts{}, nil
}
func (q *countingQueue) Pause(ctx context.Context, paused bool) error { return nil }

func workerConfig() config.JudgeConfig {
	return config.JudgeConfig{Workers: 1, MaxAttempts: 3, RetryBackoffMs: 1, RunDeadline: time.Minute}
}

func TestWorkerPacesEmptyPolls(t *testing.T) {
	q := &countingQueue{}
	pool := NewJudgePool(q, nil, newStubStore(), workerConfig())

	pool.Start()
	time.Sleep(250 * time.Millisecond)
	pool.Stop()

	// One poll per idlePause window, not a busy loop.
	polls := atomic.LoadInt64(&q.dequeues)
	if polls > 10 {
		t.Errorf("worker polled %d times in 250ms, want a paced handful", polls)
	}
	if polls == 0 {
		t.Error("worker never polled the queue")
	}
}

func TestFailStuckRuns(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()
	store := newStubStore()

	// A submission whose worker went away mid-run: dedup slot claimed,
	// judge status stuck on running.
	stuck := model.Submission{
		UserID:      5,
		JudgeStatus: model.JudgeRunning,
	}
	stuck.ID = 1
	store.subs[1] = &stuck
	store.stuck = []model.Submission{stuck}

	q.Enqueue(ctx, queue.Job{ID: "j1", SubmissionID: 1})
	if job, _ := q.Dequeue(ctx); job == nil {
		t.Fatal("fixture job not dequeued")
	}

	pool := NewJudgePool(q, nil, store, workerConfig())
	pool.failStuckRuns(ctx)

	got, _ := store.FindByID(1)
	if got.Status != model.SubmissionFailed || got.JudgeStatus != model.JudgeFailed {
		t.Errorf("status = %s/%s, want failed/failed", got.Status, got.JudgeStatus)
	}

	// The dedup slot must be released so the submission can be re-judged.
	if err := q.Enqueue(ctx, queue.Job{ID: "j2", SubmissionID: 1}); err != nil {
		t.Errorf("slot not released after stuck-run cleanup: %v", err)
	}

	counts, _ := q.Counts(ctx)
	if counts.Active != 0 || counts.Failed != 1 {
		t.Errorf("counts = %+v, want active 0 failed 1", counts)
	}
}

func TestFailStuckRunsSkipsFinalized(t *testing.T) {
	q := queue.NewMemoryQueue()
	ctx := context.Background()
	store := newStubStore()

	// Scan raced with the worker: by the time the supervisor acts, the
	// submission is already terminal. Its slot belongs to that worker.
	done := model.Submission{
		UserID:      5,
		JudgeStatus: model.JudgeCompleted,
		Status:      model.SubmissionGraded,
	}
	done.ID = 2
	store.subs[2] = &done
	store.stuck = []model.Submission{done}

	q.Enqueue(ctx, queue.Job{ID: "j1", SubmissionID: 2})
	if job, _ := q.Dequeue(ctx); job == nil {
		t.Fatal("fixture job not dequeued")
	}

	pool := NewJudgePool(q, nil, store, workerConfig())
	pool.failStuckRuns(ctx)

	got, _ := store.FindByID(2)
	if got.Status != model.SubmissionGraded {
		t.Errorf("status = %s, finalized submission must not be touched", got.Status)
	}
	if err := q.Enqueue(ctx, queue.Job{ID: "j2", SubmissionID: 2}); !errors.Is(err, queue.ErrDuplicate) {
		t.Errorf("slot released for a submission the supervisor did not fail: err = %v", err)
	}
}
