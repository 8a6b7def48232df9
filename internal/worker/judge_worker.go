package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/service"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JudgePool consumes judge jobs with a bounded set of workers. Each worker
// handles one submission end-to-end so resource usage stays attributable.
type JudgePool struct {
	jobs        queue.Queue
	judge       *service.JudgeService
	submissions service.SubmissionStore
	cfg         config.JudgeConfig

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// idlePause paces the next poll after an empty or paused Dequeue.
const idlePause = 100 * time.Millisecond

func NewJudgePool(jobs queue.Queue, judge *service.JudgeService, submissions service.SubmissionStore, cfg config.JudgeConfig) *JudgePool {
	return &JudgePool{
		jobs:        jobs,
		judge:       judge,
		submissions: submissions,
		cfg:         cfg,
	}
}

func (p *JudgePool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}

	p.wg.Add(1)
	go p.supervise(ctx)

	logger.Log.Info("judge worker pool started", zap.Int("workers", p.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (p *JudgePool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	logger.Log.Info("judge worker pool stopped")
}

func (p *JudgePool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Log.Error("dequeue failed", zap.Int("worker", id), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(idlePause):
			}
			continue
		}

		p.handle(ctx, *job)
	}
}

func (p *JudgePool) handle(ctx context.Context, job queue.Job) {
	retry, err := p.judge.ProcessJob(ctx, job)
	if err != nil {
		logger.Log.Warn("judge job failed",
			zap.Uint("submission_id", job.SubmissionID),
			zap.Int("attempt", job.Attempt),
			zap.Bool("retry", retry),
			zap.Error(err))
	}

	if retry {
		backoff := time.Duration(p.cfg.RetryBackoffMs) * time.Millisecond * time.Duration(job.Attempt)
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}

		job.Attempt++
		if rErr := p.jobs.Requeue(ctx, job); rErr != nil {
			logger.Log.Error("requeue failed, dropping job",
				zap.Uint("submission_id", job.SubmissionID), zap.Error(rErr))
			p.jobs.Done(ctx, job, false)
		}
		return
	}

	if dErr := p.jobs.Done(ctx, job, err == nil); dErr != nil {
		logger.Log.Error("queue done failed",
			zap.Uint("submission_id", job.SubmissionID), zap.Error(dErr))
	}
}

// supervise requeues or fails runs stuck past the global deadline and keeps
// the queue depth metrics current. A run left "running" forever would hold
// its dedup slot and block resubmission.
func (p *JudgePool) supervise(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.failStuckRuns(ctx)
			p.updateQueueMetrics(ctx)
		}
	}
}

func (p *JudgePool) failStuckRuns(ctx context.Context) {
	cutoff := time.Now().Add(-p.cfg.RunDeadline)
	stuck, err := p.submissions.ListStuckRunning(cutoff)
	if err != nil {
		logger.Log.Error("stuck run scan failed", zap.Error(err))
		return
	}

	for _, sub := range stuck {
		logger.Log.Warn("judge run exceeded global deadline, marking failed",
			zap.Uint("submission_id", sub.ID))
		if err := p.submissions.MarkFailed(sub.ID, sub.JudgeRunID); err != nil {
			// Already finalized by its worker between the scan and now.
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Log.Error("mark stuck submission failed", zap.Error(err))
			}
			continue
		}
		// Release the dedup slot so the submission can be re-judged.
		p.jobs.Done(ctx, queue.Job{SubmissionID: sub.ID}, false)
		monitoring.JudgeRuns.WithLabelValues("stuck").Inc()
	}
}

func (p *JudgePool) updateQueueMetrics(ctx context.Context) {
	counts, err := p.jobs.Counts(ctx)
	if err != nil {
		logger.Log.Error("queue counts failed", zap.Error(err))
		return
	}
	monitoring.QueueDepth.WithLabelValues("waiting").Set(float64(counts.Waiting))
	monitoring.QueueDepth.WithLabelValues("active").Set(float64(counts.Active))
	monitoring.QueueDepth.WithLabelValues("completed").Set(float64(counts.Completed))
	monitoring.QueueDepth.WithLabelValues("failed").Set(float64(counts.Failed))
}
