package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SubmissionService is the proctoring-aware admission gate. It is the only
// path that inserts Submission rows; every check runs before the insert so
// a rejected attempt leaves no partial state.
type SubmissionService struct {
	challenges  ChallengeStore
	sessions    SessionStore
	submissions SubmissionStore
	runs        JudgeRunStore
	jobs        queue.Queue
	cfg         *config.Config
}

func NewSubmissionService(
	challenges ChallengeStore,
	sessions SessionStore,
	submissions SubmissionStore,
	runs JudgeRunStore,
	jobs queue.Queue,
	cfg *config.Config,
) *SubmissionService {
	return &SubmissionService{
		challenges:  challenges,
		sessions:    sessions,
		submissions: submissions,
		runs:        runs,
		jobs:        jobs,
		cfg:         cfg,
	}
}

type CreateSubmissionRequest struct {
	ChallengeID   uint   `json:"challengeId" binding:"required"`
	Language      string `json:"language" binding:"required"`
	Code          string `json:"code" binding:"required"`
	SessionID     string `json:"sessionId" binding:"required"`
	TimeoutSubmit bool   `json:"timeoutSubmit"`
}

func (s *SubmissionService) CreateSubmission(ctx context.Context, userID uint, req CreateSubmissionRequest) (*model.Submission, error) {
	challenge, err := s.challenges.FindByID(req.ChallengeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChallengeNotFound
		}
		return nil, err
	}
	if challenge.Status != model.ChallengePublished {
		return nil, util.ErrChallengeNotPublished
	}

	if _, err := s.challenges.GetBaseline(req.ChallengeID, req.Language); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", util.ErrLanguageNotReady, req.Language)
		}
		return nil, err
	}

	session, err := s.sessions.GetSession(req.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	// A learner must always be able to submit at the deadline, even if a
	// device violation paused the session.
	deadlineOverride := req.TimeoutSubmit && !time.Now().Before(session.DeadlineAt)

	if !deadlineOverride {
		if session.Status != model.SessionActive {
			return nil, fmt.Errorf("%w: %s", util.ErrSessionPaused, session.PauseReason)
		}
		if err := s.waitForSnapshots(ctx, req.SessionID); err != nil {
			return nil, err
		}
	}

	submission := &model.Submission{
		UserID:      userID,
		ChallengeID: req.ChallengeID,
		SessionID:   req.SessionID,
		Language:    req.Language,
		Code:        req.Code,
		Status:      model.SubmissionPending,
		JudgeStatus: model.JudgeQueued,
		SubmittedAt: time.Now(),
	}
	if err := s.submissions.Create(submission); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}

	job := queue.Job{
		ID:           uuid.NewString(),
		SubmissionID: submission.ID,
		Attempt:      1,
		EnqueuedAt:   time.Now(),
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil && !errors.Is(err, queue.ErrDuplicate) {
		logger.Log.Error("enqueue judge job failed",
			zap.Uint("submission_id", submission.ID),
			zap.Error(err))
		if mErr := s.submissions.MarkFailed(submission.ID, nil); mErr != nil {
			logger.Log.Error("mark submission failed", zap.Error(mErr))
		}
		return nil, fmt.Errorf("%w: enqueue: %v", util.ErrInfrastructure, err)
	}

	return submission, nil
}

// waitForSnapshots polls the pending-snapshot counter until it reaches zero
// or the configured wait window elapses. Bounding the wait keeps admission
// latency predictable; the caller retries on ErrSnapshotStillProcessing.
func (s *SubmissionService) waitForSnapshots(ctx context.Context, sessionID string) error {
	interval := time.Duration(s.cfg.Proctoring.PollIntervalMs) * time.Millisecond
	window := time.Duration(s.cfg.Proctoring.MaxWaitMs) * time.Millisecond
	start := time.Now()

	for {
		pending, err := s.sessions.CountPendingSnapshots(sessionID)
		if err != nil {
			return fmt.Errorf("pending snapshot check: %w", err)
		}
		if pending == 0 {
			return nil
		}

		if time.Since(start)+interval > window {
			return util.ErrSnapshotStillProcessing
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// SubmissionResult is the assembled view of a submission, its latest judge
// run and the score breakdown.
type SubmissionResult struct {
	Submission *model.Submission `json:"submission"`
	JudgeRun   *JudgeRunSummary  `json:"judgeRun,omitempty"`
	Breakdown  *ScoreBreakdown   `json:"breakdown,omitempty"`
}

type JudgeRunSummary struct {
	Status           model.JudgeRunStatus `json:"status"`
	TestPassed       int                  `json:"testPassed"`
	TestTotal        int                  `json:"testTotal"`
	ScoreCorrectness int                  `json:"scoreCorrectness"`
	ScoreEfficiency  int                  `json:"scoreEfficiency"`
	ScoreStyle       int                  `json:"scoreStyle"`
	RuntimeMs        int                  `json:"runtimeMs"`
	MemoryKB         int                  `json:"memoryKb"`
	ErrorMessage     string               `json:"errorMessage,omitempty"`
}

func (s *SubmissionService) GetSubmissionResult(submissionID uint) (*SubmissionResult, error) {
	submission, err := s.submissions.FindByID(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSubmissionNotFound
		}
		return nil, err
	}

	result := &SubmissionResult{Submission: submission}

	run, err := s.runs.FindLatestBySubmission(submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}
		return nil, err
	}

	result.JudgeRun = &JudgeRunSummary{
		Status:           run.Status,
		TestPassed:       run.TestPassed,
		TestTotal:        run.TestTotal,
		ScoreCorrectness: run.ScoreCorrectness,
		ScoreEfficiency:  run.ScoreEfficiency,
		ScoreStyle:       run.ScoreStyle,
		RuntimeMs:        run.RuntimeMs,
		MemoryKB:         run.MemoryKB,
		ErrorMessage:     run.ErrorMessage,
	}

	if run.Status == model.RunCompleted {
		result.Breakdown = &ScoreBreakdown{
			Challenge: run.ScoreChallenge,
			Behavior:  run.ScoreBehavior,
			Score:     run.ScoreChallenge + run.ScoreBehavior,
			Version:   run.ScoringVersion,
		}
		if submission.Score != nil {
			result.Breakdown.Score = *submission.Score
		}
	}

	return result, nil
}

func (s *SubmissionService) ListUserSubmissions(userID uint, page, limit int) ([]model.Submission, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.submissions.ListByUser(userID, page, limit)
}
