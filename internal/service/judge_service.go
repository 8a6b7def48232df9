package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/judge"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JudgeService drives one judge run: fetch test cases and baseline, execute
// the submission per test through the Runner, aggregate components and
// persist the outcome.
type JudgeService struct {
	challenges  ChallengeStore
	sessions    SessionStore
	submissions SubmissionStore
	runs        JudgeRunStore
	runner      judge.Runner
	trust       *TrustService
	scoring     config.ScoringConfig
	judgeCfg    config.JudgeConfig
}

func NewJudgeService(
	challenges ChallengeStore,
	sessions SessionStore,
	submissions SubmissionStore,
	runs JudgeRunStore,
	runner judge.Runner,
	trust *TrustService,
	scoring config.ScoringConfig,
	judgeCfg config.JudgeConfig,
) *JudgeService {
	return &JudgeService{
		challenges:  challenges,
		sessions:    sessions,
		submissions: submissions,
		runs:        runs,
		runner:      runner,
		trust:       trust,
		scoring:     scoring,
		judgeCfg:    judgeCfg,
	}
}

// RunOutcome aggregates the per-test results of one judge run.
type RunOutcome struct {
	Results     []model.TestResult
	Correctness int
	Efficiency  int
	Style       int
	Passed      int
	Total       int
	RuntimeMs   int
	MemoryKB    int
}

// RunTests executes code against every test case of the challenge, in
// order. A missing test set or baseline is an infrastructure error: it
// cannot happen for a published, judge-ready challenge.
func (s *JudgeService) RunTests(ctx context.Context, challengeID uint, language, code string) (*RunOutcome, error) {
	cases, err := s.challenges.ListTestCases(challengeID)
	if err != nil {
		return nil, fmt.Errorf("%w: load test cases: %v", util.ErrInfrastructure, err)
	}
	if len(cases) == 0 {
		return nil, fmt.Errorf("%w: challenge %d has no test cases", util.ErrInfrastructure, challengeID)
	}

	baseline, err := s.challenges.GetBaseline(challengeID, language)
	if err != nil {
		return nil, fmt.Errorf("%w: load baseline for %s: %v", util.ErrInfrastructure, language, err)
	}

	outcome := &RunOutcome{Total: len(cases)}
	totalPoints := 0
	passedPoints := 0
	totalRuntime := 0

	for _, tc := range cases {
		res, err := s.runner.Execute(ctx, judge.ExecRequest{
			Language:  language,
			Code:      code,
			Stdin:     tc.Input,
			TimeoutMs: tc.TimeoutMs,
			MemoryMB:  tc.MemoryMB,
		})
		if err != nil {
			// Runner errors are infrastructure failures; candidate-code
			// failures arrive inside the result.
			return nil, fmt.Errorf("%w: execute test %d: %v", util.ErrInfrastructure, tc.ID, err)
		}

		passed := res.ExitCode == 0 &&
			!res.TimedOut &&
			!res.Truncated &&
			strings.TrimSpace(res.Stdout) == strings.TrimSpace(tc.ExpectedOutput)

		tr := model.TestResult{
			TestCaseID: tc.ID,
			Passed:     passed,
			TimedOut:   res.TimedOut,
			Truncated:  res.Truncated,
			ExitCode:   res.ExitCode,
			RuntimeMs:  res.RuntimeMs,
			MemoryKB:   res.MemoryKB,
			ErrorClass: res.ErrorClass,
		}
		if !tc.IsHidden {
			tr.ActualOutput = res.Stdout
		}
		outcome.Results = append(outcome.Results, tr)

		totalPoints += tc.Points
		if passed {
			passedPoints += tc.Points
			outcome.Passed++
		}
		totalRuntime += res.RuntimeMs
		if res.MemoryKB > outcome.MemoryKB {
			outcome.MemoryKB = res.MemoryKB
		}
	}

	outcome.RuntimeMs = totalRuntime

	if totalPoints > 0 {
		outcome.Correctness = roundToInt(float64(challengeMax) * float64(passedPoints) / float64(totalPoints))
	}
	outcome.Efficiency = s.efficiencyScore(baseline, totalRuntime/len(cases), outcome.MemoryKB)
	outcome.Style = s.styleScore(code, baseline.LintRules)

	return outcome, nil
}

// efficiencyScore compares the observed average runtime and peak memory
// against the language baseline. At or under baseline earns the component
// max; heavier use decays toward zero, never below it.
func (s *JudgeService) efficiencyScore(baseline *model.LanguageBaseline, avgRuntimeMs, memoryKB int) int {
	timeFactor := resourceFactor(baseline.RuntimeMs, avgRuntimeMs)
	memFactor := resourceFactor(baseline.MemoryMB*1024, memoryKB)
	score := roundToInt(float64(s.scoring.EfficiencyMax) * (timeFactor + memFactor) / 2)
	return clampInt(score, 0, s.scoring.EfficiencyMax)
}

func resourceFactor(baseline, observed int) float64 {
	if observed <= 0 {
		return 1
	}
	if baseline <= 0 {
		return 0
	}
	return clampFloat(float64(baseline)/float64(observed), 0, 1)
}

// styleScore applies the baseline's lint rules to the submitted code.
// No rules configured means a neutral full score.
func (s *JudgeService) styleScore(code string, rulesRaw json.RawMessage) int {
	if len(rulesRaw) == 0 {
		return s.scoring.StyleMax
	}

	var rules []model.LintRule
	if err := json.Unmarshal(rulesRaw, &rules); err != nil {
		logger.Log.Warn("invalid lint rules, scoring style as neutral", zap.Error(err))
		return s.scoring.StyleMax
	}

	penalty := 0
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			logger.Log.Warn("invalid lint rule pattern, skipped",
				zap.String("pattern", rule.Pattern), zap.Error(err))
			continue
		}
		if re.MatchString(code) {
			penalty += rule.Penalty
		}
	}

	return clampInt(s.scoring.StyleMax-penalty, 0, s.scoring.StyleMax)
}

// ProcessJob is the queue-consumer entry point. It returns retry=true when
// the failure was infrastructural and another attempt is allowed; the
// worker requeues with backoff. Wrong answers are never retried.
func (s *JudgeService) ProcessJob(ctx context.Context, job queue.Job) (retry bool, err error) {
	submission, err := s.submissions.FindByID(job.SubmissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Log.Error("judge job for missing submission",
				zap.Uint("submission_id", job.SubmissionID))
			return false, util.ErrSubmissionNotFound
		}
		return false, err
	}

	// Redelivery of an already finished submission is a no-op.
	if submission.JudgeStatus.IsTerminal() {
		return false, nil
	}

	if err := s.submissions.UpdateJudgeStatus(submission.ID, model.JudgeRunning); err != nil {
		return true, fmt.Errorf("%w: mark running: %v", util.ErrInfrastructure, err)
	}

	started := time.Now()
	run := &model.JudgeRun{
		SubmissionID: submission.ID,
		Language:     submission.Language,
		Status:       model.RunRunning,
		StartedAt:    &started,
	}
	if err := s.runs.Create(run); err != nil {
		return true, fmt.Errorf("%w: create judge run: %v", util.ErrInfrastructure, err)
	}

	outcome, runErr := s.RunTests(ctx, submission.ChallengeID, submission.Language, submission.Code)
	finished := time.Now()
	run.FinishedAt = &finished

	if runErr != nil {
		run.Status = model.RunFailed
		run.ErrorMessage = runErr.Error()
		if uErr := s.runs.Update(run); uErr != nil {
			logger.Log.Error("persist failed judge run", zap.Error(uErr))
		}

		if job.Attempt < s.judgeCfg.MaxAttempts {
			// Leave the submission queued for the retry.
			if uErr := s.submissions.UpdateJudgeStatus(submission.ID, model.JudgeQueued); uErr != nil {
				logger.Log.Error("requeue submission status", zap.Error(uErr))
			}
			monitoring.JudgeRuns.WithLabelValues("retried").Inc()
			return true, runErr
		}

		if uErr := s.submissions.MarkFailed(submission.ID, &run.ID); uErr != nil && !errors.Is(uErr, gorm.ErrRecordNotFound) {
			logger.Log.Error("mark submission failed", zap.Error(uErr))
		}
		monitoring.JudgeRuns.WithLabelValues("failed").Inc()
		return false, runErr
	}

	penalty := s.proctoringPenalty(submission.SessionID)
	breakdown := ComposeScore(outcome.Correctness, outcome.Efficiency, outcome.Style, penalty, s.scoring.Version)

	results, err := json.Marshal(outcome.Results)
	if err != nil {
		return false, fmt.Errorf("marshal test results: %w", err)
	}

	run.Status = model.RunCompleted
	run.Results = results
	run.ScoreCorrectness = outcome.Correctness
	run.ScoreEfficiency = outcome.Efficiency
	run.ScoreStyle = outcome.Style
	run.ScoreChallenge = breakdown.Challenge
	run.ScoreBehavior = breakdown.Behavior
	run.ScoringVersion = breakdown.Version
	run.TestPassed = outcome.Passed
	run.TestTotal = outcome.Total
	run.RuntimeMs = outcome.RuntimeMs
	run.MemoryKB = outcome.MemoryKB
	if err := s.runs.Update(run); err != nil {
		return true, fmt.Errorf("%w: persist judge run: %v", util.ErrInfrastructure, err)
	}

	if err := s.submissions.MarkGraded(submission.ID, run.ID, breakdown.Score); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The deadline supervisor finalized this submission while the
			// run was in flight; its terminal state wins.
			logger.Log.Warn("submission finalized elsewhere, grade not applied",
				zap.Uint("submission_id", submission.ID))
			monitoring.JudgeRuns.WithLabelValues("superseded").Inc()
			return false, nil
		}
		return true, fmt.Errorf("%w: mark graded: %v", util.ErrInfrastructure, err)
	}

	monitoring.JudgeRuns.WithLabelValues("completed").Inc()
	monitoring.JudgeDuration.Observe(finished.Sub(started).Seconds())

	// Trust recompute follows every graded transition. A failure here must
	// not fail the judge run; the audit tool catches any drift.
	if _, err := s.trust.RecomputeTrustScore(submission.UserID); err != nil {
		logger.Log.Error("trust recompute after grading",
			zap.Uint("user_id", submission.UserID), zap.Error(err))
	}

	return false, nil
}

func (s *JudgeService) proctoringPenalty(sessionID string) int {
	if sessionID == "" {
		return 0
	}
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		logger.Log.Warn("proctoring session unavailable for penalty, using zero",
			zap.String("session_id", sessionID), zap.Error(err))
		return 0
	}
	return session.PenaltyPoints
}
