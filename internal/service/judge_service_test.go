package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/judge"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/queue"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/util"
)

type judgeEnv struct {
	svc        *JudgeService
	challenges *fakeChallengeStore
	sessions   *fakeSessionStore
	subs       *fakeSubmissionStore
	runs       *fakeJudgeRunStore
	trust      *fakeTrustStore
	runner     *fakeRunner
}

func newJudgeEnv() *judgeEnv {
	env := &judgeEnv{
		challenges: newFakeChallengeStore(),
		sessions:   newFakeSessionStore(),
		subs:       newFakeSubmissionStore(),
		runs:       newFakeJudgeRunStore(),
		trust:      newFakeTrustStore(),
		runner:     &fakeRunner{},
	}

	trustSvc := NewTrustService(env.subs, newFakeWorkStore(), env.trust, trustTestConfig())
	env.svc = NewJudgeService(
		env.challenges,
		env.sessions,
		env.subs,
		env.runs,
		env.runner,
		trustSvc,
		trustTestConfig(),
		config.JudgeConfig{Workers: 1, MaxAttempts: 3, RetryBackoffMs: 1, RunDeadline: time.Minute},
	)

	return env
}

func addTestCase(env *judgeEnv, challengeID uint, id uint, input, expected string, points int) {
	tc := model.TestCase{
		ChallengeID:    challengeID,
		Input:          input,
		ExpectedOutput: expected,
		Points:         points,
		TimeoutMs:      2000,
		MemoryMB:       64,
	}
	tc.ID = id
	env.challenges.cases[challengeID] = append(env.challenges.cases[challengeID], tc)
}

func echoRunner(outputs map[string]*judge.ExecResult) func(req judge.ExecRequest) (*judge.ExecResult, error) {
	return func(req judge.ExecRequest) (*judge.ExecResult, error) {
		if res, ok := outputs[req.Stdin]; ok {
			return res, nil
		}
		return &judge.ExecResult{Stdout: "", ExitCode: 0, RuntimeMs: 50, MemoryKB: 1024}, nil
	}
}

func TestRunTestsExactMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		result   judge.ExecResult
		pass     bool
	}{
		{"trailing newline ignored", "5", judge.ExecResult{Stdout: "5\n"}, true},
		{"trailing spaces ignored", "5", judge.ExecResult{Stdout: "5  "}, true},
		{"leading zero differs", "5", judge.ExecResult{Stdout: "05"}, false},
		{"interior whitespace differs", "a b", judge.ExecResult{Stdout: "a  b"}, false},
		{"nonzero exit fails despite output", "5", judge.ExecResult{Stdout: "5", ExitCode: 1}, false},
		{"timeout fails despite output", "5", judge.ExecResult{Stdout: "5", TimedOut: true}, false},
		{"truncated output fails", "5", judge.ExecResult{Stdout: "5", Truncated: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newJudgeEnv()
			addTestCase(env, 1, 10, "in", tt.expected, 10)
			env.challenges.baselines[baselineKey(1, "python")] = &model.LanguageBaseline{
				ChallengeID: 1, Language: "python", RuntimeMs: 100, MemoryMB: 64,
			}
			res := tt.result
			env.runner.fn = func(req judge.ExecRequest) (*judge.ExecResult, error) {
				return &res, nil
			}

			outcome, err := env.svc.RunTests(context.Background(), 1, "python", "code")
			if err != nil {
				t.Fatalf("RunTests: %v", err)
			}
			if got := outcome.Passed == 1; got != tt.pass {
				t.Errorf("passed = %v, want %v", got, tt.pass)
			}
		})
	}
}

func TestRunTestsCorrectness(t *testing.T) {
	env := newJudgeEnv()
	addTestCase(env, 1, 10, "a", "1", 10)
	addTestCase(env, 1, 11, "b", "2", 10)
	addTestCase(env, 1, 12, "c", "3", 10)
	env.challenges.baselines[baselineKey(1, "python")] = &model.LanguageBaseline{
		ChallengeID: 1, Language: "python", RuntimeMs: 100, MemoryMB: 1,
	}
	env.runner.fn = echoRunner(map[string]*judge.ExecResult{
		"a": {Stdout: "1", RuntimeMs: 100, MemoryKB: 1024},
		"b": {Stdout: "2", RuntimeMs: 100, MemoryKB: 1024},
		"c": {Stdout: "wrong", RuntimeMs: 100, MemoryKB: 1024},
	})

	outcome, err := env.svc.RunTests(context.Background(), 1, "python", "code")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if outcome.Passed != 2 || outcome.Total != 3 {
		t.Errorf("passed/total = %d/%d, want 2/3", outcome.Passed, outcome.Total)
	}
	// 60 * 20/30 points.
	if outcome.Correctness != 40 {
		t.Errorf("Correctness = %d, want 40", outcome.Correctness)
	}
	// At baseline on both axes the component max is earned.
	if outcome.Efficiency != 15 {
		t.Errorf("Efficiency = %d, want 15", outcome.Efficiency)
	}
	if outcome.RuntimeMs != 300 {
		t.Errorf("RuntimeMs = %d, want 300", outcome.RuntimeMs)
	}
	if outcome.MemoryKB != 1024 {
		t.Errorf("MemoryKB = %d, want 1024", outcome.MemoryKB)
	}
}

func TestRunTestsStyleRules(t *testing.T) {
	env := newJudgeEnv()
	addTestCase(env, 1, 10, "a", "1", 10)

	rules, _ := json.Marshal([]model.LintRule{
		{Pattern: `\beval\(`, Penalty: 2, Message: "avoid eval"},
		{Pattern: `\bgoto\b`, Penalty: 3, Message: "no goto"},
	})
	env.challenges.baselines[baselineKey(1, "python")] = &model.LanguageBaseline{
		ChallengeID: 1, Language: "python", RuntimeMs: 100, MemoryMB: 64, LintRules: rules,
	}
	env.runner.fn = echoRunner(map[string]*judge.ExecResult{
		"a": {Stdout: "1", RuntimeMs: 50, MemoryKB: 512},
	})

	outcome, err := env.svc.RunTests(context.Background(), 1, "python", "x = eval(input())")
	if err != nil {
		t.Fatalf("RunTests: %v", err)
	}
	if outcome.Style != 3 {
		t.Errorf("Style = %d, want 3 (one rule hit)", outcome.Style)
	}
}

func TestRunTestsMissingFixtures(t *testing.T) {
	env := newJudgeEnv()

	// No test cases at all.
	if _, err := env.svc.RunTests(context.Background(), 1, "python", "code"); !errors.Is(err, util.ErrInfrastructure) {
		t.Errorf("no cases: err = %v, want ErrInfrastructure", err)
	}

	// Cases but no baseline.
	addTestCase(env, 1, 10, "a", "1", 10)
	if _, err := env.svc.RunTests(context.Background(), 1, "python", "code"); !errors.Is(err, util.ErrInfrastructure) {
		t.Errorf("no baseline: err = %v, want ErrInfrastructure", err)
	}
}

func gradedFixture(env *judgeEnv) *model.Submission {
	sub := &model.Submission{
		UserID:      5,
		ChallengeID: 1,
		SessionID:   "sess-1",
		Language:    "python",
		Code:        "code",
		Status:      model.SubmissionPending,
		JudgeStatus: model.JudgeQueued,
	}
	env.subs.add(sub)

	addTestCase(env, 1, 10, "a", "1", 10)
	env.challenges.baselines[baselineKey(1, "python")] = &model.LanguageBaseline{
		ChallengeID: 1, Language: "python", RuntimeMs: 100, MemoryMB: 1,
	}
	env.sessions.sessions["sess-1"] = &model.ProctoringSession{
		UserID:        5,
		Status:        model.SessionActive,
		PenaltyPoints: 3,
	}
	return sub
}

func TestProcessJobSuccess(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	env.runner.fn = echoRunner(map[string]*judge.ExecResult{
		"a": {Stdout: "1", RuntimeMs: 100, MemoryKB: 1024},
	})

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 1})
	if err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if retry {
		t.Error("successful run requested a retry")
	}

	got, _ := env.subs.FindByID(sub.ID)
	if got.Status != model.SubmissionGraded || got.JudgeStatus != model.JudgeCompleted {
		t.Errorf("status = %s/%s, want graded/completed", got.Status, got.JudgeStatus)
	}
	// correctness 60 + efficiency 15 + style 5 = challenge 60 (capped),
	// behavior 20 - penalty 3 = 17.
	if got.Score == nil || *got.Score != 77 {
		t.Errorf("Score = %v, want 77", got.Score)
	}

	run, err := env.runs.FindLatestBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("no judge run persisted: %v", err)
	}
	if run.Status != model.RunCompleted {
		t.Errorf("run status = %s, want completed", run.Status)
	}
	if run.ScoreChallenge != 60 || run.ScoreBehavior != 17 {
		t.Errorf("run breakdown = %d/%d, want 60/17", run.ScoreChallenge, run.ScoreBehavior)
	}
	if run.ScoringVersion != "v1" {
		t.Errorf("ScoringVersion = %q, want v1", run.ScoringVersion)
	}

	// Grading triggers the trust recompute.
	if _, ok := env.trust.rows[5]; !ok {
		t.Error("trust score not recomputed after grading")
	}
}

func TestProcessJobTerminalNoop(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	env.subs.UpdateJudgeStatus(sub.ID, model.JudgeCompleted)
	env.runner.fn = func(req judge.ExecRequest) (*judge.ExecResult, error) {
		return &judge.ExecResult{Stdout: "1"}, nil
	}

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 1})
	if err != nil || retry {
		t.Fatalf("redelivery: retry=%v err=%v, want no-op", retry, err)
	}
	if env.runner.calls != 0 {
		t.Errorf("runner executed %d times on a finished submission", env.runner.calls)
	}
}

func TestProcessJobInfraRetry(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	env.runner.fn = func(req judge.ExecRequest) (*judge.ExecResult, error) {
		return nil, errors.New("sandbox unavailable")
	}

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 1})
	if err == nil {
		t.Fatal("expected an error from the failed run")
	}
	if !retry {
		t.Error("first infrastructure failure should be retried")
	}

	got, _ := env.subs.FindByID(sub.ID)
	if got.JudgeStatus != model.JudgeQueued {
		t.Errorf("JudgeStatus = %s, want queued for the retry", got.JudgeStatus)
	}

	run, err := env.runs.FindLatestBySubmission(sub.ID)
	if err != nil {
		t.Fatalf("failed attempt left no judge run: %v", err)
	}
	if run.Status != model.RunFailed || run.ErrorMessage == "" {
		t.Errorf("run = %s/%q, want failed with message", run.Status, run.ErrorMessage)
	}
}

func TestProcessJobExhaustedAttempts(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	env.runner.fn = func(req judge.ExecRequest) (*judge.ExecResult, error) {
		return nil, errors.New("sandbox unavailable")
	}

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 3})
	if err == nil {
		t.Fatal("expected an error from the failed run")
	}
	if retry {
		t.Error("final attempt must not be retried")
	}

	got, _ := env.subs.FindByID(sub.ID)
	if got.Status != model.SubmissionFailed || got.JudgeStatus != model.JudgeFailed {
		t.Errorf("status = %s/%s, want failed/failed", got.Status, got.JudgeStatus)
	}
}

func TestProcessJobDoesNotRegradeFinalizedSubmission(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	// While the run is executing, the deadline supervisor fails the
	// submission out from under the worker.
	env.runner.fn = func(req judge.ExecRequest) (*judge.ExecResult, error) {
		env.subs.MarkFailed(sub.ID, nil)
		return &judge.ExecResult{Stdout: "1", RuntimeMs: 100, MemoryKB: 1024}, nil
	}

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 1})
	if err != nil {
		t.Fatalf("ProcessJob: %v", err)
	}
	if retry {
		t.Error("superseded run requested a retry")
	}

	// The terminal state set by the supervisor wins over the late grade.
	got, _ := env.subs.FindByID(sub.ID)
	if got.Status != model.SubmissionFailed || got.JudgeStatus != model.JudgeFailed {
		t.Errorf("status = %s/%s, want failed/failed", got.Status, got.JudgeStatus)
	}
	if got.Score != nil {
		t.Errorf("Score = %v, want nil", *got.Score)
	}
}

func TestProcessJobMissingSession(t *testing.T) {
	env := newJudgeEnv()
	sub := gradedFixture(env)
	delete(env.sessions.sessions, "sess-1")
	env.runner.fn = echoRunner(map[string]*judge.ExecResult{
		"a": {Stdout: "1", RuntimeMs: 100, MemoryKB: 1024},
	})

	retry, err := env.svc.ProcessJob(context.Background(), queue.Job{ID: "j1", SubmissionID: sub.ID, Attempt: 1})
	if err != nil || retry {
		t.Fatalf("missing session must not fail grading: retry=%v err=%v", retry, err)
	}

	// Zero penalty applied: full behavior component.
	got, _ := env.subs.FindByID(sub.ID)
	if got.Score == nil || *got.Score != 80 {
		t.Errorf("Score = %v, want 80", got.Score)
	}
}
