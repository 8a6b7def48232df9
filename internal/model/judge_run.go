package model

import (
	"encoding/json"
	"time"
)

type JudgeRunStatus string

const (
	RunQueued    JudgeRunStatus = "queued"
	RunRunning   JudgeRunStatus = "running"
	RunCompleted JudgeRunStatus = "completed"
	RunFailed    JudgeRunStatus = "failed"
	RunSkipped   JudgeRunStatus = "skipped"
)

// JudgeRun is one execution attempt of a submission against all test cases.
// Historical runs are retained on retry for audit; at most one is active per
// submission at a time.
// swagger:model JudgeRun
type JudgeRun struct {
	BaseModel
	SubmissionID     uint            `gorm:"index;type:bigint unsigned" json:"submissionId"`
	Language         string          `gorm:"size:32" json:"language"`
	Status           JudgeRunStatus  `gorm:"size:20;default:'queued';index" json:"status"`
	Results          json.RawMessage `gorm:"type:json" json:"results"`
	ScoreCorrectness int             `json:"scoreCorrectness"`
	ScoreEfficiency  int             `json:"scoreEfficiency"`
	ScoreStyle       int             `json:"scoreStyle"`
	ScoreChallenge   int             `json:"scoreChallenge"`
	ScoreBehavior    int             `json:"scoreBehavior"`
	ScoringVersion   string          `gorm:"size:20" json:"scoringVersion"`
	TestPassed       int             `json:"testPassed"`
	TestTotal        int             `json:"testTotal"`
	RuntimeMs        int             `json:"runtimeMs"`
	MemoryKB         int             `json:"memoryKb"`
	ErrorMessage     string          `gorm:"type:text" json:"errorMessage,omitempty"`
	StartedAt        *time.Time      `json:"startedAt,omitempty"`
	FinishedAt       *time.Time      `json:"finishedAt,omitempty"`
}

func (JudgeRun) TableName() string {
	return "judge_runs"
}

// TestResult is the per-test outcome serialized into JudgeRun.Results.
// ActualOutput is kept only for non-hidden test cases.
type TestResult struct {
	TestCaseID   uint   `json:"testCaseId"`
	Passed       bool   `json:"passed"`
	TimedOut     bool   `json:"timedOut"`
	Truncated    bool   `json:"truncated"`
	ExitCode     int    `json:"exitCode"`
	RuntimeMs    int    `json:"runtimeMs"`
	MemoryKB     int    `json:"memoryKb"`
	ActualOutput string `json:"actualOutput,omitempty"`
	ErrorClass   string `json:"errorClass,omitempty"`
}
