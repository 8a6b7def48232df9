package model

import "time"

type SubmissionStatus string

const (
	SubmissionPending SubmissionStatus = "pending"
	SubmissionGraded  SubmissionStatus = "graded"
	SubmissionFailed  SubmissionStatus = "failed"
)

// JudgeStatus is the lifecycle of the judge run attached to a submission:
// queued -> running -> completed | failed.
type JudgeStatus string

const (
	JudgeQueued    JudgeStatus = "queued"
	JudgeRunning   JudgeStatus = "running"
	JudgeCompleted JudgeStatus = "completed"
	JudgeFailed    JudgeStatus = "failed"
)

// IsTerminal reports whether the judge status is final.
func (s JudgeStatus) IsTerminal() bool {
	return s == JudgeCompleted || s == JudgeFailed
}

// Submission is one user's code attempt for one challenge/language. Rows are
// only ever created by the admission gate and only transition forward.
// swagger:model Submission
type Submission struct {
	BaseModel
	UserID      uint             `gorm:"index;type:bigint unsigned" json:"userId"`
	User        *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ChallengeID uint             `gorm:"index;type:bigint unsigned" json:"challengeId"`
	SessionID   string           `gorm:"size:36;index" json:"sessionId"`
	Language    string           `gorm:"size:32" json:"language"`
	Code        string           `gorm:"type:text" json:"code"`
	Status      SubmissionStatus `gorm:"size:20;default:'pending';index" json:"status"`
	JudgeStatus JudgeStatus      `gorm:"size:20;default:'queued';index" json:"judgeStatus"`
	JudgeRunID  *uint            `json:"judgeRunId,omitempty"`
	Score       *int             `json:"score,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

func (Submission) TableName() string {
	return "submissions"
}
