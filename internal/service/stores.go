package service

import (
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
)

// Store interfaces consumed by the services. The gorm repositories satisfy
// them in production; tests substitute in-memory fakes.

type ChallengeStore interface {
	FindByID(id uint) (*model.Challenge, error)
	ListTestCases(challengeID uint) ([]model.TestCase, error)
	GetBaseline(challengeID uint, language string) (*model.LanguageBaseline, error)
}

type SessionStore interface {
	GetSession(sessionID string) (*model.ProctoringSession, error)
	CountPendingSnapshots(sessionID string) (int, error)
}

type SubmissionStore interface {
	Create(submission *model.Submission) error
	FindByID(id uint) (*model.Submission, error)
	UpdateJudgeStatus(id uint, status model.JudgeStatus) error
	MarkGraded(id uint, runID uint, score int) error
	MarkFailed(id uint, runID *uint) error
	ListGradedScores(userID uint) ([]int, error)
	ListUserIDsWithGraded() ([]uint, error)
	CountGraded() (int64, error)
	ListByUser(userID uint, page, limit int) ([]model.Submission, int64, error)
	ListStuckRunning(olderThan time.Time) ([]model.Submission, error)
}

type JudgeRunStore interface {
	Create(run *model.JudgeRun) error
	Update(run *model.JudgeRun) error
	FindByID(id uint) (*model.JudgeRun, error)
	FindLatestBySubmission(submissionID uint) (*model.JudgeRun, error)
}

type TrustStore interface {
	FindByUser(userID uint) (*model.TrustScore, error)
	Upsert(userID uint, total int, level model.TrustLevel) error
	ListAll() ([]model.TrustScore, error)
}

type WorkExperienceStore interface {
	SumDurationMonths(userID uint) (int, error)
}

type UserStore interface {
	FindByEmail(email string) (*model.User, error)
	FindByID(id uint) (*model.User, error)
}
