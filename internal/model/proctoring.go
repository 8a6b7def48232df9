package model

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionPaused SessionStatus = "paused"
	SessionEnded  SessionStatus = "ended"
)

// ProctoringSession is written by the external proctoring service; this
// service reads it when gating admission. PenaltyPoints is the accumulated
// behavior deduction reported by the violation analyzer.
// swagger:model ProctoringSession
type ProctoringSession struct {
	UUIDBase
	UserID        uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	Status        SessionStatus `gorm:"size:20;default:'active';index" json:"status"`
	PauseReason   string        `gorm:"size:255" json:"pauseReason,omitempty"`
	DeadlineAt    time.Time     `json:"deadlineAt"`
	PenaltyPoints int           `json:"penaltyPoints"`
}

func (ProctoringSession) TableName() string {
	return "proctoring_sessions"
}

type SnapshotStatus string

const (
	SnapshotProcessing SnapshotStatus = "processing"
	SnapshotAnalyzed   SnapshotStatus = "analyzed"
	SnapshotFailed     SnapshotStatus = "failed"
)

// ProctoringSnapshot is one captured frame/audio clip awaiting asynchronous
// analysis. Kind mirrors the analyzer endpoints: face, audio, object.
// swagger:model ProctoringSnapshot
type ProctoringSnapshot struct {
	BaseModel
	SessionID      string         `gorm:"size:36;index" json:"sessionId"`
	Kind           string         `gorm:"size:20" json:"kind"`
	Status         SnapshotStatus `gorm:"size:20;default:'processing';index" json:"status"`
	ViolationCount int            `json:"violationCount"`
}

func (ProctoringSnapshot) TableName() string {
	return "proctoring_snapshots"
}
