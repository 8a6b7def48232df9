package repository

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
)

// ProctoringRepository reads session state written by the external
// proctoring service. Reads must tolerate concurrent writers, so nothing
// here is cached.
type ProctoringRepository struct {
	DB *gorm.DB
}

func NewProctoringRepository(db *gorm.DB) *ProctoringRepository {
	return &ProctoringRepository{DB: db}
}

func (r *ProctoringRepository) GetSession(sessionID string) (*model.ProctoringSession, error) {
	var session model.ProctoringSession
	err := r.DB.Where("id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CountPendingSnapshots is the pollable "pending" counter the admission
// gate waits on.
func (r *ProctoringRepository) CountPendingSnapshots(sessionID string) (int, error) {
	var count int64
	err := r.DB.Model(&model.ProctoringSnapshot{}).
		Where("session_id = ? AND status = ?", sessionID, model.SnapshotProcessing).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
