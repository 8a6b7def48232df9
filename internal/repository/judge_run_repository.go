package repository

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
)

type JudgeRunRepository struct {
	DB *gorm.DB
}

func NewJudgeRunRepository(db *gorm.DB) *JudgeRunRepository {
	return &JudgeRunRepository{DB: db}
}

func (r *JudgeRunRepository) Create(run *model.JudgeRun) error {
	return r.DB.Create(run).Error
}

func (r *JudgeRunRepository) Update(run *model.JudgeRun) error {
	return r.DB.Save(run).Error
}

func (r *JudgeRunRepository) FindByID(id uint) (*model.JudgeRun, error) {
	var run model.JudgeRun
	err := r.DB.First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// FindLatestBySubmission returns the most recent run for a submission.
// Older runs are retained for audit.
func (r *JudgeRunRepository) FindLatestBySubmission(submissionID uint) (*model.JudgeRun, error) {
	var run model.JudgeRun
	err := r.DB.Where("submission_id = ?", submissionID).
		Order("id DESC").
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}
