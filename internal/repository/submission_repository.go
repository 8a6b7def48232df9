package repository

import (
	"time"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(submission *model.Submission) error {
	return r.DB.Create(submission).Error
}

func (r *SubmissionRepository) FindByID(id uint) (*model.Submission, error) {
	var submission model.Submission
	err := r.DB.First(&submission, id).Error
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) UpdateJudgeStatus(id uint, status model.JudgeStatus) error {
	return r.DB.Model(&model.Submission{}).
		Where("id = ?", id).
		Update("judge_status", status).Error
}

// MarkGraded finalizes a successfully judged submission in one update.
// Conditional on the run still being active: a worker that finishes after
// the deadline supervisor already failed the submission must not flip it
// back. Returns gorm.ErrRecordNotFound when the row was not updated.
func (r *SubmissionRepository) MarkGraded(id uint, runID uint, score int) error {
	res := r.DB.Model(&model.Submission{}).
		Where("id = ? AND judge_status = ?", id, model.JudgeRunning).
		Updates(map[string]interface{}{
			"status":       model.SubmissionGraded,
			"judge_status": model.JudgeCompleted,
			"judge_run_id": runID,
			"score":        score,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkFailed ends a submission after judge retries are exhausted. Terminal
// rows are left alone.
func (r *SubmissionRepository) MarkFailed(id uint, runID *uint) error {
	updates := map[string]interface{}{
		"status":       model.SubmissionFailed,
		"judge_status": model.JudgeFailed,
	}
	if runID != nil {
		updates["judge_run_id"] = *runID
	}
	res := r.DB.Model(&model.Submission{}).
		Where("id = ? AND judge_status IN ?", id, []model.JudgeStatus{model.JudgeQueued, model.JudgeRunning}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListGradedScores returns the scores of all graded submissions for a user.
func (r *SubmissionRepository) ListGradedScores(userID uint) ([]int, error) {
	var scores []int
	err := r.DB.Model(&model.Submission{}).
		Where("user_id = ? AND status = ? AND score IS NOT NULL", userID, model.SubmissionGraded).
		Pluck("score", &scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}

// ListUserIDsWithGraded returns every user that has at least one graded
// submission, for batch recomputation.
func (r *SubmissionRepository) ListUserIDsWithGraded() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Submission{}).
		Where("status = ? AND score IS NOT NULL", model.SubmissionGraded).
		Distinct().
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *SubmissionRepository) CountGraded() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Submission{}).
		Where("status = ?", model.SubmissionGraded).
		Count(&count).Error
	return count, err
}

func (r *SubmissionRepository) ListByUser(userID uint, page, limit int) ([]model.Submission, int64, error) {
	var submissions []model.Submission
	var total int64

	query := r.DB.Model(&model.Submission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("submitted_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

// ListStuckRunning finds submissions whose judge run has been running past
// the global deadline, for the supervisor to fail or requeue.
func (r *SubmissionRepository) ListStuckRunning(olderThan time.Time) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.DB.Where("judge_status = ? AND updated_at < ?", model.JudgeRunning, olderThan).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
