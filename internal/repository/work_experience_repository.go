package repository

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
)

type WorkExperienceRepository struct {
	DB *gorm.DB
}

func NewWorkExperienceRepository(db *gorm.DB) *WorkExperienceRepository {
	return &WorkExperienceRepository{DB: db}
}

// SumDurationMonths totals the verified experience months for a user.
func (r *WorkExperienceRepository) SumDurationMonths(userID uint) (int, error) {
	var total int64
	err := r.DB.Model(&model.WorkExperience{}).
		Where("user_id = ? AND verified = ?", userID, true).
		Select("COALESCE(SUM(duration_months), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}
