package repository

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
)

// ChallengeRepository reads the challenge aggregate. Challenges, test cases
// and baselines are authored elsewhere and are read-only here.
type ChallengeRepository struct {
	DB *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{DB: db}
}

func (r *ChallengeRepository) FindByID(id uint) (*model.Challenge, error) {
	var challenge model.Challenge
	err := r.DB.First(&challenge, id).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListTestCases returns the challenge's test cases in judge order.
func (r *ChallengeRepository) ListTestCases(challengeID uint) ([]model.TestCase, error) {
	var cases []model.TestCase
	err := r.DB.Where("challenge_id = ?", challengeID).
		Order("order_index ASC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *ChallengeRepository) GetBaseline(challengeID uint, language string) (*model.LanguageBaseline, error) {
	var baseline model.LanguageBaseline
	err := r.DB.Where("challenge_id = ? AND language = ?", challengeID, language).
		First(&baseline).Error
	if err != nil {
		return nil, err
	}
	return &baseline, nil
}
