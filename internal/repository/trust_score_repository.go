package repository

import (
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrustScoreRepository struct {
	DB *gorm.DB
}

func NewTrustScoreRepository(db *gorm.DB) *TrustScoreRepository {
	return &TrustScoreRepository{DB: db}
}

func (r *TrustScoreRepository) FindByUser(userID uint) (*model.TrustScore, error) {
	var score model.TrustScore
	err := r.DB.Where("user_id = ?", userID).First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

// Upsert writes the user's trust score inside a transaction that locks the
// existing row, so concurrent recomputes for the same user serialize instead
// of losing updates. Idempotent: unchanged inputs leave the row unchanged.
func (r *TrustScoreRepository) Upsert(userID uint, total int, level model.TrustLevel) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.TrustScore
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&existing).Error

		if err == gorm.ErrRecordNotFound {
			return tx.Create(&model.TrustScore{
				UserID:     userID,
				TotalScore: total,
				TrustLevel: level,
			}).Error
		}
		if err != nil {
			return err
		}

		if existing.TotalScore == total && existing.TrustLevel == level {
			return nil
		}

		return tx.Model(&existing).Updates(map[string]interface{}{
			"total_score": total,
			"trust_level": level,
		}).Error
	})
}

func (r *TrustScoreRepository) ListAll() ([]model.TrustScore, error) {
	var scores []model.TrustScore
	err := r.DB.Find(&scores).Error
	if err != nil {
		return nil, err
	}
	return scores, nil
}
