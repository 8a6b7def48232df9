package service

import (
	"errors"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/logger"
	"github.com/SthembisoGit/Yo-Score-sub002/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrustService recomputes user trust scores from graded submissions and
// verified work experience. Recomputation is idempotent: unchanged inputs
// produce an unchanged row.
type TrustService struct {
	submissions SubmissionStore
	work        WorkExperienceStore
	trust       TrustStore
	cfg         config.ScoringConfig
}

func NewTrustService(
	submissions SubmissionStore,
	work WorkExperienceStore,
	trust TrustStore,
	cfg config.ScoringConfig,
) *TrustService {
	return &TrustService{
		submissions: submissions,
		work:        work,
		trust:       trust,
		cfg:         cfg,
	}
}

// computeTotal derives the 0-100 trust total from the raw aggregates.
// Shared by the writer and the read-only consistency audit.
func (s *TrustService) computeTotal(scores []int, workMonths int) int {
	var avg float64
	if len(scores) > 0 {
		sum := 0
		for _, sc := range scores {
			sum += sc
		}
		avg = float64(sum) / float64(len(scores))
	}

	workScore := clampInt(workMonths, 0, s.cfg.WorkCap)
	return clampInt(roundToInt(avg*s.cfg.AvgWeight+float64(workScore)), 0, totalMax)
}

func (s *TrustService) RecomputeTrustScore(userID uint) (*model.TrustScore, error) {
	scores, err := s.submissions.ListGradedScores(userID)
	if err != nil {
		return nil, err
	}
	months, err := s.work.SumDurationMonths(userID)
	if err != nil {
		return nil, err
	}

	total := s.computeTotal(scores, months)
	level := model.TrustLevelFor(total)

	if err := s.trust.Upsert(userID, total, level); err != nil {
		return nil, err
	}
	monitoring.TrustRecomputes.Inc()

	return &model.TrustScore{
		UserID:     userID,
		TotalScore: total,
		TrustLevel: level,
	}, nil
}

// RecomputeReport summarizes a batch recomputation.
type RecomputeReport struct {
	ProcessedSubmissions int64 `json:"processedSubmissions"`
	RecomputedUsers      int   `json:"recomputedUsers"`
}

// RecomputeAll rebuilds the trust score of every user with graded
// submissions. One bad row never blocks the rest: failures are logged and
// skipped.
func (s *TrustService) RecomputeAll() (*RecomputeReport, error) {
	userIDs, err := s.submissions.ListUserIDsWithGraded()
	if err != nil {
		return nil, err
	}

	report := &RecomputeReport{}
	for _, userID := range userIDs {
		if _, err := s.RecomputeTrustScore(userID); err != nil {
			logger.Log.Error("trust recompute skipped user",
				zap.Uint("user_id", userID), zap.Error(err))
			continue
		}
		report.RecomputedUsers++
	}

	processed, err := s.submissions.CountGraded()
	if err != nil {
		return nil, err
	}
	report.ProcessedSubmissions = processed

	return report, nil
}

// ConsistencyMismatch is one user whose stored trust total disagrees with
// a fresh recomputation.
type ConsistencyMismatch struct {
	UserID   uint `json:"userId"`
	Stored   int  `json:"stored"`
	Expected int  `json:"expected"`
}

// CheckConsistency recomputes every eligible user's total without writing
// and reports mismatches against the stored rows. It never corrects:
// surfacing the drift is the point of the audit.
func (s *TrustService) CheckConsistency() ([]ConsistencyMismatch, error) {
	userIDs, err := s.submissions.ListUserIDsWithGraded()
	if err != nil {
		return nil, err
	}

	var mismatches []ConsistencyMismatch
	for _, userID := range userIDs {
		scores, err := s.submissions.ListGradedScores(userID)
		if err != nil {
			logger.Log.Error("consistency check skipped user",
				zap.Uint("user_id", userID), zap.Error(err))
			continue
		}
		months, err := s.work.SumDurationMonths(userID)
		if err != nil {
			logger.Log.Error("consistency check skipped user",
				zap.Uint("user_id", userID), zap.Error(err))
			continue
		}
		expected := s.computeTotal(scores, months)

		stored, err := s.trust.FindByUser(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				mismatches = append(mismatches, ConsistencyMismatch{
					UserID:   userID,
					Stored:   -1,
					Expected: expected,
				})
				continue
			}
			logger.Log.Error("consistency check skipped user",
				zap.Uint("user_id", userID), zap.Error(err))
			continue
		}

		if stored.TotalScore != expected {
			mismatches = append(mismatches, ConsistencyMismatch{
				UserID:   userID,
				Stored:   stored.TotalScore,
				Expected: expected,
			})
		}
	}

	return mismatches, nil
}
