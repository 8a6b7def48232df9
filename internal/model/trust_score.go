package model

type TrustLevel string

const (
	TrustLow    TrustLevel = "Low"
	TrustMedium TrustLevel = "Medium"
	TrustHigh   TrustLevel = "High"
)

// TrustLevelFor maps a 0-100 total to its published level.
func TrustLevelFor(total int) TrustLevel {
	switch {
	case total >= 80:
		return TrustHigh
	case total >= 55:
		return TrustMedium
	default:
		return TrustLow
	}
}

// TrustScore is the per-user aggregate rating. One row per user, upserted;
// recomputation with unchanged inputs must leave the row unchanged.
// swagger:model TrustScore
type TrustScore struct {
	BaseModel
	UserID     uint       `gorm:"uniqueIndex;type:bigint unsigned" json:"userId"`
	TotalScore int        `json:"totalScore"`
	TrustLevel TrustLevel `gorm:"size:10" json:"trustLevel"`
}

func (TrustScore) TableName() string {
	return "trust_scores"
}
