package model

// TestCase rows are immutable once their challenge is published.
// swagger:model TestCase
type TestCase struct {
	BaseModel
	ChallengeID    uint   `gorm:"index;type:bigint unsigned" json:"challengeId"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text" json:"expectedOutput"`
	Points         int    `json:"points"`
	TimeoutMs      int    `json:"timeoutMs"`
	MemoryMB       int    `json:"memoryMb"`
	IsHidden       bool   `gorm:"default:false" json:"isHidden"`
	OrderIndex     int    `gorm:"index" json:"orderIndex"`
}

func (TestCase) TableName() string {
	return "test_cases"
}
