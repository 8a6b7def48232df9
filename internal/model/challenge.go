package model

type ChallengeStatus string

const (
	ChallengeDraft     ChallengeStatus = "draft"
	ChallengePublished ChallengeStatus = "published"
	ChallengeArchived  ChallengeStatus = "archived"
)

// Challenge is the coding task a submission is judged against. Challenge
// authoring lives elsewhere; this service only reads publish state, test
// cases and baselines.
// swagger:model Challenge
type Challenge struct {
	BaseModel
	Title       string          `gorm:"size:200" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Status      ChallengeStatus `gorm:"size:20;default:'draft';index" json:"status"`
}

func (Challenge) TableName() string {
	return "challenges"
}
