package model

// WorkExperience is verified employment history maintained by an external
// profile service. Only verified rows count toward the trust score.
// swagger:model WorkExperience
type WorkExperience struct {
	BaseModel
	UserID         uint   `gorm:"index;type:bigint unsigned" json:"userId"`
	Company        string `gorm:"size:200" json:"company"`
	Title          string `gorm:"size:200" json:"title"`
	DurationMonths int    `json:"durationMonths"`
	Verified       bool   `gorm:"default:false;index" json:"verified"`
}

func (WorkExperience) TableName() string {
	return "work_experiences"
}
