package model

import "encoding/json"

// LanguageBaseline holds the expected runtime/memory for one language on one
// challenge, used to normalize the efficiency component. A challenge is not
// judge-ready for a language without one.
// swagger:model LanguageBaseline
type LanguageBaseline struct {
	BaseModel
	ChallengeID uint            `gorm:"uniqueIndex:idx_challenge_language;type:bigint unsigned" json:"challengeId"`
	Language    string          `gorm:"size:32;uniqueIndex:idx_challenge_language" json:"language"`
	RuntimeMs   int             `json:"runtimeMs"`
	MemoryMB    int             `json:"memoryMb"`
	LintRules   json.RawMessage `gorm:"type:json" json:"lintRules"`
}

func (LanguageBaseline) TableName() string {
	return "language_baselines"
}

// LintRule is one static style rule stored in LanguageBaseline.LintRules.
// Pattern is a regular expression matched against the submitted code.
type LintRule struct {
	Pattern string `json:"pattern"`
	Penalty int    `json:"penalty"`
	Message string `json:"message"`
}
