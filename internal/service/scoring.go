package service

import "math"

// Score scale caps. The composition weights themselves live in
// config.ScoringConfig; these caps define the published score ranges.
const (
	challengeMax = 60
	behaviorMax  = 20
	scoreMax     = 80
	totalMax     = 100
)

// ScoreBreakdown is the composed submission score, tagged with the version
// of the formula that produced it so historical rows stay attributable
// after the formula changes.
type ScoreBreakdown struct {
	Challenge int    `json:"challenge"`
	Behavior  int    `json:"behavior"`
	Score     int    `json:"score"`
	Version   string `json:"version"`
}

// ComposeScore maps judged components plus the proctoring penalty into the
// submission score. Pure function, no I/O. Engines may emit un-clamped raw
// components; everything is clamped here.
func ComposeScore(correctness, efficiency, style, penalty int, version string) ScoreBreakdown {
	challenge := clampInt(correctness+efficiency+style, 0, challengeMax)
	behavior := clampInt(behaviorMax-penalty, 0, behaviorMax)
	score := clampInt(challenge+behavior, 0, scoreMax)

	return ScoreBreakdown{
		Challenge: challenge,
		Behavior:  behavior,
		Score:     score,
		Version:   version,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
