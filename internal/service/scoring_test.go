package service

import "testing"

func TestComposeScore(t *testing.T) {
	tests := []struct {
		name        string
		correctness int
		efficiency  int
		style       int
		penalty     int
		challenge   int
		behavior    int
		score       int
	}{
		{"full marks no penalty", 60, 15, 5, 0, 60, 20, 80},
		{"typical run with penalty", 40, 15, 5, 3, 60, 17, 77},
		{"zero everything", 0, 0, 0, 0, 0, 20, 20},
		{"penalty exceeds behavior", 30, 10, 3, 25, 43, 0, 43},
		{"components over challenge cap", 60, 20, 10, 0, 60, 20, 80},
		{"negative penalty clamps at behavior max", 10, 5, 2, -5, 17, 20, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeScore(tt.correctness, tt.efficiency, tt.style, tt.penalty, "v1")
			if got.Challenge != tt.challenge {
				t.Errorf("Challenge = %d, want %d", got.Challenge, tt.challenge)
			}
			if got.Behavior != tt.behavior {
				t.Errorf("Behavior = %d, want %d", got.Behavior, tt.behavior)
			}
			if got.Score != tt.score {
				t.Errorf("Score = %d, want %d", got.Score, tt.score)
			}
		})
	}
}

func TestComposeScoreVersionTag(t *testing.T) {
	got := ComposeScore(40, 10, 3, 0, "v2")
	if got.Version != "v2" {
		t.Errorf("Version = %q, want %q", got.Version, "v2")
	}
}

func TestComposeScoreBounds(t *testing.T) {
	for _, c := range []int{-10, 0, 30, 60, 120} {
		for _, p := range []int{-5, 0, 10, 50} {
			got := ComposeScore(c, 15, 5, p, "v1")
			if got.Challenge < 0 || got.Challenge > 60 {
				t.Errorf("Challenge %d out of [0,60] for c=%d p=%d", got.Challenge, c, p)
			}
			if got.Behavior < 0 || got.Behavior > 20 {
				t.Errorf("Behavior %d out of [0,20] for c=%d p=%d", got.Behavior, c, p)
			}
			if got.Score < 0 || got.Score > 80 {
				t.Errorf("Score %d out of [0,80] for c=%d p=%d", got.Score, c, p)
			}
			if got.Score != got.Challenge+got.Behavior {
				t.Errorf("Score %d != Challenge %d + Behavior %d", got.Score, got.Challenge, got.Behavior)
			}
		}
	}
}
