package database

import "testing"

func TestShouldMigrate(t *testing.T) {
	tests := []struct {
		name  string
		mode  string
		force bool
		want  bool
	}{
		{"debug migrates by default", "debug", false, true},
		{"test migrates by default", "test", false, true},
		{"release skips by default", "release", false, false},
		{"release migrates when forced", "release", true, true},
		{"debug with force still migrates", "debug", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldMigrate(tt.mode, tt.force); got != tt.want {
				t.Errorf("shouldMigrate(%q, %v) = %v, want %v", tt.mode, tt.force, got, tt.want)
			}
		})
	}
}
