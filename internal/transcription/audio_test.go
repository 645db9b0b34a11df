package transcription

import "testing"

func TestValidateVideoFormat(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"clip.mp4", true},
		{"clip.MP4", true},
		{"clip.mov", true},
		{"clip.avi", true},
		{"clip.mkv", false},
		{"clip.webm", false},
		{"clip", false},
		{"", false},
		{"archive.mp4.zip", false},
	}

	for _, tt := range tests {
		if got := ValidateVideoFormat(tt.filename); got != tt.want {
			t.Errorf("ValidateVideoFormat(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}
