package handlers

import "testing"

func TestParseRange(t *testing.T) {
	const fileSize = 1000

	tests := []struct {
		header    string
		wantStart int64
		wantEnd   int64
		wantOK    bool
	}{
		{"bytes=0-499", 0, 499, true},
		{"bytes=500-999", 500, 999, true},
		{"bytes=500-", 500, 999, true},
		{"bytes=0-", 0, 999, true},
		{"bytes=-200", 800, 999, true},
		{"bytes=-2000", 0, 999, true},
		{"bytes=990-2000", 990, 999, true},
		{"bytes=1000-", 0, 0, false},
		{"bytes=9999-", 0, 0, false},
		{"bytes=500-400", 0, 0, false},
		{"bytes=abc-def", 0, 0, false},
		{"bytes=0-100,200-300", 0, 0, false},
		{"items=0-100", 0, 0, false},
		{"bytes=-0", 0, 0, false},
	}

	for _, tt := range tests {
		start, end, ok := parseRange(tt.header, fileSize)
		if ok != tt.wantOK {
			t.Errorf("parseRange(%q) ok = %v, want %v", tt.header, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("parseRange(%q) = (%d, %d), want (%d, %d)",
				tt.header, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}
