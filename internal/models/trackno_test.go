// file: internal/models/trackno_test.go
// version: 1.0.0
// guid: c223376d-995b-4d18-87f6-d14f69c7d3d9

package models

import "testing"

func TestFormatTrackNumber(t *testing.T) {
	tests := []struct {
		n, width int
		want     string
	}{
		{1, 2, "01"},
		{7, 1, "7"},
		{7, 3, "007"},
		{42, 2, "42"},
		{42, 3, "042"},
		{100, 2, "100"}, // wider than width renders unpadded
		{0, 2, ""},
		{-3, 2, ""},
		{5, 0, "5"},  // width clamps up to 1
		{5, 9, "005"}, // width clamps down to 3
	}
	for _, tt := range tests {
		if got := FormatTrackNumber(tt.n, tt.width); got != tt.want {
			t.Errorf("FormatTrackNumber(%d, %d) = %q, want %q", tt.n, tt.width, got, tt.want)
		}
	}
}

// Reformatting at a fixed width must be idempotent, and a width change
// must round-trip the stored integer.
func TestTrackNumberRoundTrip(t *testing.T) {
	for n := 1; n <= 99; n++ {
		for _, d := range []int{1, 2, 3} {
			s := FormatTrackNumber(n, d)
			parsed, _, err := ParseTrackNumber(s)
			if err != nil {
				t.Fatalf("ParseTrackNumber(%q): %v", s, err)
			}
			if parsed != n {
				t.Fatalf("parse(format(%d, %d)) = %d", n, d, parsed)
			}
			if again := FormatTrackNumber(parsed, d); again != s {
				t.Fatalf("format not idempotent: %q then %q", s, again)
			}
		}
	}
}

func TestParseTrackNumber(t *testing.T) {
	tests := []struct {
		in        string
		wantNum   int
		wantTotal int
		wantErr   bool
	}{
		{"7", 7, 0, false},
		{"07", 7, 0, false},
		{"007", 7, 0, false},
		{"7/12", 7, 12, false},
		{" 03 / 10 ", 3, 10, false},
		{"", 0, 0, false},
		{"0", 0, 0, false},
		{"1000", 0, 0, true},
		{"abc", 0, 0, true},
		{"7/x", 0, 0, true},
	}
	for _, tt := range tests {
		num, total, err := ParseTrackNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTrackNumber(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if num != tt.wantNum || total != tt.wantTotal {
			t.Errorf("ParseTrackNumber(%q) = %d/%d, want %d/%d", tt.in, num, total, tt.wantNum, tt.wantTotal)
		}
	}
}
