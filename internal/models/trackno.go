// file: internal/models/trackno.go
// version: 1.0.0
// guid: 5a6b7c8d-9e0f-1a2b-3c4d-5e6f7a8b9c0d

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTrackNumber renders n zero-padded to width digits. Width clamps
// to [1, 3]. Non-positive values render as "" so an unset track never
// shows up as "00". Reformatting after a width change must always start
// from the stored integer, never from a previously formatted string.
func FormatTrackNumber(n, width int) string {
	if n <= 0 {
		return ""
	}
	if width < 1 {
		width = 1
	} else if width > 3 {
		width = 3
	}
	return fmt.Sprintf("%0*d", width, n)
}

// ParseTrackNumber parses user or tag input like "7", "07", "007" and
// "7/12". The part after a slash is the total track count. At most three
// digits are accepted for the number itself.
func ParseTrackNumber(s string) (num, total int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	numPart := s
	if i := strings.IndexByte(s, '/'); i >= 0 {
		numPart = strings.TrimSpace(s[:i])
		totalPart := strings.TrimSpace(s[i+1:])
		if totalPart != "" {
			total, err = strconv.Atoi(totalPart)
			if err != nil || total < 0 {
				return 0, 0, fmt.Errorf("invalid total track count %q", s)
			}
		}
	}
	if len(numPart) > 3 {
		return 0, 0, fmt.Errorf("track number %q exceeds three digits", numPart)
	}
	num, err = strconv.Atoi(numPart)
	if err != nil || num < 0 {
		return 0, 0, fmt.Errorf("invalid track number %q", numPart)
	}
	return num, total, nil
}
