// file: internal/enrich/classify.go
// version: 1.0.0
// guid: 4d5e6f7a-8b9c-0d1e-2f3a-4b5c6d7e8f9b

package enrich

import (
	"strconv"
	"strings"
)

// moodKeywords maps community tag fragments to a coarse mood label.
// First hit in listing order wins.
var moodKeywords = []struct {
	keyword string
	mood    string
}{
	{"chill", "calm"},
	{"ambient", "calm"},
	{"mellow", "calm"},
	{"relax", "calm"},
	{"sad", "melancholic"},
	{"melanchol", "melancholic"},
	{"dark", "melancholic"},
	{"happy", "upbeat"},
	{"upbeat", "upbeat"},
	{"party", "upbeat"},
	{"dance", "upbeat"},
	{"aggressive", "intense"},
	{"heavy", "intense"},
	{"energetic", "intense"},
	{"epic", "intense"},
}

// MoodFromTags derives a mood label from community tags, or "" when
// no tag maps to one.
func MoodFromTags(tags []string) string {
	for _, tag := range tags {
		lower := strings.ToLower(tag)
		for _, mk := range moodKeywords {
			if strings.Contains(lower, mk.keyword) {
				return mk.mood
			}
		}
	}
	return ""
}

// EraForYear buckets a release year into a decade label such as
// "1980s". Years outside a sane range yield "".
func EraForYear(year int) string {
	if year < 1900 || year > 2099 {
		return ""
	}
	decade := (year / 10) * 10
	return strconv.Itoa(decade) + "s"
}

// YearFromDate extracts the year from a release date in YYYY,
// YYYY-MM, or YYYY-MM-DD form.
func YearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
