// Package dateparse infers calendar dates from natural-language phrases in
// capture content. Pure functions, no I/O; total for any input string.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Layout is the canonical date format produced by this package.
const Layout = "2006-01-02"

var (
	inDaysRe = regexp.MustCompile(`\bin (\d+) days?\b`)
	isoRe    = regexp.MustCompile(`\bon (\d{4}-\d{2}-\d{2})\b`)
	usRe     = regexp.MustCompile(`\bon (\d{1,2}/\d{1,2}/\d{4})\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parse infers a date from text relative to the current clock.
// Returns "" when no phrase matches; callers supply their own default.
func Parse(text string) string {
	return ParseAt(text, time.Now())
}

// ParseAt is Parse under a fixed clock, in priority order:
// "tomorrow", "next week", "next <weekday>", "in N days", "on YYYY-MM-DD",
// "on MM/DD/YYYY".
func ParseAt(text string, now time.Time) string {
	lower := strings.ToLower(text)

	if containsWord(lower, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(Layout)
	}

	if strings.Contains(lower, "next week") {
		return now.AddDate(0, 0, nextWeekOffset(now.Weekday())).Format(Layout)
	}

	for name, wd := range weekdays {
		if strings.Contains(lower, "next "+name) {
			delta := int(wd-now.Weekday()+7) % 7
			if delta == 0 {
				delta = 7
			}
			return now.AddDate(0, 0, delta).Format(Layout)
		}
	}

	if m := inDaysRe.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return now.AddDate(0, 0, n).Format(Layout)
		}
	}

	if m := isoRe.FindStringSubmatch(lower); m != nil {
		if _, err := time.Parse(Layout, m[1]); err == nil {
			return m[1]
		}
	}

	if m := usRe.FindStringSubmatch(lower); m != nil {
		if d, err := time.Parse("1/2/2006", m[1]); err == nil {
			return d.Format(Layout)
		}
	}

	return ""
}

// Offset returns now + days in canonical form. Used for default due dates.
func Offset(now time.Time, days int) string {
	return now.AddDate(0, 0, days).Format(Layout)
}

// nextWeekOffset returns the day count to add for "next week": Mon–Thu jump
// to the coming Monday, Fri–Sun add a flat week.
func nextWeekOffset(wd time.Weekday) int {
	if wd >= time.Monday && wd <= time.Thursday {
		n := (8 - int(wd)) % 7
		if n == 0 {
			n = 7
		}
		return n
	}
	return 7
}

// containsWord reports whether lower contains word bounded by non-letters.
func containsWord(lower, word string) bool {
	for from := 0; ; {
		i := strings.Index(lower[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		leftOK := start == 0 || !isLetter(lower[start-1])
		rightOK := end == len(lower) || !isLetter(lower[end])
		if leftOK && rightOK {
			return true
		}
		from = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
