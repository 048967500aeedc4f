package dateparse

import (
	"regexp"
	"testing"
	"time"
)

// Tuesday, fixed clock for deterministic offsets.
var tue = time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

func TestParseAt(t *testing.T) {
	tests := []struct {
		name string
		text string
		now  time.Time
		want string
	}{
		{"tomorrow", "call Dana tomorrow", tue, "2026-08-26"},
		{"tomorrow alone", "tomorrow", tue, "2026-08-26"},
		{"next week from tuesday jumps to monday", "ship it next week", tue, "2026-08-31"},
		{"next week from monday jumps a full week", "next week", time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC), "2026-08-31"},
		{"next week from friday adds seven days", "next week", time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), "2026-09-04"},
		{"next week from sunday adds seven days", "next week", time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), "2026-09-06"},
		{"next friday", "demo next friday", tue, "2026-08-28"},
		{"next tuesday wraps when today is tuesday", "sync next tuesday", tue, "2026-09-01"},
		{"next monday wraps past today", "plan next monday", tue, "2026-08-31"},
		{"in n days", "follow up in 3 days", tue, "2026-08-28"},
		{"in 1 day singular", "ping in 1 day", tue, "2026-08-26"},
		{"iso passthrough", "due on 2026-12-01", tue, "2026-12-01"},
		{"us date reparsed", "due on 9/3/2026", tue, "2026-09-03"},
		{"no match", "just a thought", tue, ""},
		{"empty", "", tue, ""},
		{"tomorrow not inside word", "tomorrowland tickets", tue, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAt(tt.text, tt.now)
			if got != tt.want {
				t.Errorf("ParseAt(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParse_CanonicalShape(t *testing.T) {
	got := Parse("tomorrow")
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(got) {
		t.Fatalf("Parse(tomorrow) = %q, want canonical date", got)
	}
	want := time.Now().AddDate(0, 0, 1).Format(Layout)
	if got != want {
		t.Errorf("Parse(tomorrow) = %q, want %q", got, want)
	}
}

func TestParse_TotalOnGarbage(t *testing.T) {
	// Shapes that look like dates but do not parse must degrade to empty,
	// never panic.
	for _, s := range []string{"gibberish", "in days", "on 2026-13-99", "on 99/99/9999", "next "} {
		if got := ParseAt(s, tue); got != "" {
			t.Errorf("ParseAt(%q) = %q, want empty", s, got)
		}
	}
}

func TestTomorrowTakesPriorityOverOffset(t *testing.T) {
	got := ParseAt("tomorrow or in 5 days", tue)
	if got != "2026-08-26" {
		t.Errorf("priority order broken: got %q", got)
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(tue, 2); got != "2026-08-27" {
		t.Errorf("Offset = %q", got)
	}
}
