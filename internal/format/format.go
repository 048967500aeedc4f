// Package format builds insertable Markdown lines for captures and merges
// them into day-keyed documents. All document surgery is pure string
// manipulation; reading and writing the file is the caller's job.
package format

import (
	"regexp"
	"strings"
	"time"
)

// continuation lines of a multi-line capture are indented one list level.
const indent = "    "

// TaskLine renders content as a task list item. Single-line content gets the
// due-date marker appended; for multi-line content the marker goes on the
// first line only and the remaining lines are indented bare.
func TaskLine(content, prefix, marker, date string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	suffix := ""
	if marker != "" && date != "" {
		suffix = " " + marker + " " + date
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(lines[0]))
	b.WriteString(suffix)
	for _, l := range lines[1:] {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(strings.TrimSpace(l))
	}
	return b.String()
}

// ThoughtLine renders content as a timestamped bullet.
func ThoughtLine(content string, ts time.Time, timeFormat string) string {
	lines := strings.Split(strings.TrimSpace(content), "\n")

	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(ts.Format(timeFormat))
	b.WriteString(" ")
	b.WriteString(strings.TrimSpace(lines[0]))
	for _, l := range lines[1:] {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(strings.TrimSpace(l))
	}
	return b.String()
}

// StripDueDates removes embedded due-date tokens (marker + ISO date) from
// every line of content so re-formatting never stacks duplicate due dates.
// Stripping is a fixed point: already-clean content comes back unchanged.
func StripDueDates(content, marker string) string {
	if marker == "" {
		return content
	}
	re := regexp.MustCompile(`\s*` + regexp.QuoteMeta(marker) + `\s*\d{4}-\d{2}-\d{2}`)
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(re.ReplaceAllString(l, ""), " \t")
	}
	return strings.Join(lines, "\n")
}
