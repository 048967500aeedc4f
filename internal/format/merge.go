package format

import (
	"slices"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// PlaceOptions carries the document-placement settings for one merge.
type PlaceOptions struct {
	// ThoughtsHeading is the full heading line, e.g. "## Thoughts".
	ThoughtsHeading string
	// MeetingAnchor is the anchor text of the capture's meeting, when any.
	MeetingAnchor string
}

// Place merges a formatted line into a day document according to the route
// destination. Meeting follow-ups insert after the meeting's anchor line,
// falling back to the thoughts section when the anchor is not present in the
// document. Placement is append-only; identical lines are never deduplicated
// here.
func Place(doc string, dest models.Destination, line string, opts PlaceOptions) string {
	switch dest {
	case models.DestMeetingFollowup:
		if opts.MeetingAnchor != "" {
			if merged, ok := InsertAfterAnchor(doc, opts.MeetingAnchor, line); ok {
				return merged
			}
		}
		return AppendUnderHeading(doc, opts.ThoughtsHeading, line)
	case models.DestDailyEnd:
		return AppendAtEnd(doc, line)
	default:
		return AppendUnderHeading(doc, opts.ThoughtsHeading, line)
	}
}

// InsertAfterAnchor inserts text immediately after the first line containing
// anchor. The second return reports whether the anchor was found; when it is
// not, the document is returned unchanged.
func InsertAfterAnchor(doc, anchor, text string) (string, bool) {
	if anchor == "" {
		return doc, false
	}
	lines := strings.Split(doc, "\n")
	for i, l := range lines {
		if strings.Contains(l, anchor) {
			out := slices.Insert(lines, i+1, strings.Split(text, "\n")...)
			return strings.Join(out, "\n"), true
		}
	}
	return doc, false
}

// AppendUnderHeading appends text at the end of the named section, before any
// blank lines that pad the next heading. A missing section is created at the
// end of the document. The existence check is not repeated between a caller's
// read and write; two captures racing to create the same heading may
// duplicate it, which is accepted over losing either line.
func AppendUnderHeading(doc, heading, text string) string {
	lines := strings.Split(doc, "\n")

	idx := -1
	for i, l := range lines {
		if headingEqual(l, heading) {
			idx = i
			break
		}
	}
	if idx == -1 {
		out := strings.TrimRight(doc, "\n")
		if out != "" {
			out += "\n\n"
		}
		return out + heading + "\n" + text + "\n"
	}

	end := len(lines)
	for j := idx + 1; j < len(lines); j++ {
		if isHeading(lines[j]) {
			end = j
			break
		}
	}
	insert := end
	for insert > idx+1 && strings.TrimSpace(lines[insert-1]) == "" {
		insert--
	}
	out := slices.Insert(lines, insert, strings.Split(text, "\n")...)
	return strings.Join(out, "\n")
}

// AppendAtEnd appends text at the end of the document body.
func AppendAtEnd(doc, text string) string {
	out := strings.TrimRight(doc, "\n")
	if out != "" {
		out += "\n"
	}
	return out + text + "\n"
}

func isHeading(line string) bool {
	trimmed := strings.TrimLeft(line, "#")
	return len(trimmed) < len(line) && strings.HasPrefix(trimmed, " ")
}

// headingEqual compares heading lines by their text, ignoring level and case.
func headingEqual(line, heading string) bool {
	return strings.EqualFold(headingText(line), headingText(heading)) && headingText(line) != ""
}

func headingText(line string) string {
	s := strings.TrimSpace(line)
	trimmed := strings.TrimLeft(s, "#")
	if len(trimmed) == len(s) || !strings.HasPrefix(trimmed, " ") {
		return ""
	}
	return strings.TrimSpace(trimmed)
}
