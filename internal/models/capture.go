// Package models defines the domain types for Ansuz.
package models

import "time"

// ContentType is the content type declared by the capture source.
type ContentType string

// Declared content types.
const (
	ContentTask       ContentType = "task"
	ContentThought    ContentType = "thought"
	ContentLink       ContentType = "link"
	ContentTranscript ContentType = "transcript"
	ContentScreenshot ContentType = "screenshot"
	ContentUnknown    ContentType = "unknown"
)

// Source identifies where a capture came from. Provenance only; routing
// never branches on it.
type Source string

// Capture sources.
const (
	SourceShare    Source = "share"
	SourceShortcut Source = "shortcut"
	SourceManual   Source = "manual"
	SourceURI      Source = "uri"
)

// Destination is a logical document location. The formatter maps each value
// to a physical section or anchor in the day's note.
type Destination string

// The closed set of destinations.
const (
	DestMeetingFollowup Destination = "meeting_followup"
	DestDailyThoughts   Destination = "daily_thoughts"
	DestDailyEnd        Destination = "daily_end"
)

// Format is the rendering style for a routed capture.
// FormatAuto is only valid inside a rule action; a finalized RouteDecision
// never carries it.
type Format string

// Formats.
const (
	FormatAuto    Format = "auto"
	FormatTask    Format = "task"
	FormatThought Format = "thought"
)

// MeetingRef describes a meeting the capture occurred during. It is set by
// the caller (enrichment or API client), never looked up by the routing
// engine itself.
type MeetingRef struct {
	Title  string    `json:"title"`
	Anchor string    `json:"anchor"` // line text the follow-up is inserted after
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// CaptureItem is a single inbound capture. Created by the orchestrator from
// raw input, enriched in place with Destination by the router, consumed (not
// mutated) by the formatter. Only its effects persist.
type CaptureItem struct {
	Content     string         `json:"content"`
	ContentType ContentType    `json:"content_type"`
	Source      Source         `json:"source"`
	Timestamp   time.Time      `json:"timestamp"`
	Meeting     *MeetingRef    `json:"meeting,omitempty"`
	Destination *RouteDecision `json:"destination,omitempty"`
}

// InMeeting reports whether the capture carries meeting context.
func (c *CaptureItem) InMeeting() bool {
	return c.Meeting != nil
}

// RouteDecision is the output of routing. Format is never FormatAuto here;
// auto is resolved before the decision is finalized.
type RouteDecision struct {
	Destination   Destination `json:"destination"`
	Format        Format      `json:"format"`
	AddDueDate    bool        `json:"add_due_date"`
	DueDateOffset *int        `json:"due_date_offset,omitempty"`
	RuleID        string      `json:"rule_id,omitempty"`
}

// Entity is a known person or organization found in capture content by the
// entity index.
type Entity struct {
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
	Path string     `json:"path"` // vault path of the entity note, without .md
}

// EntityKind distinguishes people from organizations.
type EntityKind string

// Entity kinds.
const (
	EntityPerson EntityKind = "person"
	EntityOrg    EntityKind = "org"
)

// VaultFileMeta is a lightweight representation returned by storage list
// operations.
type VaultFileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
