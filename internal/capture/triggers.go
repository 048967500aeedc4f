package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/ansuz/internal/dateparse"
	"github.com/starford/ansuz/internal/format"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/trigger"
)

// handleTrigger dispatches a detected trigger to its handler. Each handler
// owns its own document writes; the fast-path router is never consulted for
// a triggered capture.
func (s *Service) handleTrigger(ctx context.Context, m *trigger.Match, item *models.CaptureItem) (*Result, error) {
	switch m.Kind {
	case trigger.KindReference:
		return s.handleReference(m, item)
	case trigger.KindFollowup:
		return s.handleFollowup(m, item)
	case trigger.KindResearch:
		return s.handleResearch(ctx, m, item)
	default:
		return nil, fmt.Errorf("capture: unknown trigger kind %q", m.Kind)
	}
}

// handleReference files a link to read later: "- <url> <note>" under the
// references heading. The note text is entity-linked; the URL is left alone.
func (s *Service) handleReference(m *trigger.Match, item *models.CaptureItem) (*Result, error) {
	note := strings.TrimSpace(strings.TrimPrefix(m.Rest, m.URL))
	note = s.link(note)

	var line string
	switch {
	case m.URL != "" && note != "":
		line = "- " + m.URL + " " + note
	case m.URL != "":
		line = "- " + m.URL
	default:
		line = "- " + note
	}

	if err := s.appendUnderHeading(item, s.fmtCfg.ReferencesHeading, line); err != nil {
		return nil, err
	}
	return &Result{Trigger: trigger.KindReference, Line: line, NotePath: s.notes.Path(item.Timestamp)}, nil
}

// handleFollowup turns the remainder into a task: due date inferred from the
// text (falling back to the default offset), embedded due-date markers
// stripped first so re-captures never stack dates, content entity-linked.
// In a meeting the task lands after the meeting anchor, otherwise under the
// thoughts heading.
func (s *Service) handleFollowup(m *trigger.Match, item *models.CaptureItem) (*Result, error) {
	date := dateparse.ParseAt(m.Rest, item.Timestamp)
	if date == "" {
		date = dateparse.Offset(item.Timestamp, s.defaults.DueDateOffset)
	}

	content := format.StripDueDates(m.Rest, s.fmtCfg.DueDateMarker)
	content = s.link(content)
	line := format.TaskLine(content, s.fmtCfg.TaskPrefix, s.fmtCfg.DueDateMarker, date)

	doc, err := s.notes.ReadOrCreate(item.Timestamp)
	if err != nil {
		return nil, err
	}
	dest := models.DestDailyThoughts
	anchor := ""
	if item.InMeeting() {
		dest = models.DestMeetingFollowup
		anchor = item.Meeting.Anchor
	}
	merged := format.Place(doc, dest, line, format.PlaceOptions{
		ThoughtsHeading: s.fmtCfg.ThoughtsHeading,
		MeetingAnchor:   anchor,
	})
	if err := s.notes.Write(item.Timestamp, merged); err != nil {
		return nil, err
	}
	return &Result{Trigger: trigger.KindFollowup, Line: line, NotePath: s.notes.Path(item.Timestamp)}, nil
}

// handleResearch writes a research task synchronously, then detaches a
// best-effort AI call whose summary is appended under the same heading.
// The capture is confirmed before the AI is ever contacted.
func (s *Service) handleResearch(ctx context.Context, m *trigger.Match, item *models.CaptureItem) (*Result, error) {
	topic := s.link(m.Rest)
	line := format.TaskLine("Research: "+topic, s.fmtCfg.TaskPrefix, s.fmtCfg.DueDateMarker, "")

	if err := s.appendUnderHeading(item, s.fmtCfg.ResearchHeading, line); err != nil {
		return nil, err
	}
	res := &Result{Trigger: trigger.KindResearch, Line: line, NotePath: s.notes.Path(item.Timestamp)}

	if s.ai.ResearchEnabled && s.caller != nil && s.hasCreds(s.ai.Model) {
		s.detach("research", func() {
			s.runResearch(context.WithoutCancel(ctx), m.Rest, item)
		})
	}
	return res, nil
}

// runResearch is the detached half of the research trigger. Failures are
// logged and the already-written task line stays as it is.
func (s *Service) runResearch(ctx context.Context, topic string, item *models.CaptureItem) {
	prompt := fmt.Sprintf("Give a brief factual summary (3-5 bullet points) about: %s", topic)
	summary, err := s.caller.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("capture: research call failed",
			slog.String("topic", topic), slog.String("error", err.Error()))
		return
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return
	}

	var b strings.Builder
	for i, l := range strings.Split(summary, "\n") {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("    ")
		b.WriteString(strings.TrimSpace(l))
	}

	if err := s.appendUnderHeading(item, s.fmtCfg.ResearchHeading, b.String()); err != nil {
		s.logger.Warn("capture: research summary write failed",
			slog.String("topic", topic), slog.String("error", err.Error()))
		return
	}
	s.notifyEnriched(map[string]string{
		"note_path": s.notes.Path(item.Timestamp),
		"research":  topic,
	})
}

func (s *Service) appendUnderHeading(item *models.CaptureItem, heading, text string) error {
	doc, err := s.notes.ReadOrCreate(item.Timestamp)
	if err != nil {
		return err
	}
	merged := format.AppendUnderHeading(doc, heading, text)
	return s.notes.Write(item.Timestamp, merged)
}
