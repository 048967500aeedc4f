// Package calendar provides the meeting-context capability used by capture
// enrichment: which events are on today's calendar, so a capture can be tied
// to the meeting it happened in. Only the enrichment path consumes this;
// nothing on the fast capture path waits on a calendar call.
package calendar

import (
	"context"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Event is one calendar event of the current day.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// Lookup is the capability consumed by enrichment.
type Lookup interface {
	GetTodayEvents(ctx context.Context) ([]Event, error)
}

// MeetingAt returns the event covering ts as a meeting reference, or nil when
// no event covers it. Overlapping events resolve to the one that started
// last, which is the meeting the user is most plausibly in.
func MeetingAt(events []Event, ts time.Time) *models.MeetingRef {
	var best *Event
	for i := range events {
		e := &events[i]
		if e.Start.IsZero() || ts.Before(e.Start) || !ts.Before(e.End) {
			continue
		}
		if best == nil || e.Start.After(best.Start) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return &models.MeetingRef{
		Title:  best.Title,
		Anchor: best.Title,
		Start:  best.Start,
		End:    best.End,
	}
}
