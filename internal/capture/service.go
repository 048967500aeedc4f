// Package capture orchestrates the pipeline: trigger check, fast
// deterministic routing, document write, confirmation, then best-effort
// async enrichment. The fast path never performs a network call; everything
// the user waits on is local.
package capture

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/calendar"
	"github.com/starford/ansuz/internal/classifier"
	"github.com/starford/ansuz/internal/daily"
	"github.com/starford/ansuz/internal/dateparse"
	"github.com/starford/ansuz/internal/entity"
	"github.com/starford/ansuz/internal/format"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/routing"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/trigger"
)

// Defaults is the global decision applied when no rule matches.
type Defaults struct {
	Destination   models.Destination
	Format        models.Format
	AddDueDate    bool
	DueDateOffset int
}

// Formatting holds the tokens and headings used when rendering captures.
type Formatting struct {
	TaskPrefix        string
	DueDateMarker     string
	TimeFormat        string
	ThoughtsHeading   string
	ResearchHeading   string
	ReferencesHeading string
}

// AIConfig gates the network-dependent paths.
type AIConfig struct {
	FallbackEnabled bool
	ResearchEnabled bool
	Model           string
}

// Notifier receives capture lifecycle events.
type Notifier interface {
	Publish(event sse.Event)
}

// Deps wires a Service. Entities, Caller, Calendar, and Notifier are
// optional; a nil value disables the corresponding capability.
type Deps struct {
	Notes          *daily.Notes
	Rules          *routing.Snapshot
	Triggers       trigger.Config
	Routing        routing.Options
	Entities       entity.Lookup
	Caller         classifier.Caller
	AI             AIConfig
	Calendar       calendar.Lookup
	Notifier       Notifier
	Defaults       Defaults
	Format         Formatting
	Logger         *slog.Logger
	Now            func() time.Time
	HasCredentials func(model string) bool
}

// Service is the capture orchestrator.
type Service struct {
	notes    *daily.Notes
	rules    *routing.Snapshot
	triggers trigger.Config
	routeOpt routing.Options
	entities entity.Lookup
	caller   classifier.Caller
	ai       AIConfig
	cal      calendar.Lookup
	notifier Notifier
	defaults Defaults
	fmtCfg   Formatting
	logger   *slog.Logger
	now      func() time.Time
	hasCreds func(string) bool

	detached sync.WaitGroup
}

// NewService builds a Service from deps, filling in defaults.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.HasCredentials == nil {
		d.HasCredentials = classifier.HasCredentials
	}
	return &Service{
		notes:    d.Notes,
		rules:    d.Rules,
		triggers: d.Triggers,
		routeOpt: d.Routing,
		entities: d.Entities,
		caller:   d.Caller,
		ai:       d.AI,
		cal:      d.Calendar,
		notifier: d.Notifier,
		defaults: d.Defaults,
		fmtCfg:   d.Format,
		logger:   d.Logger,
		now:      d.Now,
		hasCreds: d.HasCredentials,
	}
}

// Result reports what happened to a processed capture.
type Result struct {
	// Trigger is set when a trigger handler took the capture; Decision is
	// nil in that case.
	Trigger  trigger.Kind          `json:"trigger,omitempty"`
	Decision *models.RouteDecision `json:"decision,omitempty"`
	Line     string                `json:"line"`
	NotePath string                `json:"note_path"`
}

// ProcessCapture runs one capture through the pipeline. Trigger handling and
// fast-path routing are mutually exclusive: a fired trigger owns the capture
// entirely and the router is never consulted. Fast-path failures are fatal to
// the capture; enrichment failures never are.
func (s *Service) ProcessCapture(ctx context.Context, item *models.CaptureItem) (*Result, error) {
	item.Content = strings.TrimSpace(item.Content)
	if item.Content == "" {
		return nil, apperr.ErrEmptyCapture
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = s.now()
	}

	if m := trigger.Detect(item.Content, s.triggers); m != nil {
		res, err := s.handleTrigger(ctx, m, item)
		if err != nil {
			return nil, err
		}
		s.notifyConfirmed(res)
		return res, nil
	}

	decision := s.RouteDeterministic(item)
	res, err := s.writeRouted(item, decision)
	if err != nil {
		s.notifyFailed(err)
		return nil, err
	}
	s.notifyConfirmed(res)

	s.detach("enrichment", func() {
		s.enrich(context.WithoutCancel(ctx), item, res)
	})
	return res, nil
}

// RouteDeterministic evaluates the rule snapshot only; the AI fallback is
// unreachable from here. A miss resolves to the global default decision.
func (s *Service) RouteDeterministic(item *models.CaptureItem) *models.RouteDecision {
	if d := routing.Route(item, s.rules.Load(), s.routeOpt); d != nil {
		return d
	}
	return s.defaultDecision(item)
}

// RouteFull evaluates rules first, then the AI fallback when it is enabled
// and credentialed, then the global default. Only preview and enrichment
// surfaces call this; the capture fast path never does.
func (s *Service) RouteFull(ctx context.Context, item *models.CaptureItem) *models.RouteDecision {
	if d := routing.Route(item, s.rules.Load(), s.routeOpt); d != nil {
		return d
	}
	if s.ai.FallbackEnabled && s.caller != nil && s.hasCreds(s.ai.Model) {
		if d := classifier.Classify(ctx, item, s.caller, s.logger); d != nil {
			return d
		}
	}
	return s.defaultDecision(item)
}

func (s *Service) defaultDecision(item *models.CaptureItem) *models.RouteDecision {
	f := s.defaults.Format
	if f == models.FormatAuto || f == "" {
		if routing.ShouldFormatAsTask(item, s.routeOpt) {
			f = models.FormatTask
		} else {
			f = models.FormatThought
		}
	}
	d := &models.RouteDecision{
		Destination: s.defaults.Destination,
		Format:      f,
		AddDueDate:  s.defaults.AddDueDate,
		RuleID:      "default",
	}
	if d.Format != models.FormatTask {
		d.AddDueDate = false
	}
	return d
}

// writeRouted renders the decision and merges the line into the day note.
// At most one read and one write of the destination document.
func (s *Service) writeRouted(item *models.CaptureItem, decision *models.RouteDecision) (*Result, error) {
	line := s.renderLine(item, decision)

	doc, err := s.notes.ReadOrCreate(item.Timestamp)
	if err != nil {
		return nil, err
	}

	anchor := ""
	if item.InMeeting() {
		anchor = item.Meeting.Anchor
	}
	merged := format.Place(doc, decision.Destination, line, format.PlaceOptions{
		ThoughtsHeading: s.fmtCfg.ThoughtsHeading,
		MeetingAnchor:   anchor,
	})
	if err := s.notes.Write(item.Timestamp, merged); err != nil {
		return nil, err
	}

	return &Result{
		Decision: decision,
		Line:     line,
		NotePath: s.notes.Path(item.Timestamp),
	}, nil
}

func (s *Service) renderLine(item *models.CaptureItem, decision *models.RouteDecision) string {
	content := format.StripDueDates(item.Content, s.fmtCfg.DueDateMarker)
	content = s.link(content)

	if decision.Format == models.FormatTask {
		date := ""
		if decision.AddDueDate {
			offset := s.defaults.DueDateOffset
			if decision.DueDateOffset != nil {
				offset = *decision.DueDateOffset
			}
			date = dateparse.Offset(item.Timestamp, offset)
		}
		// An already-present checkbox would otherwise be doubled by the
		// task prefix.
		content = stripCheckbox(content, s.routeOpt.CheckboxPrefix)
		return format.TaskLine(content, s.fmtCfg.TaskPrefix, s.fmtCfg.DueDateMarker, date)
	}
	return format.ThoughtLine(content, item.Timestamp, s.fmtCfg.TimeFormat)
}

// stripCheckbox removes a leading task checkbox (checked or not) from
// content.
func stripCheckbox(content, prefix string) string {
	if prefix == "" {
		return content
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, prefix) {
		return strings.TrimSpace(trimmed[len(prefix):])
	}
	checked := strings.Replace(prefix, "[ ]", "[x]", 1)
	if checked != prefix && strings.HasPrefix(trimmed, checked) {
		return strings.TrimSpace(trimmed[len(checked):])
	}
	return content
}

// link rewrites known entity mentions as wikilinks. Lookup failures leave the
// content unchanged; a capture never fails because the index hiccuped.
func (s *Service) link(content string) string {
	if s.entities == nil {
		return content
	}
	linked, err := entity.LinkContent(content, s.entities)
	if err != nil {
		s.logger.Warn("capture: entity lookup failed", slog.String("error", err.Error()))
	}
	return linked
}

// detach runs fn on its own goroutine behind an error boundary. Detached
// work is fire-and-forget relative to the capture; Wait exists for shutdown
// and tests.
func (s *Service) detach(name string, fn func()) {
	s.detached.Add(1)
	go func() {
		defer s.detached.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("capture: detached task panicked",
					slog.String("task", name), slog.Any("panic", r))
			}
		}()
		fn()
	}()
}

// Wait blocks until all detached work has finished.
func (s *Service) Wait() {
	s.detached.Wait()
}

func (s *Service) notifyConfirmed(res *Result) {
	if s.notifier == nil {
		return
	}
	data := map[string]string{
		"note_path": res.NotePath,
		"line":      res.Line,
	}
	if res.Trigger != "" {
		data["trigger"] = string(res.Trigger)
	}
	if res.Decision != nil {
		data["destination"] = string(res.Decision.Destination)
		data["rule_id"] = res.Decision.RuleID
	}
	s.notifier.Publish(sse.Event{Type: sse.EventCaptureConfirmed, Data: data})
}

func (s *Service) notifyFailed(err error) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sse.Event{Type: sse.EventCaptureFailed, Data: map[string]string{
		"error": err.Error(),
	}})
}

func (s *Service) notifyEnriched(data map[string]string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(sse.Event{Type: sse.EventCaptureEnriched, Data: data})
}

// enrich runs after a confirmed fast-path capture. It may suspend on
// calendar calls; all failures are logged and swallowed, and it never
// rewrites the document the user already saw confirmed.
func (s *Service) enrich(ctx context.Context, item *models.CaptureItem, res *Result) {
	if s.cal == nil || item.InMeeting() {
		return
	}
	events, err := s.cal.GetTodayEvents(ctx)
	if err != nil {
		s.logger.Warn("capture: enrichment calendar lookup failed", slog.String("error", err.Error()))
		return
	}
	ref := calendar.MeetingAt(events, item.Timestamp)
	if ref == nil {
		return
	}
	s.logger.Info("capture: meeting context detected",
		slog.String("meeting", ref.Title), slog.String("note_path", res.NotePath))
	s.notifyEnriched(map[string]string{
		"note_path": res.NotePath,
		"meeting":   ref.Title,
	})
}
