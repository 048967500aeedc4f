package routing

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Options carries the per-snapshot settings rule evaluation depends on.
type Options struct {
	CheckboxPrefix string
	Action         ActionConfig
	Logger         *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

var urlOnlyRe = regexp.MustCompile(`^https?://\S+$`)

// IsURL reports whether content is a bare URL.
func IsURL(content string) bool {
	return urlOnlyRe.MatchString(strings.TrimSpace(content))
}

// HasTaskCheckbox reports whether content starts with the configured task
// checkbox prefix (checked or not).
func HasTaskCheckbox(content, prefix string) bool {
	if prefix == "" {
		return false
	}
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, prefix) {
		return true
	}
	// Checked variant: "- [ ]" → "- [x]".
	checked := strings.Replace(prefix, "[ ]", "[x]", 1)
	return checked != prefix && strings.HasPrefix(trimmed, checked)
}

// ShouldFormatAsTask resolves the "auto" format for a capture: a declared
// task, an embedded checkbox, or anything the action-item heuristic flags.
func ShouldFormatAsTask(item *models.CaptureItem, opts Options) bool {
	if item.ContentType == models.ContentTask {
		return true
	}
	if HasTaskCheckbox(item.Content, opts.CheckboxPrefix) {
		return true
	}
	return LooksLikeActionItem(item.Content, opts.Action)
}

// Route evaluates rules in stored order and returns the decision of the
// first enabled rule whose predicates all hold, or nil when no rule matches
// (the caller then applies the global default or the AI fallback). Disabled
// and malformed rules are skipped; a rule with an invalid regex is treated
// as non-matching and logged, never fatal.
func Route(item *models.CaptureItem, rules []Rule, opts Options) *models.RouteDecision {
	for i := range rules {
		rule := &rules[i]
		if !rule.Enabled || rule.Match == nil || rule.Action == nil {
			continue
		}
		if !matches(item, rule, opts) {
			continue
		}

		format := rule.Action.Format
		if format == models.FormatAuto || format == "" {
			if ShouldFormatAsTask(item, opts) {
				format = models.FormatTask
			} else {
				format = models.FormatThought
			}
		}

		decision := &models.RouteDecision{
			Destination:   rule.Action.Destination,
			Format:        format,
			AddDueDate:    rule.Action.AddDueDate,
			DueDateOffset: rule.Action.DueDateOffset,
			RuleID:        rule.ID,
		}
		// Due dates are meaningless on non-task captures.
		if decision.Format != models.FormatTask {
			decision.AddDueDate = false
		}
		return decision
	}
	return nil
}

// matches evaluates the ANDed predicates of a rule's MatchSpec.
func matches(item *models.CaptureItem, rule *Rule, opts Options) bool {
	m := rule.Match
	content := item.Content
	lower := strings.ToLower(content)

	if len(m.ContentTypes) > 0 {
		found := false
		for _, ct := range m.ContentTypes {
			if item.ContentType == ct {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(m.ContentStartsWith) > 0 {
		found := false
		for _, p := range m.ContentStartsWith {
			if p != "" && strings.HasPrefix(lower, strings.ToLower(p)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if len(m.ContentIncludes) > 0 {
		found := false
		for _, p := range m.ContentIncludes {
			if p != "" && strings.Contains(lower, strings.ToLower(p)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if m.ContentRegex != "" {
		re, err := regexp.Compile(regexWithFlags(m.ContentRegex, m.RegexFlags))
		if err != nil {
			opts.logger().Warn("routing: invalid rule regex, rule skipped",
				slog.String("rule_id", rule.ID),
				slog.String("pattern", m.ContentRegex),
				slog.String("error", err.Error()))
			return false
		}
		if !re.MatchString(content) {
			return false
		}
	}

	if m.IsURL != nil && IsURL(content) != *m.IsURL {
		return false
	}
	if m.HasTaskCheckbox != nil && HasTaskCheckbox(content, opts.CheckboxPrefix) != *m.HasTaskCheckbox {
		return false
	}
	if m.ActionItem != nil && LooksLikeActionItem(content, opts.Action) != *m.ActionItem {
		return false
	}
	if m.InMeeting != nil && item.InMeeting() != *m.InMeeting {
		return false
	}
	if m.MinLength != nil && len(content) < *m.MinLength {
		return false
	}
	if m.MaxLength != nil && len(content) > *m.MaxLength {
		return false
	}

	return true
}

// regexWithFlags translates stored flag letters into Go inline flags.
// Only i, m, and s are meaningful here; anything else is ignored.
func regexWithFlags(pattern, flags string) string {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			inline.WriteRune(f)
		}
	}
	if inline.Len() == 0 {
		return pattern
	}
	return "(?" + inline.String() + ")" + pattern
}
