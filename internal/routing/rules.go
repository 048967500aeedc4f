// Package routing evaluates user-authored match/action rules against
// captures. Rules are plain data — a tiny declarative DSL evaluated by pure
// predicate functions, never dynamically executed code. Order is
// load-bearing: the first enabled matching rule wins, and a rule with an
// empty match block matches everything (the intended catch-all idiom).
package routing

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/ansuz/internal/models"
)

// Rule is one user-authored routing rule.
type Rule struct {
	ID      string      `yaml:"id" json:"id"`
	Name    string      `yaml:"name" json:"name"`
	Enabled bool        `yaml:"enabled" json:"enabled"`
	Match   *MatchSpec  `yaml:"match" json:"match"`
	Action  *RuleAction `yaml:"action" json:"action"`
}

// MatchSpec is a conjunction of optional predicates. Unset fields do not
// constrain the match; within a list field membership is ORed.
type MatchSpec struct {
	ContentTypes      []models.ContentType `yaml:"content_types" json:"content_types,omitempty"`
	ContentStartsWith []string             `yaml:"content_starts_with" json:"content_starts_with,omitempty"`
	ContentIncludes   []string             `yaml:"content_includes" json:"content_includes,omitempty"`
	ContentRegex      string               `yaml:"content_regex" json:"content_regex,omitempty"`
	RegexFlags        string               `yaml:"regex_flags" json:"regex_flags,omitempty"`
	IsURL             *bool                `yaml:"is_url" json:"is_url,omitempty"`
	HasTaskCheckbox   *bool                `yaml:"has_task_checkbox" json:"has_task_checkbox,omitempty"`
	ActionItem        *bool                `yaml:"action_item" json:"action_item,omitempty"`
	InMeeting         *bool                `yaml:"in_meeting" json:"in_meeting,omitempty"`
	MinLength         *int                 `yaml:"min_length" json:"min_length,omitempty"`
	MaxLength         *int                 `yaml:"max_length" json:"max_length,omitempty"`
}

// RuleAction says where and how a matched capture is filed.
type RuleAction struct {
	Destination   models.Destination `yaml:"destination" json:"destination"`
	Format        models.Format      `yaml:"format" json:"format"`
	AddDueDate    bool               `yaml:"add_due_date" json:"add_due_date"`
	DueDateOffset *int               `yaml:"due_date_offset" json:"due_date_offset,omitempty"`
}

// Validate checks the rule's declarative fields. Regex validity is not
// checked here: a rule with a bad pattern is skipped at evaluation time so
// one bad rule cannot break the engine.
func (r Rule) Validate() error {
	if err := validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required),
		validation.Field(&r.Match, validation.Required),
		validation.Field(&r.Action, validation.Required),
	); err != nil {
		return err
	}
	return validation.ValidateStruct(r.Action,
		validation.Field(&r.Action.Destination, validation.Required, validation.In(
			models.DestMeetingFollowup, models.DestDailyThoughts, models.DestDailyEnd)),
		validation.Field(&r.Action.Format, validation.Required, validation.In(
			models.FormatAuto, models.FormatTask, models.FormatThought)),
	)
}
