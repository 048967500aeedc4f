package routing

import (
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func testOptions() Options {
	return Options{
		CheckboxPrefix: "- [ ]",
		Action: ActionConfig{
			Enabled:              true,
			MatchMode:            MatchStartsWith,
			Verbs:                []string{"call", "email", "book", "send"},
			IncludeShortContent:  true,
			ShortContentMaxChars: 100,
		},
	}
}

func capture(content string) *models.CaptureItem {
	return &models.CaptureItem{Content: content, ContentType: models.ContentUnknown}
}

func TestRoute_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{
			ID:      "links",
			Enabled: true,
			Match:   &MatchSpec{IsURL: boolPtr(true)},
			Action:  &RuleAction{Destination: models.DestDailyEnd, Format: models.FormatThought},
		},
		{
			ID:      "catch-all",
			Enabled: true,
			Match:   &MatchSpec{},
			Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatAuto},
		},
	}

	got := Route(capture("https://example.com/post"), rules, testOptions())
	if got == nil {
		t.Fatal("expected a decision")
	}
	if got.RuleID != "links" {
		t.Errorf("RuleID = %q, want %q", got.RuleID, "links")
	}
	if got.Destination != models.DestDailyEnd {
		t.Errorf("Destination = %q, want %q", got.Destination, models.DestDailyEnd)
	}
}

func TestRoute_DisablingRulePromotesNextMatch(t *testing.T) {
	rules := []Rule{
		{
			ID:      "links",
			Enabled: true,
			Match:   &MatchSpec{IsURL: boolPtr(true)},
			Action:  &RuleAction{Destination: models.DestDailyEnd, Format: models.FormatThought},
		},
		{
			ID:      "catch-all",
			Enabled: true,
			Match:   &MatchSpec{},
			Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought},
		},
	}

	item := capture("https://example.com/post")
	first := Route(item, rules, testOptions())
	if first == nil || first.RuleID != "links" {
		t.Fatalf("baseline decision = %+v, want rule links", first)
	}

	rules[0].Enabled = false
	second := Route(item, rules, testOptions())
	if second == nil || second.RuleID != "catch-all" {
		t.Fatalf("after disable decision = %+v, want rule catch-all", second)
	}
}

func TestRoute_EmptyMatchIsCatchAll(t *testing.T) {
	rules := []Rule{{
		ID:      "everything",
		Enabled: true,
		Match:   &MatchSpec{},
		Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought},
	}}
	if got := Route(capture("whatever text at all"), rules, testOptions()); got == nil {
		t.Fatal("empty match block must match everything")
	}
}

func TestRoute_SkipsMalformedRules(t *testing.T) {
	rules := []Rule{
		{ID: "no-match", Enabled: true, Action: &RuleAction{Destination: models.DestDailyEnd, Format: models.FormatThought}},
		{ID: "no-action", Enabled: true, Match: &MatchSpec{}},
		{
			ID:      "ok",
			Enabled: true,
			Match:   &MatchSpec{},
			Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought},
		},
	}
	got := Route(capture("anything"), rules, testOptions())
	if got == nil || got.RuleID != "ok" {
		t.Fatalf("decision = %+v, want rule ok", got)
	}
}

func TestRoute_InvalidRegexIsNonMatching(t *testing.T) {
	rules := []Rule{
		{
			ID:      "broken",
			Enabled: true,
			Match:   &MatchSpec{ContentRegex: "([unclosed"},
			Action:  &RuleAction{Destination: models.DestDailyEnd, Format: models.FormatThought},
		},
		{
			ID:      "fallback",
			Enabled: true,
			Match:   &MatchSpec{},
			Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought},
		},
	}
	got := Route(capture("anything"), rules, testOptions())
	if got == nil || got.RuleID != "fallback" {
		t.Fatalf("decision = %+v, want rule fallback", got)
	}
}

func TestRoute_NoMatchReturnsNil(t *testing.T) {
	rules := []Rule{{
		ID:      "urls-only",
		Enabled: true,
		Match:   &MatchSpec{IsURL: boolPtr(true)},
		Action:  &RuleAction{Destination: models.DestDailyEnd, Format: models.FormatThought},
	}}
	if got := Route(capture("plain text"), rules, testOptions()); got != nil {
		t.Fatalf("decision = %+v, want nil", got)
	}
}

func TestRoute_RegexWithCaseFlag(t *testing.T) {
	rules := []Rule{{
		ID:      "meeting-notes",
		Enabled: true,
		Match:   &MatchSpec{ContentRegex: `^meeting notes`, RegexFlags: "i"},
		Action:  &RuleAction{Destination: models.DestMeetingFollowup, Format: models.FormatThought},
	}}
	got := Route(capture("Meeting Notes from standup"), rules, testOptions())
	if got == nil || got.RuleID != "meeting-notes" {
		t.Fatalf("decision = %+v, want rule meeting-notes", got)
	}
}

func TestRoute_AutoFormatResolution(t *testing.T) {
	rules := []Rule{{
		ID:      "catch-all",
		Enabled: true,
		Match:   &MatchSpec{},
		Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatAuto, AddDueDate: true},
	}}
	opts := testOptions()

	tests := []struct {
		name       string
		content    string
		wantFormat models.Format
		wantDue    bool
	}{
		{"verb start becomes task", "call the plumber about the leak", models.FormatTask, true},
		{"checkbox becomes task", "- [ ] review the budget numbers", models.FormatTask, true},
		{"long musing stays thought", "I wonder whether the roadmap still makes sense given what we learned in the last two quarterly reviews. Probably worth revisiting the assumptions before planning starts again in earnest next month!? Honestly not sure.", models.FormatThought, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Route(capture(tt.content), rules, opts)
			if got == nil {
				t.Fatal("expected a decision")
			}
			if got.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", got.Format, tt.wantFormat)
			}
			if got.AddDueDate != tt.wantDue {
				t.Errorf("AddDueDate = %v, want %v", got.AddDueDate, tt.wantDue)
			}
		})
	}
}

func TestRoute_DueDateForcedOffForThoughts(t *testing.T) {
	rules := []Rule{{
		ID:      "misconfigured",
		Enabled: true,
		Match:   &MatchSpec{},
		Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought, AddDueDate: true},
	}}
	got := Route(capture("just a passing idea"), rules, testOptions())
	if got == nil {
		t.Fatal("expected a decision")
	}
	if got.AddDueDate {
		t.Error("AddDueDate must be forced off for thought format")
	}
}

func TestRoute_Predicates(t *testing.T) {
	opts := testOptions()
	tests := []struct {
		name    string
		match   MatchSpec
		item    *models.CaptureItem
		matched bool
	}{
		{
			"content type in list",
			MatchSpec{ContentTypes: []models.ContentType{models.ContentLink, models.ContentTask}},
			&models.CaptureItem{Content: "x", ContentType: models.ContentLink},
			true,
		},
		{
			"content type not in list",
			MatchSpec{ContentTypes: []models.ContentType{models.ContentLink}},
			&models.CaptureItem{Content: "x", ContentType: models.ContentThought},
			false,
		},
		{
			"starts-with is case-insensitive",
			MatchSpec{ContentStartsWith: []string{"todo:"}},
			capture("TODO: ship the release"),
			true,
		},
		{
			"includes is case-insensitive",
			MatchSpec{ContentIncludes: []string{"urgent"}},
			capture("this is URGENT please"),
			true,
		},
		{
			"min length excludes short",
			MatchSpec{MinLength: intPtr(20)},
			capture("short"),
			false,
		},
		{
			"max length excludes long",
			MatchSpec{MaxLength: intPtr(5)},
			capture("far too long for this rule"),
			false,
		},
		{
			"checkbox predicate",
			MatchSpec{HasTaskCheckbox: boolPtr(true)},
			capture("- [ ] do the thing"),
			true,
		},
		{
			"in meeting requires meeting context",
			MatchSpec{InMeeting: boolPtr(true)},
			capture("note during standup"),
			false,
		},
		{
			"in meeting with context",
			MatchSpec{InMeeting: boolPtr(true)},
			&models.CaptureItem{
				Content:     "note during standup",
				ContentType: models.ContentUnknown,
				Meeting:     &models.MeetingRef{Title: "Standup", Anchor: "standup"},
			},
			true,
		},
		{
			"action item predicate",
			MatchSpec{ActionItem: boolPtr(true)},
			capture("email finance about the invoice"),
			true,
		},
		{
			"conjunction of predicates",
			MatchSpec{ContentIncludes: []string{"invoice"}, IsURL: boolPtr(false), MinLength: intPtr(10)},
			capture("email finance about the invoice"),
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := []Rule{{
				ID:      "probe",
				Enabled: true,
				Match:   &tt.match,
				Action:  &RuleAction{Destination: models.DestDailyThoughts, Format: models.FormatThought},
			}}
			got := Route(tt.item, rules, opts)
			if (got != nil) != tt.matched {
				t.Errorf("matched = %v, want %v", got != nil, tt.matched)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"https://example.com", true},
		{"http://example.com/a/b?q=1", true},
		{"  https://example.com  ", true},
		{"check https://example.com out", false},
		{"ftp://example.com", false},
		{"not a url", false},
	}
	for _, tt := range tests {
		if got := IsURL(tt.content); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestHasTaskCheckbox(t *testing.T) {
	if !HasTaskCheckbox("- [ ] buy milk", "- [ ]") {
		t.Error("unchecked box not detected")
	}
	if !HasTaskCheckbox("- [x] buy milk", "- [ ]") {
		t.Error("checked box not detected")
	}
	if HasTaskCheckbox("buy milk", "- [ ]") {
		t.Error("plain text detected as checkbox")
	}
	if HasTaskCheckbox("- [ ] buy milk", "") {
		t.Error("empty prefix must never match")
	}
}
