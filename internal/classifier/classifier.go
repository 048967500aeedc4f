// Package classifier is the AI fallback for captures no routing rule claims.
// It is a pure adapter around a text-completion capability: build a one-label
// prompt, map the label to a route decision, and degrade to nil on anything
// unexpected. No business logic lives here beyond response parsing.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// Caller is the external text-completion capability.
type Caller interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// maxPromptContent caps how much capture text is embedded in the prompt.
const maxPromptContent = 500

const promptTemplate = `Classify this captured note into exactly one category.

Note (%d chars%s):
%s

Categories:
TASK - something the user needs to do
MEETING_FOLLOWUP - an action item arising from the current meeting
THOUGHT - an idea, observation, or musing
REFERENCE - a link or material to read later

Reply with only the category name.`

// Classify asks the AI capability for a single label and maps it to a route
// decision. TASK and MEETING_FOLLOWUP become a task with a due date, filed to
// the meeting follow-up destination when the capture happened in a meeting.
// THOUGHT and REFERENCE become a plain thought. Any other response, or any
// call failure, yields nil so the caller falls back to the global default.
// Errors never escape this boundary.
func Classify(ctx context.Context, item *models.CaptureItem, caller Caller, logger *slog.Logger) *models.RouteDecision {
	if logger == nil {
		logger = slog.Default()
	}

	resp, err := caller.Complete(ctx, buildPrompt(item))
	if err != nil {
		logger.Warn("classifier: completion call failed", slog.String("error", err.Error()))
		return nil
	}

	label := normalizeLabel(resp)
	switch label {
	case "TASK", "MEETING_FOLLOWUP":
		dest := models.DestDailyThoughts
		if item.InMeeting() {
			dest = models.DestMeetingFollowup
		}
		return &models.RouteDecision{
			Destination: dest,
			Format:      models.FormatTask,
			AddDueDate:  true,
			RuleID:      "ai_fallback",
		}
	case "THOUGHT", "REFERENCE":
		return &models.RouteDecision{
			Destination: models.DestDailyThoughts,
			Format:      models.FormatThought,
			RuleID:      "ai_fallback",
		}
	default:
		logger.Debug("classifier: unrecognized label", slog.String("label", label))
		return nil
	}
}

func buildPrompt(item *models.CaptureItem) string {
	content := item.Content
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent] + "..."
	}
	meeting := ""
	if item.InMeeting() {
		meeting = ", captured during a meeting"
	}
	return fmt.Sprintf(promptTemplate, len(item.Content), meeting, content)
}

// normalizeLabel reduces a model response to the first uppercased token so
// chatty replies like "TASK." or "task - this is clearly a todo" still map.
func normalizeLabel(resp string) string {
	resp = strings.ToUpper(strings.TrimSpace(resp))
	fields := strings.FieldsFunc(resp, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z') && r != '_'
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
