package mcpserver

// CaptureContract describes the capture pipeline semantics for LLM
// consumers of the capture_text tool.
const CaptureContract = `# Ansuz Capture Contract

Every piece of text sent to ` + "`" + `capture_text` + "`" + ` runs through the same pipeline.

## Pipeline

1. **Trigger check.** If the content (after stripping a leading checkbox,
   bullet, or HH:MM timestamp) starts with a configured trigger phrase, a
   dedicated handler takes over and ordinary routing is skipped entirely:
   - ` + "`" + `reference` + "`" + ` phrases (e.g. "read later") file a link under the references
     heading of today's note.
   - ` + "`" + `followup` + "`" + ` phrases create a task with an inferred due date ("tomorrow",
     "next week", "in 3 days", "on 2026-09-01").
   - ` + "`" + `research` + "`" + ` phrases write a research task and may append an AI summary
     later.
2. **Rule routing.** Otherwise the ordered rule list is evaluated; the first
   enabled rule whose predicates all hold decides destination and format.
3. **Default.** With no match, the global default applies. Format ` + "`" + `auto` + "`" + `
   resolves to ` + "`" + `task` + "`" + ` for declared tasks, checkbox lines, and short
   actionable text, otherwise ` + "`" + `thought` + "`" + `.

## Destinations

- ` + "`" + `meeting_followup` + "`" + ` — inserted after the current meeting's anchor line.
- ` + "`" + `daily_thoughts` + "`" + ` — appended under the thoughts heading.
- ` + "`" + `daily_end` + "`" + ` — appended at the end of the note.

## Formatting

- Tasks: ` + "`" + `- [ ] <content> 📅 <YYYY-MM-DD>` + "`" + ` (due date only when configured).
- Thoughts: ` + "`" + `- <HH:MM> <content>` + "`" + `.
- Known people and organizations are rewritten as ` + "`" + `[[path|Name]]` + "`" + ` wikilinks.

## Guarantees

- The confirmed write never waits on AI or network availability.
- Filing is append-only; identical captures are filed twice, not merged.
- An empty capture (after trimming) is rejected before anything is written.
`
