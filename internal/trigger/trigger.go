// Package trigger recognizes explicit command prefixes (reference save,
// follow-up, research) at the start of normalized capture content.
package trigger

import (
	"regexp"
	"sort"
	"strings"
)

// Kind identifies which trigger fired.
type Kind string

// Trigger kinds, in detection priority order.
const (
	KindReference Kind = "reference"
	KindFollowup  Kind = "followup"
	KindResearch  Kind = "research"
)

// PhraseSet is one trigger's configuration: an enable flag and the phrases
// that invoke it.
type PhraseSet struct {
	Enabled bool     `yaml:"enabled" json:"enabled"`
	Phrases []string `yaml:"phrases" json:"phrases"`
}

// Config gates each trigger kind independently. CheckboxPrefix is the task
// checkbox token stripped during normalization (e.g. "- [ ]").
type Config struct {
	CheckboxPrefix string    `yaml:"checkbox_prefix" json:"checkbox_prefix"`
	Reference      PhraseSet `yaml:"reference" json:"reference"`
	Followup       PhraseSet `yaml:"followup" json:"followup"`
	Research       PhraseSet `yaml:"research" json:"research"`
}

// Match is a detected trigger: the kind, the content with the phrase (plus a
// trailing colon and whitespace) stripped, and, for reference triggers, the
// leading URL if the remainder starts with one.
type Match struct {
	Kind Kind
	Rest string
	URL  string
}

var (
	// Leading "HH:MM" token, optionally followed by a dash, as pasted from
	// transcripts. Stripped before phrase matching so "09:36 - follow up
	// with Dana" still matches.
	timestampRe = regexp.MustCompile(`^\d{1,2}:\d{2}\s*(?:[-–—]\s*)?`)
	bulletRe    = regexp.MustCompile(`^[-*•]\s+`)
	urlRe       = regexp.MustCompile(`^https?://\S+`)
)

// Normalize strips the configured checkbox prefix, a leading bullet glyph,
// and a leading HH:MM timestamp token. It must run before phrase matching.
func Normalize(content, checkboxPrefix string) string {
	s := strings.TrimSpace(content)
	if checkboxPrefix != "" && strings.HasPrefix(s, checkboxPrefix) {
		s = strings.TrimSpace(s[len(checkboxPrefix):])
	}
	s = bulletRe.ReplaceAllString(s, "")
	s = timestampRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Detect checks content against the configured triggers in priority order
// reference > followup > research. Returns nil when nothing fires.
func Detect(content string, cfg Config) *Match {
	norm := Normalize(content, cfg.CheckboxPrefix)
	if norm == "" {
		return nil
	}

	if cfg.Reference.Enabled {
		if rest, ok := stripPhrase(norm, cfg.Reference.Phrases); ok {
			return &Match{Kind: KindReference, Rest: rest, URL: urlRe.FindString(rest)}
		}
	}
	if cfg.Followup.Enabled {
		if rest, ok := stripPhrase(norm, cfg.Followup.Phrases); ok {
			return &Match{Kind: KindFollowup, Rest: rest}
		}
	}
	if cfg.Research.Enabled {
		if rest, ok := stripPhrase(norm, cfg.Research.Phrases); ok {
			return &Match{Kind: KindResearch, Rest: rest}
		}
	}
	return nil
}

// stripPhrase matches the longest configured phrase at the start of s,
// case-insensitively, and returns the remainder with a following colon and
// surrounding whitespace removed.
func stripPhrase(s string, phrases []string) (string, bool) {
	re := phraseRegexp(phrases)
	if re == nil {
		return "", false
	}
	loc := re.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	rest := strings.TrimLeft(s[loc[1]:], " \t")
	rest = strings.TrimPrefix(rest, ":")
	return strings.TrimSpace(rest), true
}

// phraseRegexp builds an anchored, case-insensitive alternation over the
// phrases, longest first so "follow up" does not shadow "follow up on".
// A word-boundary suffix is added only when the phrase ends in an
// alphanumeric character, so phrases like "Ref:" match without one.
func phraseRegexp(phrases []string) *regexp.Regexp {
	var clean []string
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p != "" {
			clean = append(clean, p)
		}
	}
	if len(clean) == 0 {
		return nil
	}
	sort.SliceStable(clean, func(i, j int) bool { return len(clean[i]) > len(clean[j]) })

	alts := make([]string, len(clean))
	for i, p := range clean {
		alt := regexp.QuoteMeta(p)
		if endsAlphanumeric(p) {
			alt += `\b`
		}
		alts[i] = alt
	}
	re, err := regexp.Compile(`(?i)^(?:` + strings.Join(alts, "|") + `)`)
	if err != nil {
		return nil
	}
	return re
}

func endsAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	b := s[len(s)-1]
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
