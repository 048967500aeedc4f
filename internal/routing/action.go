package routing

import (
	"regexp"
	"strings"
)

// Action match modes.
const (
	MatchStartsWith = "starts_with"
	MatchContains   = "contains"
	MatchBoth       = "both"
)

// ActionConfig configures the action-item heuristic. Pure configuration; no
// behavior of its own.
type ActionConfig struct {
	Enabled                  bool     `yaml:"enabled" json:"enabled"`
	MatchMode                string   `yaml:"match_mode" json:"match_mode"`
	Verbs                    []string `yaml:"verbs" json:"verbs"`
	IncludeImperativePattern bool     `yaml:"include_imperative_pattern" json:"include_imperative_pattern"`
	IncludeShortContent      bool     `yaml:"include_short_content" json:"include_short_content"`
	ShortContentMaxChars     int      `yaml:"short_content_max_chars" json:"short_content_max_chars"`
}

var (
	// Verb-then-article shape: "book the room", "meet with legal".
	imperativeRe = regexp.MustCompile(`^[a-z]+\s+(the|a|an|with|to|for)\s+`)
	// Uppercase start, sentence-shaped, at most one terminal punctuation mark.
	sentenceShapeRe = regexp.MustCompile(`^[A-Z][^.!?]*[.!?]?$`)
	lowercaseRe     = regexp.MustCompile(`^[a-z]`)
	urlAnywhereRe   = regexp.MustCompile(`https?://`)
)

// LooksLikeActionItem reports whether content reads like something to do.
// Any one enabled heuristic firing makes the whole check true.
//
// The short-content branch is intentionally permissive: almost any short,
// single-line, non-URL capture ("call mom") counts as a task. That is the
// product's chosen default, not an oversight — do not tighten it here.
func LooksLikeActionItem(content string, cfg ActionConfig) bool {
	if !cfg.Enabled {
		return false
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return false
	}
	lower := strings.ToLower(trimmed)

	switch cfg.MatchMode {
	case MatchStartsWith:
		if startsWithVerb(lower, cfg.Verbs) {
			return true
		}
	case MatchContains:
		if containsVerb(lower, cfg.Verbs) {
			return true
		}
	case MatchBoth:
		if startsWithVerb(lower, cfg.Verbs) || containsVerb(lower, cfg.Verbs) {
			return true
		}
	}

	if cfg.IncludeImperativePattern && imperativeRe.MatchString(trimmed) {
		return true
	}

	if cfg.IncludeShortContent && isShortActionable(trimmed, cfg.ShortContentMaxChars) {
		return true
	}

	return false
}

// startsWithVerb checks whether the lowercased content begins with any
// configured verb.
func startsWithVerb(lower string, verbs []string) bool {
	for _, v := range verbs {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.HasPrefix(lower, v) {
			return true
		}
	}
	return false
}

// containsVerb checks verbs anywhere in the content. Multi-word phrases
// match as a direct substring or as a whitespace-tolerant word-boundary
// pattern ("follow   up"); single words require word boundaries.
func containsVerb(lower string, verbs []string) bool {
	for _, v := range verbs {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.Contains(v, " ") {
			if strings.Contains(lower, v) {
				return true
			}
			parts := strings.Fields(v)
			for i, p := range parts {
				parts[i] = regexp.QuoteMeta(p)
			}
			re, err := regexp.Compile(`\b` + strings.Join(parts, `\s+`) + `\b`)
			if err == nil && re.MatchString(lower) {
				return true
			}
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(v) + `\b`)
		if err == nil && re.MatchString(lower) {
			return true
		}
	}
	return false
}

// isShortActionable flags terse single-line captures under the character cap
// that are either sentence-shaped or start lowercase, and contain no URL.
func isShortActionable(trimmed string, maxChars int) bool {
	if maxChars <= 0 {
		return false
	}
	if len(trimmed) >= maxChars {
		return false
	}
	if strings.ContainsRune(trimmed, '\n') {
		return false
	}
	if urlAnywhereRe.MatchString(trimmed) {
		return false
	}
	return sentenceShapeRe.MatchString(trimmed) || lowercaseRe.MatchString(trimmed)
}
