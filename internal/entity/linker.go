// Package entity rewrites known people and organization names in capture
// content into wikilinks, using the entity index as a read-only lookup.
package entity

import (
	"regexp"
	"sort"

	"github.com/starford/ansuz/internal/models"
)

// Lookup is the external capability that finds known entities mentioned in
// text. Cost is proportional to the words in the text, not the entities in
// the index.
type Lookup interface {
	FindEntitiesInContent(content string) ([]models.Entity, error)
}

var wikilinkRe = regexp.MustCompile(`\[\[.*?\]\]`)

// LinkContent looks up entities mentioned in content and replaces each
// mention with a wikilink. On lookup failure the content is returned
// unchanged alongside the error.
func LinkContent(content string, lookup Lookup) (string, error) {
	entities, err := lookup.FindEntitiesInContent(content)
	if err != nil {
		return content, err
	}
	return Link(content, entities), nil
}

// Link replaces whole-word, case-insensitive mentions of each entity's name
// with "[[path|Name]]". Entities are processed longest-name-first so a short
// name ("Dana") cannot partially shadow a longer one ("Dana Scully"), and
// text already inside a wikilink is never re-matched.
func Link(content string, entities []models.Entity) string {
	if len(entities) == 0 {
		return content
	}

	sorted := make([]models.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Name) > len(sorted[j].Name)
	})

	for _, e := range sorted {
		if e.Name == "" || e.Path == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(e.Name) + `\b`)
		if err != nil {
			continue
		}
		content = replaceOutsideLinks(content, re, "[["+e.Path+"|"+e.Name+"]]")
	}
	return content
}

// replaceOutsideLinks substitutes every match of re in content that does not
// fall inside an existing [[wikilink]] span. Replacements from earlier
// (longer) entities therefore shield their display text from later ones.
func replaceOutsideLinks(content string, re *regexp.Regexp, replacement string) string {
	matches := re.FindAllStringIndex(content, -1)
	if matches == nil {
		return content
	}
	links := wikilinkRe.FindAllStringIndex(content, -1)

	var out []byte
	last := 0
	for _, m := range matches {
		if insideAny(m[0], links) {
			continue
		}
		out = append(out, content[last:m[0]]...)
		out = append(out, replacement...)
		last = m[1]
	}
	out = append(out, content[last:]...)
	return string(out)
}

func insideAny(pos int, ranges [][]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
