// Package parser extracts frontmatter and entity metadata from Markdown
// vault notes. The entity index uses it to decide whether a note describes a
// known person or organization and under which names it can be mentioned.
package parser

import (
	"bytes"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/ansuz/internal/models"
)

// Result holds the output of parsing a Markdown file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Entity      *EntityInfo // nil when the note does not describe an entity
}

// EntityInfo describes a person or organization note.
type EntityInfo struct {
	Kind    models.EntityKind
	Name    string   // primary display name
	Aliases []string // additional names the entity can be mentioned by
}

// Parse extracts frontmatter, body, title, and entity metadata from raw
// Markdown bytes. notePath is the vault-relative path; it supplies the
// fallback name (filename stem) and the folder-based entity kind.
func Parse(notePath string, data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	title := deriveTitle(fm, body)

	res := &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       title,
	}

	if kind := entityKind(notePath, fm); kind != "" {
		name := title
		if name == "" {
			name = stem(notePath)
		}
		res.Entity = &EntityInfo{
			Kind:    kind,
			Name:    name,
			Aliases: extractAliases(fm),
		}
	}

	return res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	// Find end delimiter.
	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter — treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	// Body starts after closing delimiter line.
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML — return body only, no error.
		return nil, string(data), nil
	}

	return fm, body, nil
}

// entityKind decides whether a note describes a person or organization.
// Frontmatter "type" wins; otherwise the top-level folder decides.
func entityKind(notePath string, fm map[string]interface{}) models.EntityKind {
	if fm != nil {
		if raw, ok := fm["type"]; ok {
			if s, ok := raw.(string); ok {
				switch strings.ToLower(strings.TrimSpace(s)) {
				case "person", "people":
					return models.EntityPerson
				case "org", "organization", "company":
					return models.EntityOrg
				}
			}
		}
	}

	top := notePath
	if i := strings.IndexByte(top, '/'); i >= 0 {
		top = top[:i]
	}
	switch strings.ToLower(top) {
	case "people":
		return models.EntityPerson
	case "orgs", "organizations", "companies":
		return models.EntityOrg
	}
	return ""
}

// extractAliases collects the frontmatter "aliases" list.
func extractAliases(fm map[string]interface{}) []string {
	if fm == nil {
		return nil
	}
	raw, ok := fm["aliases"]
	if !ok {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(list))
	var out []string
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if fm != nil {
		if t, ok := fm["title"]; ok {
			if s, ok := t.(string); ok && s != "" {
				return s
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// stem returns the filename without directory or .md extension.
func stem(notePath string) string {
	base := path.Base(notePath)
	return strings.TrimSuffix(base, ".md")
}
