package index

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// UpsertFile records a vault file's checksum and replaces its entity-name
// rows within a transaction. ent is nil for non-entity notes: the file is
// still tracked (so sync can skip it by checksum) but contributes no names.
func (db *DB) UpsertFile(path, checksum string, ent *parser.EntityInfo) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	// Replace names: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM entity_names WHERE path = ?`, path)
	if ent != nil {
		stmt, err := tx.Prepare(`
			INSERT OR IGNORE INTO entity_names (name, name_lower, first_token, kind, path)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("index: prepare name insert: %w", err)
		}
		defer stmt.Close()

		names := append([]string{ent.Name}, ent.Aliases...)
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			lower := strings.ToLower(name)
			first := firstToken(lower)
			if first == "" {
				continue
			}
			if _, err := stmt.Exec(name, lower, first, string(ent.Kind), path); err != nil {
				return fmt.Errorf("index: insert name: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and its entity names.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, _ = tx.Exec(`DELETE FROM entity_names WHERE path = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every tracked file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// FindEntitiesInContent returns every indexed entity whose name (or alias)
// appears in content. Cost is proportional to the words in content, not the
// entities in the index: candidate rows are fetched by the first token of
// each name, then verified against the full text.
func (db *DB) FindEntitiesInContent(content string) ([]models.Entity, error) {
	tokens := contentTokens(content)
	if len(tokens) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tokens)), ",")
	args := make([]any, len(tokens))
	for i, tok := range tokens {
		args[i] = tok
	}

	rows, err := db.conn.Query(`
		SELECT name, name_lower, kind, path
		FROM entity_names
		WHERE first_token IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: find entities: %w", err)
	}
	defer rows.Close()

	contentLower := strings.ToLower(content)
	seen := make(map[string]struct{})
	var out []models.Entity
	for rows.Next() {
		var name, nameLower, kind, path string
		if err := rows.Scan(&name, &nameLower, &kind, &path); err != nil {
			return nil, err
		}
		if !containsWholeWord(contentLower, nameLower) {
			continue
		}
		key := nameLower + "\x00" + path
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Entity{
			Kind: models.EntityKind(kind),
			Name: name,
			Path: strings.TrimSuffix(path, ".md"),
		})
	}
	return out, rows.Err()
}

// firstToken returns the leading word of a lowercased name.
func firstToken(lower string) string {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// contentTokens returns the deduplicated lowercase words of content.
func contentTokens(content string) []string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// containsWholeWord reports whether needle occurs in haystack with
// non-alphanumeric characters (or string edges) on both sides.
func containsWholeWord(haystack, needle string) bool {
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(needle)
		leftOK := start == 0 || !isWordByte(haystack[start-1])
		rightOK := end == len(haystack) || !isWordByte(haystack[end])
		if leftOK && rightOK {
			return true
		}
		from = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
