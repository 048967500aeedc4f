// Package daily resolves and bootstraps day-keyed notes. Every capture
// ultimately lands in the note for its calendar day; this package owns the
// path convention and the skeleton a fresh note starts from.
package daily

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/storage"
)

// Config is the day-note naming convention.
type Config struct {
	// Dir is the vault-relative directory holding day notes, e.g. "daily".
	Dir string
	// Layout is the time layout of the filename stem, e.g. "2006-01-02".
	Layout string
	// ThoughtsHeading is the full heading line seeded into new notes.
	ThoughtsHeading string
}

// Notes resolves day documents against the vault.
type Notes struct {
	provider storage.Provider
	cfg      Config
}

// NewNotes wires the resolver to a vault provider.
func NewNotes(provider storage.Provider, cfg Config) *Notes {
	if cfg.Layout == "" {
		cfg.Layout = "2006-01-02"
	}
	return &Notes{provider: provider, cfg: cfg}
}

// Path returns the vault-relative path of the note for day.
func (n *Notes) Path(day time.Time) string {
	return path.Join(n.cfg.Dir, day.Format(n.cfg.Layout)+".md")
}

// Read returns the note for day, or ErrNoDailyNote when it does not exist.
func (n *Notes) Read(day time.Time) (string, error) {
	data, err := n.provider.Read(n.Path(day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("daily: %s: %w", n.Path(day), apperr.ErrNoDailyNote)
		}
		return "", fmt.Errorf("daily: read %s: %w", n.Path(day), err)
	}
	return string(data), nil
}

// ReadOrCreate returns the note for day, creating it from the skeleton when
// absent. The create is a plain write; two racing first captures of the day
// both write the skeleton and last writer wins, which is fine because the
// skeleton is identical.
func (n *Notes) ReadOrCreate(day time.Time) (string, error) {
	doc, err := n.Read(day)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, apperr.ErrNoDailyNote) {
		return "", err
	}

	doc = n.Skeleton(day)
	if werr := n.provider.Write(n.Path(day), []byte(doc)); werr != nil {
		return "", fmt.Errorf("daily: create %s: %w", n.Path(day), werr)
	}
	return doc, nil
}

// Write replaces the note for day.
func (n *Notes) Write(day time.Time, doc string) error {
	if err := n.provider.Write(n.Path(day), []byte(doc)); err != nil {
		return fmt.Errorf("daily: write %s: %w", n.Path(day), err)
	}
	return nil
}

// Skeleton is the content a fresh day note starts from.
func (n *Notes) Skeleton(day time.Time) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(day.Format("2006-01-02"))
	b.WriteString("\n")
	if n.cfg.ThoughtsHeading != "" {
		b.WriteString("\n")
		b.WriteString(n.cfg.ThoughtsHeading)
		b.WriteString("\n")
	}
	return b.String()
}
