package entity

import (
	"errors"
	"testing"

	"github.com/starford/ansuz/internal/models"
)

func person(name, path string) models.Entity {
	return models.Entity{Kind: models.EntityPerson, Name: name, Path: path}
}

func TestLink_NoEntitiesIsIdentity(t *testing.T) {
	content := "nothing to see here, not even Dana"
	if got := Link(content, nil); got != content {
		t.Errorf("Link with empty set changed content: %q", got)
	}
}

func TestLink_Simple(t *testing.T) {
	got := Link("call Dana today", []models.Entity{person("Dana", "people/dana")})
	want := "call [[people/dana|Dana]] today"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLink_LongestNameFirst(t *testing.T) {
	entities := []models.Entity{
		person("Dana", "people/dana"),
		person("Dana Scully", "people/dana-scully"),
	}
	got := Link("meet Dana Scully and Dana", entities)
	want := "meet [[people/dana-scully|Dana Scully]] and [[people/dana|Dana]]"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLink_NoDoubleWrapInsideExistingLink(t *testing.T) {
	entities := []models.Entity{
		person("Dana Scully", "people/dana-scully"),
		person("Dana", "people/dana"),
	}
	got := Link("ping Dana Scully", entities)
	want := "ping [[people/dana-scully|Dana Scully]]"
	if got != want {
		t.Errorf("got %q, want %q (short name re-matched inside link)", got, want)
	}
}

func TestLink_CaseInsensitiveKeepsCanonicalName(t *testing.T) {
	got := Link("talked to DANA about it", []models.Entity{person("Dana", "people/dana")})
	want := "talked to [[people/dana|Dana]] about it"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLink_WholeWordOnly(t *testing.T) {
	content := "the Danaher acquisition"
	if got := Link(content, []models.Entity{person("Dana", "people/dana")}); got != content {
		t.Errorf("substring must not be linked: %q", got)
	}
}

func TestLink_MultipleMentions(t *testing.T) {
	got := Link("Acme called; Acme wants a demo", []models.Entity{
		{Kind: models.EntityOrg, Name: "Acme", Path: "orgs/acme"},
	})
	want := "[[orgs/acme|Acme]] called; [[orgs/acme|Acme]] wants a demo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type stubLookup struct {
	entities []models.Entity
	err      error
}

func (s *stubLookup) FindEntitiesInContent(string) ([]models.Entity, error) {
	return s.entities, s.err
}

func TestLinkContent_LookupErrorReturnsOriginal(t *testing.T) {
	content := "call Dana"
	got, err := LinkContent(content, &stubLookup{err: errors.New("index closed")})
	if err == nil {
		t.Fatal("expected error")
	}
	if got != content {
		t.Errorf("content changed on error: %q", got)
	}
}

func TestLinkContent_UsesLookup(t *testing.T) {
	got, err := LinkContent("call Dana", &stubLookup{entities: []models.Entity{person("Dana", "people/dana")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "call [[people/dana|Dana]]" {
		t.Errorf("got %q", got)
	}
}
