package index

import (
	"os"
	"testing"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM files`).Scan(&count); err != nil {
		t.Fatalf("files table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM entity_names`).Scan(&count); err != nil {
		t.Fatalf("entity_names table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	ent := &parser.EntityInfo{Kind: models.EntityPerson, Name: "Dana Scully", Aliases: []string{"Dana"}}
	if err := db.UpsertFile("people/dana.md", "abc123", ent); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}
	cs, err := db.GetChecksum("people/dana.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestFindEntitiesInContent(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("people/dana.md", "1", &parser.EntityInfo{Kind: models.EntityPerson, Name: "Dana Scully", Aliases: []string{"Dana"}})
	_ = db.UpsertFile("orgs/acme.md", "2", &parser.EntityInfo{Kind: models.EntityOrg, Name: "Acme Corp"})
	_ = db.UpsertFile("daily/2026-08-25.md", "3", nil)

	found, err := db.FindEntitiesInContent("call Dana Scully about the Acme Corp renewal")
	if err != nil {
		t.Fatalf("FindEntitiesInContent: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("found = %+v, want Dana Scully, Dana, Acme Corp", found)
	}
	paths := map[string]bool{}
	for _, e := range found {
		paths[e.Path] = true
	}
	if !paths["people/dana"] || !paths["orgs/acme"] {
		t.Errorf("unexpected paths: %+v", found)
	}
}

func TestFindEntities_WholeWordOnly(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("people/dana.md", "1", &parser.EntityInfo{Kind: models.EntityPerson, Name: "Dana"})

	found, err := db.FindEntitiesInContent("the Danaher acquisition")
	if err != nil {
		t.Fatalf("FindEntitiesInContent: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("substring match should not count: %+v", found)
	}
}

func TestFindEntities_CaseInsensitive(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("orgs/acme.md", "1", &parser.EntityInfo{Kind: models.EntityOrg, Name: "Acme Corp"})

	found, err := db.FindEntitiesInContent("research ACME CORP tomorrow")
	if err != nil {
		t.Fatalf("FindEntitiesInContent: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Acme Corp" {
		t.Errorf("found = %+v, want the stored display name", found)
	}
}

func TestFindEntities_EmptyContent(t *testing.T) {
	db := testDB(t)
	found, err := db.FindEntitiesInContent("   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil, got %+v", found)
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("people/del.md", "x", &parser.EntityInfo{Kind: models.EntityPerson, Name: "Del Person"})

	if err := db.DeleteFile("people/del.md"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	cs, _ := db.GetChecksum("people/del.md")
	if cs != "" {
		t.Errorf("deleted file still has checksum %q", cs)
	}
	found, _ := db.FindEntitiesInContent("ping Del Person")
	if len(found) != 0 {
		t.Errorf("names should be removed with the file: %+v", found)
	}
}

func TestUpsertReplacesNames(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertFile("people/p.md", "1", &parser.EntityInfo{Kind: models.EntityPerson, Name: "Old Name"})
	_ = db.UpsertFile("people/p.md", "2", &parser.EntityInfo{Kind: models.EntityPerson, Name: "New Name"})

	if found, _ := db.FindEntitiesInContent("Old Name"); len(found) != 0 {
		t.Error("old name should be removed on upsert")
	}
	if found, _ := db.FindEntitiesInContent("New Name"); len(found) != 1 {
		t.Error("new name should exist")
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}
