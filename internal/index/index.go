package index

import (
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/parser"
)

// EntityIndex defines the lookup and maintenance operations of the entity
// index. Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type EntityIndex interface {
	UpsertFile(path, checksum string, ent *parser.EntityInfo) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	FindEntitiesInContent(content string) ([]models.Entity, error)
	Close() error
}

// Verify *DB satisfies EntityIndex at compile time.
var _ EntityIndex = (*DB)(nil)
