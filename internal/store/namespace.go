package store

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/client/repositories/characters"
	"github.com/dmitrijs2005/charkeeper/internal/client/repositories/collectioninfo"
)

// Namespace is an open handle on one collection database.
type Namespace struct {
	Name string

	db         *sql.DB
	info       collectioninfo.Repository
	characters characters.Repository
}

// InfoRepo exposes the metadata record.
func (n *Namespace) InfoRepo() collectioninfo.Repository { return n.info }

// CharacterRepo exposes the character records.
func (n *Namespace) CharacterRepo() characters.Repository { return n.characters }

// Info returns the metadata record, or nil when none has been written.
func (n *Namespace) Info(ctx context.Context) (*models.CollectionInfo, error) {
	return n.info.Get(ctx)
}

// Characters returns every character ordered by id.
func (n *Namespace) Characters(ctx context.Context) ([]models.Character, error) {
	return n.characters.ToArray(ctx)
}

// Close releases the database handle.
func (n *Namespace) Close() error {
	return n.db.Close()
}
