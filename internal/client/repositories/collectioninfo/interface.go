package collectioninfo

import (
	"context"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
)

// Repository reads and writes the collection metadata record.
type Repository interface {
	// Get returns the stored record, or nil when the namespace has none yet.
	Get(ctx context.Context) (*models.CollectionInfo, error)

	// Add writes the record. It fails if one already exists.
	Add(ctx context.Context, info *models.CollectionInfo) error

	// Update overwrites every field of the existing record.
	Update(ctx context.Context, info *models.CollectionInfo) error

	// Touch sets updated_at without changing anything else.
	Touch(ctx context.Context, at time.Time) error
}
