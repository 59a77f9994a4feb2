package characters

import (
	"context"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
)

// Repository describes CRUD and lookup operations for characters.
type Repository interface {
	// ToArray returns every character ordered by id.
	ToArray(ctx context.Context) ([]models.Character, error)

	// Get returns one character or common.ErrCharacterNotFound.
	Get(ctx context.Context, id int64) (*models.Character, error)

	// Add inserts c and returns its id. A non-zero c.ID is kept verbatim.
	Add(ctx context.Context, c *models.Character) (int64, error)

	// Update replaces the stored record with c (matched by c.ID).
	Update(ctx context.Context, c *models.Character) error

	// Delete removes a character and its child rows.
	Delete(ctx context.Context, id int64) error

	WhereNameEqualFold(ctx context.Context, name string) ([]models.Character, error)
	WherePropertyKey(ctx context.Context, key string) ([]models.Character, error)
	WhereRelationLabel(ctx context.Context, label string) ([]models.Character, error)
	WhereTag(ctx context.Context, tag string) ([]models.Character, error)
	AnyOf(ctx context.Context, ids []int64) ([]models.Character, error)
}
