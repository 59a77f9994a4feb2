package query

import (
	"context"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
)

// Finder resolves the candidate set of one clause. The SQLite character
// repository satisfies it with indexed lookups.
type Finder interface {
	WhereNameEqualFold(ctx context.Context, name string) ([]models.Character, error)
	WherePropertyKey(ctx context.Context, key string) ([]models.Character, error)
	WhereRelationLabel(ctx context.Context, label string) ([]models.Character, error)
}

// SliceFinder answers lookups by scanning an in-memory slice.
type SliceFinder []models.Character

func (f SliceFinder) WhereNameEqualFold(_ context.Context, name string) ([]models.Character, error) {
	return f.filter(func(c *models.Character) bool {
		return models.Fold(c.Name) == models.Fold(name)
	}), nil
}

func (f SliceFinder) WherePropertyKey(_ context.Context, key string) ([]models.Character, error) {
	return f.filter(func(c *models.Character) bool {
		_, ok := c.Property(key)
		return ok
	}), nil
}

func (f SliceFinder) WhereRelationLabel(_ context.Context, label string) ([]models.Character, error) {
	return f.filter(func(c *models.Character) bool {
		for _, r := range c.Relations {
			if models.Fold(r.Label) == models.Fold(label) {
				return true
			}
		}
		return false
	}), nil
}

func (f SliceFinder) filter(keep func(*models.Character) bool) []models.Character {
	var out []models.Character
	for i := range f {
		if keep(&f[i]) {
			out = append(out, f[i])
		}
	}
	return out
}
