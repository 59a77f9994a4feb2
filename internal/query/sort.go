package query

import (
	"sort"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"golang.org/x/text/collate"
)

// Sort orders list in place. Strings use locale-aware collation and empty
// values always go last; timestamps compare by instant. The sort is stable.
func (e *Evaluator) Sort(list []models.Character, p SortParam) {
	if p.Type == "" {
		p = DefaultSort
	}
	desc := p.Order == Desc

	switch p.Type {
	case SortCreatedAt, SortUpdatedAt:
		at := func(c *models.Character) time.Time {
			if p.Type == SortUpdatedAt {
				return c.UpdatedAt
			}
			return c.CreatedAt
		}
		sort.SliceStable(list, func(i, j int) bool {
			a, b := at(&list[i]), at(&list[j])
			if desc {
				return b.Before(a)
			}
			return a.Before(b)
		})

	case SortName, SortProperty:
		key := func(c *models.Character) string {
			if p.Type == SortName {
				return c.Name
			}
			v, _ := c.Property(p.Value)
			return v
		}
		// Collators are not safe for concurrent use.
		col := collate.New(e.lang)
		sort.SliceStable(list, func(i, j int) bool {
			a, b := key(&list[i]), key(&list[j])
			if a == "" || b == "" {
				return a != "" && b == ""
			}
			if desc {
				return col.CompareString(b, a) < 0
			}
			return col.CompareString(a, b) < 0
		})
	}
}
