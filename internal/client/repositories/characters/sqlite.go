package characters

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/dbx"
)

// SQLiteRepository implements Repository on top of a namespace database.
// It needs a *sql.DB rather than dbx.DBTX because multi-table writes open
// their own transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ToArray(ctx context.Context) ([]models.Character, error) {
	return r.load(ctx, r.db, "", nil)
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (*models.Character, error) {
	list, err := r.load(ctx, r.db, "WHERE id = ?", []any{id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrCharacterNotFound, id)
	}
	return &list[0], nil
}

func (r *SQLiteRepository) Add(ctx context.Context, c *models.Character) (int64, error) {
	var id any
	if c.ID != 0 {
		id = c.ID
	}
	origID := c.ID

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `INSERT INTO characters (id, name, name_fold, avatar, note, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, query, id, c.Name, models.Fold(c.Name), c.Avatar, c.Note,
			dbx.FormatTime(c.CreatedAt), dbx.FormatTime(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert character: %w", err)
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get character id: %w", err)
		}
		c.ID = newID
		return writeChildren(ctx, tx, c)
	})
	if err != nil {
		c.ID = origID
		return 0, err
	}
	return c.ID, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Character) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `UPDATE characters SET name = ?, name_fold = ?, avatar = ?, note = ?, created_at = ?, updated_at = ?
			WHERE id = ?`
		res, err := tx.ExecContext(ctx, query, c.Name, models.Fold(c.Name), c.Avatar, c.Note,
			dbx.FormatTime(c.CreatedAt), dbx.FormatTime(c.UpdatedAt), c.ID)
		if err != nil {
			return fmt.Errorf("failed to update character: %w", err)
		}
		if err := expectOne(res, c.ID); err != nil {
			return err
		}
		if err := deleteChildren(ctx, tx, c.ID); err != nil {
			return err
		}
		return writeChildren(ctx, tx, c)
	})
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete character: %w", err)
		}
		if err := expectOne(res, id); err != nil {
			return err
		}
		return deleteChildren(ctx, tx, id)
	})
}

func (r *SQLiteRepository) WhereNameEqualFold(ctx context.Context, name string) ([]models.Character, error) {
	return r.load(ctx, r.db, "WHERE name_fold = ?", []any{models.Fold(name)})
}

func (r *SQLiteRepository) WherePropertyKey(ctx context.Context, key string) ([]models.Character, error) {
	return r.load(ctx, r.db,
		"WHERE id IN (SELECT character_id FROM character_properties WHERE name = ?)", []any{key})
}

func (r *SQLiteRepository) WhereRelationLabel(ctx context.Context, label string) ([]models.Character, error) {
	return r.load(ctx, r.db,
		"WHERE id IN (SELECT character_id FROM character_relations WHERE label_fold = ?)", []any{models.Fold(label)})
}

func (r *SQLiteRepository) WhereTag(ctx context.Context, tag string) ([]models.Character, error) {
	return r.load(ctx, r.db,
		"WHERE id IN (SELECT character_id FROM character_tags WHERE tag = ?)", []any{tag})
}

func (r *SQLiteRepository) AnyOf(ctx context.Context, ids []int64) ([]models.Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.load(ctx, r.db, "WHERE id IN ("+dbx.Placeholders(len(ids))+")", args)
}

// load selects characters matching where (a clause over the characters
// table) and attaches their child rows.
func (r *SQLiteRepository) load(ctx context.Context, db dbx.DBTX, where string, args []any) ([]models.Character, error) {
	query := `SELECT id, name, avatar, note, created_at, updated_at FROM characters ` + where + ` ORDER BY id`
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select characters: %w", err)
	}
	defer rows.Close()

	var result []models.Character
	for rows.Next() {
		var c models.Character
		var created, updated string
		if err := rows.Scan(&c.ID, &c.Name, &c.Avatar, &c.Note, &created, &updated); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = dbx.ParseTime(created); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = dbx.ParseTime(updated); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return result, nil
	}

	index := make(map[int64]*models.Character, len(result))
	for i := range result {
		index[result[i].ID] = &result[i]
	}

	scope := `character_id IN (SELECT id FROM characters ` + where + `)`

	err = each(ctx, db, `SELECT character_id, name, value FROM character_properties WHERE `+scope+
		` ORDER BY character_id, position`, args, func(rows *sql.Rows) error {
		var id int64
		var p models.Property
		if err := rows.Scan(&id, &p.Name, &p.Value); err != nil {
			return err
		}
		index[id].Properties = append(index[id].Properties, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select properties: %w", err)
	}

	err = each(ctx, db, `SELECT character_id, tag FROM character_tags WHERE `+scope+
		` ORDER BY character_id, position`, args, func(rows *sql.Rows) error {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return err
		}
		index[id].Tags = append(index[id].Tags, tag)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}

	err = each(ctx, db, `SELECT character_id, target_id, label FROM character_relations WHERE `+scope+
		` ORDER BY character_id, position`, args, func(rows *sql.Rows) error {
		var id int64
		var rel models.Relation
		if err := rows.Scan(&id, &rel.Target, &rel.Label); err != nil {
			return err
		}
		index[id].Relations = append(index[id].Relations, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to select relations: %w", err)
	}

	return result, nil
}

func each(ctx context.Context, db dbx.DBTX, query string, args []any, fn func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func writeChildren(ctx context.Context, tx dbx.DBTX, c *models.Character) error {
	for i, p := range c.Properties {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO character_properties (character_id, position, name, value) VALUES (?, ?, ?, ?)`,
			c.ID, i, p.Name, p.Value)
		if err != nil {
			return fmt.Errorf("failed to insert property: %w", err)
		}
	}
	for i, tag := range c.Tags {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO character_tags (character_id, position, tag) VALUES (?, ?, ?)`,
			c.ID, i, tag)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	for i, rel := range c.Relations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO character_relations (character_id, position, target_id, label, label_fold) VALUES (?, ?, ?, ?, ?)`,
			c.ID, i, rel.Target, rel.Label, models.Fold(rel.Label))
		if err != nil {
			return fmt.Errorf("failed to insert relation: %w", err)
		}
	}
	return nil
}

func deleteChildren(ctx context.Context, tx dbx.DBTX, id int64) error {
	for _, table := range []string{"character_properties", "character_tags", "character_relations"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE character_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}
	return nil
}

func expectOne(res sql.Result, id int64) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: %d", common.ErrCharacterNotFound, id)
	}
	return nil
}
