package collectioninfo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/charkeeper/internal/client/models"
	"github.com/dmitrijs2005/charkeeper/internal/common"
	"github.com/dmitrijs2005/charkeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) (*models.CollectionInfo, error) {
	query := `SELECT id, uuid, name, icon, description, character_description, created_at, updated_at
		FROM collection_info WHERE id = ?`

	var info models.CollectionInfo
	var created, updated string
	err := r.db.QueryRowContext(ctx, query, models.InfoID).Scan(&info.ID, &info.UUID, &info.Name, &info.Icon,
		&info.Description, &info.CharacterDescription, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	if info.CreatedAt, err = dbx.ParseTime(created); err != nil {
		return nil, err
	}
	if info.UpdatedAt, err = dbx.ParseTime(updated); err != nil {
		return nil, err
	}
	return &info, nil
}

func (r *SQLiteRepository) Add(ctx context.Context, info *models.CollectionInfo) error {
	query := `INSERT INTO collection_info (id, uuid, name, icon, description, character_description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, models.InfoID, info.UUID, info.Name, info.Icon,
		info.Description, info.CharacterDescription, dbx.FormatTime(info.CreatedAt), dbx.FormatTime(info.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert collection info: %w", err)
	}
	info.ID = models.InfoID
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, info *models.CollectionInfo) error {
	query := `UPDATE collection_info SET uuid = ?, name = ?, icon = ?, description = ?,
		character_description = ?, created_at = ?, updated_at = ? WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query, info.UUID, info.Name, info.Icon, info.Description,
		info.CharacterDescription, dbx.FormatTime(info.CreatedAt), dbx.FormatTime(info.UpdatedAt), models.InfoID)
	if err != nil {
		return fmt.Errorf("failed to update collection info: %w", err)
	}
	return expectOne(res)
}

func (r *SQLiteRepository) Touch(ctx context.Context, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE collection_info SET updated_at = ? WHERE id = ?`,
		dbx.FormatTime(at), models.InfoID)
	if err != nil {
		return fmt.Errorf("failed to touch collection info: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("%w: metadata row missing", common.ErrCollectionNotFound)
	}
	return nil
}
