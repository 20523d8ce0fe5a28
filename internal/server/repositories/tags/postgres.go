package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fnpsdn/netinv/internal/common"
	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {

	query :=
		`INSERT INTO tags (name, color)
	     VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, tag.Name, tag.Color).
		Scan(&tag.ID, &tag.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tag, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	query := `SELECT id, name, color, created_at FROM tags WHERE id = $1`

	tag := &models.Tag{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return tag, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Tag, error) {
	query := `SELECT id, name, color, created_at FROM tags ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceID string) ([]*models.Tag, error) {
	query :=
		`SELECT t.id, t.name, t.color, t.created_at
		 FROM tags t
		 JOIN device_tags dt ON dt.tag_id = t.id
		 WHERE dt.device_id = $1
		 ORDER BY t.name
		 `

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*models.Tag, error) {
	result := []*models.Tag{}
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM tags WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) Assign(ctx context.Context, deviceID string, tagID string) error {
	query :=
		`INSERT INTO device_tags (device_id, tag_id)
		 VALUES ($1, $2)
		 ON CONFLICT DO NOTHING
		 `

	_, err := r.db.ExecContext(ctx, query, deviceID, tagID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Unassign(ctx context.Context, deviceID string, tagID string) error {
	query := `DELETE FROM device_tags WHERE device_id = $1 AND tag_id = $2`

	_, err := r.db.ExecContext(ctx, query, deviceID, tagID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
