package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fnpsdn/netinv/internal/dbx"
	"github.com/fnpsdn/netinv/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, event *models.AuditEvent) error {

	query :=
		`INSERT INTO audit_events (actor_id, action, target, detail)
	     VALUES ($1, $2, $3, $4)
		 `

	// actor_id is a uuid column, so an empty actor must go in as NULL
	var actor any
	if event.ActorID != "" {
		actor = event.ActorID
	}

	_, err := r.db.ExecContext(ctx, query, actor, event.Action, event.Target, event.Detail)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	query :=
		`SELECT id, COALESCE(actor_id::text, ''), action, target, detail, created_at
		 FROM audit_events
		 ORDER BY created_at DESC
		 LIMIT $1
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return collect(rows)
}

func collect(rows *sql.Rows) ([]*models.AuditEvent, error) {
	result := []*models.AuditEvent{}
	for rows.Next() {
		event := &models.AuditEvent{}
		err := rows.Scan(&event.ID, &event.ActorID, &event.Action,
			&event.Target, &event.Detail, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
