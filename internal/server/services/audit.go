package services

import (
	"context"
	"database/sql"

	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

// AuditService exposes the append-only event trail.
type AuditService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAuditService(db *sql.DB, m repomanager.RepositoryManager) *AuditService {
	return &AuditService{db: db, repomanager: m}
}

func (s *AuditService) Record(ctx context.Context, actorID, action, target, detail string) error {
	return s.repomanager.Audit(s.db).Append(ctx, &models.AuditEvent{
		ActorID: actorID, Action: action, Target: target, Detail: detail,
	})
}

func (s *AuditService) List(ctx context.Context, limit int) ([]*models.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repomanager.Audit(s.db).ListRecent(ctx, limit)
}
