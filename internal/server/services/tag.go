package services

import (
	"context"
	"database/sql"

	"github.com/fnpsdn/netinv/internal/server/models"
	"github.com/fnpsdn/netinv/internal/server/repositories/repomanager"
)

// TagService manages inventory tags and their assignment to devices.
type TagService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewTagService(db *sql.DB, m repomanager.RepositoryManager) *TagService {
	return &TagService{db: db, repomanager: m}
}

func (s *TagService) Create(ctx context.Context, tag *models.Tag) (*models.Tag, error) {
	return s.repomanager.Tags(s.db).Create(ctx, tag)
}

func (s *TagService) List(ctx context.Context) ([]*models.Tag, error) {
	return s.repomanager.Tags(s.db).List(ctx)
}

func (s *TagService) ListByDevice(ctx context.Context, deviceID string) ([]*models.Tag, error) {
	return s.repomanager.Tags(s.db).ListByDevice(ctx, deviceID)
}

func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Tags(s.db).Delete(ctx, id)
}

// Assign attaches a tag to a device after checking both exist, so a stale
// ID surfaces as not-found rather than a bare foreign-key error.
func (s *TagService) Assign(ctx context.Context, deviceID, tagID string) error {
	if _, err := s.repomanager.Devices(s.db).GetByID(ctx, deviceID); err != nil {
		return err
	}
	if _, err := s.repomanager.Tags(s.db).GetByID(ctx, tagID); err != nil {
		return err
	}
	return s.repomanager.Tags(s.db).Assign(ctx, deviceID, tagID)
}

func (s *TagService) Unassign(ctx context.Context, deviceID, tagID string) error {
	return s.repomanager.Tags(s.db).Unassign(ctx, deviceID, tagID)
}
