package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roksva123/go-wrike-export/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryService reads recorded export runs.
type HistoryService struct {
	DB *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// ListRuns returns the most recent runs first, optionally filtered by status.
func (s *HistoryService) ListRuns(ctx context.Context, status string, limit int) ([]model.ExportRun, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	q := s.DB.WithContext(ctx).Order("started_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	runs := make([]model.ExportRun, 0, limit)
	err := q.Find(&runs).Error
	return runs, err
}

// GetRun returns a single run by id. Ids that are not UUIDs cannot exist and
// report gorm.ErrRecordNotFound without a query.
func (s *HistoryService) GetRun(ctx context.Context, id string) (*model.ExportRun, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var run model.ExportRun
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
