package repository

import (
	"context"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
)

func (s *gormStore) ListStatusLogs(ctx context.Context, reelID uuid.UUID) ([]model.StatusLog, error) {
	var logs []model.StatusLog
	err := s.db.WithContext(ctx).Where("reel_id = ?", reelID).Order("created_at ASC").Find(&logs).Error
	return logs, translate(err)
}

func (t *gormTx) CreateStatusLog(l *model.StatusLog) error {
	return translate(t.db.Create(l).Error)
}
