package repository

import (
	"context"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func orderedEntries(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

func (s *gormStore) FindRuling(ctx context.Context, id uuid.UUID) (*model.Ruling, error) {
	var r model.Ruling
	err := s.db.WithContext(ctx).Preload("Entries", orderedEntries).First(&r, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *gormStore) ListRulings(ctx context.Context, filter RulingFilter) ([]model.Ruling, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Ruling{})
	if filter.ReelID != nil {
		q = q.Where("reel_id = ?", *filter.ReelID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	page, limit := Paginate(filter.Page, filter.Limit)
	var rulings []model.Ruling
	err := q.Preload("Entries", orderedEntries).
		Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&rulings).Error
	return rulings, total, translate(err)
}

func (t *gormTx) CountRulings(reelID uuid.UUID) (int64, error) {
	var n int64
	err := t.db.Model(&model.Ruling{}).Where("reel_id = ?", reelID).Count(&n).Error
	return n, translate(err)
}

// CreateRuling inserts the envelope and all of its entries.
func (t *gormTx) CreateRuling(r *model.Ruling) error {
	return translate(t.db.Create(r).Error)
}
