package repository

import (
	"context"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
)

// ── Read side ────────────────────────────────────────────────────────────────

func (s *gormStore) FindReel(ctx context.Context, id uuid.UUID) (*model.Reel, error) {
	var r model.Reel
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *gormStore) ListReels(ctx context.Context, filter ReelFilter) ([]model.Reel, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Reel{})
	if filter.PaperTypeID != nil {
		q = q.Where("paper_type_id = ?", *filter.PaperTypeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ReelNo != "" {
		q = q.Where("reel_no ILIKE ?", "%"+filter.ReelNo+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	page, limit := Paginate(filter.Page, filter.Limit)
	var reels []model.Reel
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&reels).Error
	return reels, total, translate(err)
}

// ── Inside a transaction ────────────────────────────────────────────────────

func (t *gormTx) FindReel(id uuid.UUID) (*model.Reel, error) {
	var r model.Reel
	if err := t.forUpdate().First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (t *gormTx) FindReelByNo(reelNo string) (*model.Reel, error) {
	var r model.Reel
	if err := t.db.Where("reel_no = ?", reelNo).First(&r).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (t *gormTx) ListReelsByPaperType(paperTypeID uuid.UUID) ([]model.Reel, error) {
	var reels []model.Reel
	err := t.forUpdate().Where("paper_type_id = ?", paperTypeID).Order("reel_no").Find(&reels).Error
	return reels, translate(err)
}

func (t *gormTx) CreateReel(r *model.Reel) error {
	return translate(t.db.Create(r).Error)
}

func (t *gormTx) UpdateReel(r *model.Reel) error {
	res := t.db.Model(&model.Reel{}).
		Where("id = ? AND version = ?", r.ID, r.Version).
		Updates(map[string]interface{}{
			"initial_sheets":   r.InitialSheets,
			"available_sheets": r.AvailableSheets,
			"status":           r.Status,
			"version":          r.Version + 1,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	r.Version++
	return nil
}

func (t *gormTx) DeleteReel(r *model.Reel) error {
	res := t.db.Where("id = ? AND version = ?", r.ID, r.Version).Delete(&model.Reel{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
