package repository

import (
	"context"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *gormStore) FindStock(ctx context.Context, paperTypeID uuid.UUID) (*model.Stock, error) {
	var st model.Stock
	if err := s.db.WithContext(ctx).First(&st, "paper_type_id = ?", paperTypeID).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *gormStore) ListStock(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	err := s.db.WithContext(ctx).Order("paper_type_id").Find(&stocks).Error
	return stocks, translate(err)
}

func (s *gormStore) ListStockMovements(ctx context.Context, paperTypeID uuid.UUID, limit int) ([]model.StockMovement, error) {
	_, limit = Paginate(1, limit)
	var movs []model.StockMovement
	err := s.db.WithContext(ctx).
		Where("paper_type_id = ?", paperTypeID).
		Order("created_at DESC").Limit(limit).
		Find(&movs).Error
	return movs, translate(err)
}

func (t *gormTx) FindStock(paperTypeID uuid.UUID) (*model.Stock, error) {
	var st model.Stock
	if err := t.forUpdate().First(&st, "paper_type_id = ?", paperTypeID).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (t *gormTx) ListStock() ([]model.Stock, error) {
	var stocks []model.Stock
	err := t.forUpdate().Order("paper_type_id").Find(&stocks).Error
	return stocks, translate(err)
}

// CreateStock inserts the first aggregate row for a paper type. Two units racing
// to bootstrap the same row: the loser sees ErrConflict and re-runs, finding the
// winner's row on the next attempt.
func (t *gormTx) CreateStock(st *model.Stock) error {
	res := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(st)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (t *gormTx) UpdateStock(st *model.Stock) error {
	res := t.db.Model(&model.Stock{}).
		Where("paper_type_id = ? AND version = ?", st.PaperTypeID, st.Version).
		Updates(map[string]interface{}{
			"length_cm":    st.LengthCm,
			"gsm":          st.GSM,
			"total_weight": st.TotalWeight,
			"reel_count":   st.ReelCount,
			"version":      st.Version + 1,
			"updated_at":   st.UpdatedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	st.Version++
	return nil
}

func (t *gormTx) CreateStockMovement(m *model.StockMovement) error {
	return translate(t.db.Create(m).Error)
}
