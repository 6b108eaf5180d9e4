package repository

import (
	"context"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepository(db *gorm.DB) CatalogRepository { return &catalogRepo{db: db} }

func (r *catalogRepo) CreatePaperType(ctx context.Context, p *model.PaperType) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *catalogRepo) FindPaperType(ctx context.Context, id uuid.UUID) (*model.PaperType, error) {
	var p model.PaperType
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *catalogRepo) ListPaperTypes(ctx context.Context) ([]model.PaperType, error) {
	var out []model.PaperType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (r *catalogRepo) CreateItemType(ctx context.Context, it *model.ItemType) error {
	return translate(r.db.WithContext(ctx).Create(it).Error)
}

func (r *catalogRepo) FindItemType(ctx context.Context, id uuid.UUID) (*model.ItemType, error) {
	var it model.ItemType
	if err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &it, nil
}

func (r *catalogRepo) ListItemTypes(ctx context.Context) ([]model.ItemType, error) {
	var out []model.ItemType
	err := r.db.WithContext(ctx).Order("name ASC").Find(&out).Error
	return out, translate(err)
}

func (r *catalogRepo) CreateProgram(ctx context.Context, p *model.Program) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *catalogRepo) FindProgram(ctx context.Context, id uuid.UUID) (*model.Program, error) {
	var p model.Program
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *catalogRepo) ListPrograms(ctx context.Context) ([]model.Program, error) {
	var out []model.Program
	err := r.db.WithContext(ctx).Preload("ItemType").Order("name ASC").Find(&out).Error
	return out, translate(err)
}
