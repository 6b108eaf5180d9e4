package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
)

// CatalogService manages the reference data rulings point at.
type CatalogService interface {
	CreatePaperType(ctx context.Context, req dto.CreatePaperTypeRequest) (*dto.PaperTypeResponse, error)
	ListPaperTypes(ctx context.Context) ([]dto.PaperTypeResponse, error)
	GetPaperType(ctx context.Context, id uuid.UUID) (*dto.PaperTypeResponse, error)

	CreateItemType(ctx context.Context, req dto.CreateItemTypeRequest) (*dto.ItemTypeResponse, error)
	ListItemTypes(ctx context.Context) ([]dto.ItemTypeResponse, error)

	CreateProgram(ctx context.Context, req dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error)
	GetProgram(ctx context.Context, id uuid.UUID) (*dto.ProgramResponse, error)
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) CreatePaperType(ctx context.Context, req dto.CreatePaperTypeRequest) (*dto.PaperTypeResponse, error) {
	p := &model.PaperType{ID: uuid.New(), Name: strings.TrimSpace(req.Name), GSM: req.GSM, LengthCm: req.LengthCm}
	if err := s.repo.CreatePaperType(ctx, p); err != nil {
		return nil, translate(err)
	}
	resp := paperTypeToResponse(p)
	return &resp, nil
}

func (s *catalogService) ListPaperTypes(ctx context.Context) ([]dto.PaperTypeResponse, error) {
	pts, err := s.repo.ListPaperTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PaperTypeResponse, 0, len(pts))
	for i := range pts {
		out = append(out, paperTypeToResponse(&pts[i]))
	}
	return out, nil
}

func (s *catalogService) GetPaperType(ctx context.Context, id uuid.UUID) (*dto.PaperTypeResponse, error) {
	p, err := s.repo.FindPaperType(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := paperTypeToResponse(p)
	return &resp, nil
}

func (s *catalogService) CreateItemType(ctx context.Context, req dto.CreateItemTypeRequest) (*dto.ItemTypeResponse, error) {
	it := &model.ItemType{ID: uuid.New(), Name: strings.TrimSpace(req.Name)}
	if err := s.repo.CreateItemType(ctx, it); err != nil {
		return nil, translate(err)
	}
	resp := itemTypeToResponse(it)
	return &resp, nil
}

func (s *catalogService) ListItemTypes(ctx context.Context) ([]dto.ItemTypeResponse, error) {
	its, err := s.repo.ListItemTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemTypeResponse, 0, len(its))
	for i := range its {
		out = append(out, itemTypeToResponse(&its[i]))
	}
	return out, nil
}

func (s *catalogService) CreateProgram(ctx context.Context, req dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	itemTypeID, err := uuid.Parse(req.ItemTypeID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"item_type_id": "must be a valid uuid"}}
	}
	it, err := s.repo.FindItemType(ctx, itemTypeID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &ValidationError{Fields: map[string]string{"item_type_id": "item type not found"}}
	}
	if err != nil {
		return nil, err
	}
	p := &model.Program{ID: uuid.New(), Name: strings.TrimSpace(req.Name), ItemTypeID: itemTypeID, CutoffCm: req.CutoffCm}
	if err := s.repo.CreateProgram(ctx, p); err != nil {
		return nil, translate(err)
	}
	p.ItemType = it
	resp := programToResponse(p)
	return &resp, nil
}

func (s *catalogService) ListPrograms(ctx context.Context) ([]dto.ProgramResponse, error) {
	ps, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProgramResponse, 0, len(ps))
	for i := range ps {
		out = append(out, programToResponse(&ps[i]))
	}
	return out, nil
}

func (s *catalogService) GetProgram(ctx context.Context, id uuid.UUID) (*dto.ProgramResponse, error) {
	p, err := s.repo.FindProgram(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := programToResponse(p)
	return &resp, nil
}
