package service

import (
	"context"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const movementHistoryLimit = 50

// StockService exposes the stock aggregates. Writes happen only through the reel
// and ruling services, except for Rebuild.
type StockService interface {
	List(ctx context.Context) ([]dto.StockResponse, error)
	Get(ctx context.Context, paperTypeID uuid.UUID) (*dto.StockDetailResponse, error)
	Rebuild(ctx context.Context, caller Caller) (*dto.RebuildStockResponse, error)
	Export(ctx context.Context) ([]byte, error)
}

type stockService struct {
	store   repository.Store
	catalog repository.CatalogRepository
	stock   *StockAggregator
	commit  *committer
}

func NewStockService(store repository.Store, catalog repository.CatalogRepository, stock *StockAggregator, cfg EngineConfig) StockService {
	return &stockService{
		store:   store,
		catalog: catalog,
		stock:   stock,
		commit:  newCommitter(store, cfg.MaxCommitRetries, cfg.CommitBackoff),
	}
}

func (s *stockService) names(ctx context.Context) (map[uuid.UUID]model.PaperType, error) {
	pts, err := s.catalog.ListPaperTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]model.PaperType, len(pts))
	for _, pt := range pts {
		out[pt.ID] = pt
	}
	return out, nil
}

func (s *stockService) List(ctx context.Context) ([]dto.StockResponse, error) {
	stocks, err := s.store.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	pts, err := s.names(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(stocks))
	for i := range stocks {
		out = append(out, stockToResponse(&stocks[i], pts[stocks[i].PaperTypeID].Name))
	}
	return out, nil
}

func (s *stockService) Get(ctx context.Context, paperTypeID uuid.UUID) (*dto.StockDetailResponse, error) {
	st, err := s.store.FindStock(ctx, paperTypeID)
	if err != nil {
		return nil, translate(err)
	}
	var name string
	if pt, err := s.catalog.FindPaperType(ctx, paperTypeID); err == nil {
		name = pt.Name
	}
	movements, err := s.store.ListStockMovements(ctx, paperTypeID, movementHistoryLimit)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockDetailResponse{
		Stock:     stockToResponse(st, name),
		Movements: make([]dto.StockMovementResponse, 0, len(movements)),
	}
	for i := range movements {
		resp.Movements = append(resp.Movements, movementToResponse(&movements[i]))
	}
	return resp, nil
}

// Rebuild recomputes every aggregate from the reel population. Paper types that
// only exist as stock rows are rebuilt too.
func (s *stockService) Rebuild(ctx context.Context, caller Caller) (*dto.RebuildStockResponse, error) {
	if caller.Role != lifecycle.RoleAdmin {
		return nil, ErrForbidden
	}
	pts, err := s.catalog.ListPaperTypes(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(pts))
	for _, pt := range pts {
		known[pt.ID] = true
	}

	var rebuilt []model.Stock
	err = s.commit.run(ctx, "stock.rebuild", func(tx repository.Tx) error {
		targets := append([]model.PaperType(nil), pts...)
		existing, err := tx.ListStock()
		if err != nil {
			return err
		}
		for _, st := range existing {
			if !known[st.PaperTypeID] {
				targets = append(targets, model.PaperType{ID: st.PaperTypeID, LengthCm: st.LengthCm, GSM: st.GSM})
			}
		}
		rebuilt, err = s.stock.Rebuild(tx, targets)
		return err
	})
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(pts))
	for _, pt := range pts {
		names[pt.ID] = pt.Name
	}
	out := &dto.RebuildStockResponse{Stocks: make([]dto.StockResponse, 0, len(rebuilt))}
	for i := range rebuilt {
		out.Stocks = append(out.Stocks, stockToResponse(&rebuilt[i], names[rebuilt[i].PaperTypeID]))
	}
	log.Info().Int("paper_types", len(out.Stocks)).Msg("stock aggregates rebuilt")
	return out, nil
}

// Export renders the current aggregates as an xlsx workbook.
func (s *stockService) Export(ctx context.Context) ([]byte, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return infra.RenderStockWorkbook(rows)
}
