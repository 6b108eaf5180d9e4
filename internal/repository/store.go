package repository

import (
	"context"
	"errors"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means a conditional write lost to a concurrent writer. The whole
	// atomic unit should be re-run against fresh state.
	ErrConflict = errors.New("concurrent update conflict")
	// ErrDuplicate is a unique-key violation on a natural key (reel number, names).
	ErrDuplicate = errors.New("duplicate key")
)

// Tx is everything a service may read or write inside one atomic unit. Writes to
// reels and stocks are conditional on the Version carried by the argument; on
// success the argument's Version is advanced.
type Tx interface {
	FindReel(id uuid.UUID) (*model.Reel, error)
	FindReelByNo(reelNo string) (*model.Reel, error)
	ListReelsByPaperType(paperTypeID uuid.UUID) ([]model.Reel, error)
	CreateReel(r *model.Reel) error
	UpdateReel(r *model.Reel) error
	DeleteReel(r *model.Reel) error

	CountRulings(reelID uuid.UUID) (int64, error)
	CreateRuling(r *model.Ruling) error

	FindStock(paperTypeID uuid.UUID) (*model.Stock, error)
	ListStock() ([]model.Stock, error)
	CreateStock(s *model.Stock) error
	UpdateStock(s *model.Stock) error
	CreateStockMovement(m *model.StockMovement) error

	CreateStatusLog(l *model.StatusLog) error
}

// ReelFilter narrows ListReels.
type ReelFilter struct {
	PaperTypeID *uuid.UUID
	Status      string
	ReelNo      string
	Page        int
	Limit       int
}

// RulingFilter narrows ListRulings.
type RulingFilter struct {
	ReelID *uuid.UUID
	Page   int
	Limit  int
}

// Store is the persistence boundary of the ruling engine: one atomic multi-record
// commit primitive plus the read side.
type Store interface {
	// Atomic runs fn in a single transaction. Any error returned by fn discards
	// every write fn made.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	FindReel(ctx context.Context, id uuid.UUID) (*model.Reel, error)
	ListReels(ctx context.Context, filter ReelFilter) ([]model.Reel, int64, error)
	FindRuling(ctx context.Context, id uuid.UUID) (*model.Ruling, error)
	ListRulings(ctx context.Context, filter RulingFilter) ([]model.Ruling, int64, error)
	FindStock(ctx context.Context, paperTypeID uuid.UUID) (*model.Stock, error)
	ListStock(ctx context.Context) ([]model.Stock, error)
	ListStockMovements(ctx context.Context, paperTypeID uuid.UUID, limit int) ([]model.StockMovement, error)
	ListStatusLogs(ctx context.Context, reelID uuid.UUID) ([]model.StatusLog, error)
	Ping(ctx context.Context) error
}

// CatalogRepository holds the reference data rulings point at.
type CatalogRepository interface {
	CreatePaperType(ctx context.Context, p *model.PaperType) error
	FindPaperType(ctx context.Context, id uuid.UUID) (*model.PaperType, error)
	ListPaperTypes(ctx context.Context) ([]model.PaperType, error)

	CreateItemType(ctx context.Context, it *model.ItemType) error
	FindItemType(ctx context.Context, id uuid.UUID) (*model.ItemType, error)
	ListItemTypes(ctx context.Context) ([]model.ItemType, error)

	CreateProgram(ctx context.Context, p *model.Program) error
	FindProgram(ctx context.Context, id uuid.UUID) (*model.Program, error)
	ListPrograms(ctx context.Context) ([]model.Program, error)
}

// Paginate normalizes page/limit the same way for every list endpoint.
func Paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return page, limit
}
