// Package memstore is an in-process implementation of repository.Store and
// repository.CatalogRepository.
//
// Transactions are optimistic: reads see committed state plus the unit's own
// buffered writes, and commit validates every written reel/stock version against
// committed state under a single lock before applying anything. A unit either
// lands completely or not at all.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
)

// FaultFunc is consulted before every buffered write; a non-nil return fails the
// write (and with it the unit). op is one of the Op* constants.
type FaultFunc func(op string) error

const (
	OpReelCreate      = "reel.create"
	OpReelUpdate      = "reel.update"
	OpReelDelete      = "reel.delete"
	OpRulingCreate    = "ruling.create"
	OpStockCreate     = "stock.create"
	OpStockUpdate     = "stock.update"
	OpStockMovement   = "stock.movement"
	OpStatusLogCreate = "status_log.create"
)

// Store keeps all collections in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	reels     map[uuid.UUID]*model.Reel
	reelNos   map[string]uuid.UUID
	rulings   map[uuid.UUID]*model.Ruling
	stocks    map[uuid.UUID]*model.Stock
	movements []model.StockMovement
	logs      []model.StatusLog

	paperTypes map[uuid.UUID]*model.PaperType
	itemTypes  map[uuid.UUID]*model.ItemType
	programs   map[uuid.UUID]*model.Program

	fault        FaultFunc
	beforeCommit func()
	commits      int
}

var (
	_ repository.Store             = (*Store)(nil)
	_ repository.CatalogRepository = (*Store)(nil)
)

func New() *Store {
	return &Store{
		reels:      make(map[uuid.UUID]*model.Reel),
		reelNos:    make(map[string]uuid.UUID),
		rulings:    make(map[uuid.UUID]*model.Ruling),
		stocks:     make(map[uuid.UUID]*model.Stock),
		paperTypes: make(map[uuid.UUID]*model.PaperType),
		itemTypes:  make(map[uuid.UUID]*model.ItemType),
		programs:   make(map[uuid.UUID]*model.Program),
	}
}

// SetFault installs (or clears, with nil) a write fault injector.
func (s *Store) SetFault(f FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = f
}

// SetBeforeCommit installs a hook that runs after fn returns and before the
// commit validates. Tests use it to interleave a competing writer.
func (s *Store) SetBeforeCommit(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeCommit = f
}

// Commits reports how many units have committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// BumpReelVersion simulates a foreign write to a reel.
func (s *Store) BumpReelVersion(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.reels[id]; ok {
		r.Version++
	}
}

// ── Atomic ───────────────────────────────────────────────────────────────────

func (s *Store) Atomic(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	fault := s.fault
	hook := s.beforeCommit
	s.mu.Unlock()

	tx := newTx(s, fault)
	if err := fn(tx); err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// validate everything first
	for id, base := range tx.reelBase {
		cur, ok := s.reels[id]
		if base.created {
			if ok {
				return repository.ErrConflict
			}
			continue
		}
		if !ok || cur.Version != base.version {
			return repository.ErrConflict
		}
	}
	for no, id := range tx.reelNos {
		if owner, ok := s.reelNos[no]; ok && owner != id {
			return repository.ErrDuplicate
		}
	}
	for id, base := range tx.stockBase {
		cur, ok := s.stocks[id]
		if base.created {
			if ok {
				return repository.ErrConflict
			}
			continue
		}
		if !ok || cur.Version != base.version {
			return repository.ErrConflict
		}
	}

	// then apply
	for id := range tx.reelBase {
		r, ok := tx.reels[id]
		if !ok {
			if old, exists := s.reels[id]; exists {
				delete(s.reelNos, old.ReelNo)
			}
			delete(s.reels, id)
			continue
		}
		s.reels[id] = r.Clone()
		s.reelNos[r.ReelNo] = id
	}
	for _, r := range tx.rulings {
		s.rulings[r.ID] = cloneRuling(r)
	}
	for id := range tx.stockBase {
		s.stocks[id] = tx.stocks[id].Clone()
	}
	s.movements = append(s.movements, tx.movements...)
	s.logs = append(s.logs, tx.logs...)
	s.commits++
	return nil
}

func cloneRuling(r *model.Ruling) *model.Ruling {
	c := *r
	c.Entries = append([]model.RulingEntry(nil), r.Entries...)
	return &c
}

// ── Read side ────────────────────────────────────────────────────────────────

func (s *Store) FindReel(_ context.Context, id uuid.UUID) (*model.Reel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *Store) ListReels(_ context.Context, filter repository.ReelFilter) ([]model.Reel, int64, error) {
	s.mu.Lock()
	var all []model.Reel
	for _, r := range s.reels {
		if filter.PaperTypeID != nil && r.PaperTypeID != *filter.PaperTypeID {
			continue
		}
		if filter.Status != "" && string(r.Status) != filter.Status {
			continue
		}
		if filter.ReelNo != "" && !strings.Contains(strings.ToLower(r.ReelNo), strings.ToLower(filter.ReelNo)) {
			continue
		}
		all = append(all, *r.Clone())
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ReelNo < all[j].ReelNo
	})
	page, limit := repository.Paginate(filter.Page, filter.Limit)
	return window(all, page, limit), int64(len(all)), nil
}

func (s *Store) FindRuling(_ context.Context, id uuid.UUID) (*model.Ruling, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rulings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneRuling(r), nil
}

func (s *Store) ListRulings(_ context.Context, filter repository.RulingFilter) ([]model.Ruling, int64, error) {
	s.mu.Lock()
	var all []model.Ruling
	for _, r := range s.rulings {
		if filter.ReelID != nil && r.ReelID != *filter.ReelID {
			continue
		}
		all = append(all, *cloneRuling(r))
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	page, limit := repository.Paginate(filter.Page, filter.Limit)
	return window(all, page, limit), int64(len(all)), nil
}

func (s *Store) FindStock(_ context.Context, paperTypeID uuid.UUID) (*model.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stocks[paperTypeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return st.Clone(), nil
}

func (s *Store) ListStock(_ context.Context) ([]model.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedStock(), nil
}

func (s *Store) sortedStock() []model.Stock {
	out := make([]model.Stock, 0, len(s.stocks))
	for _, st := range s.stocks {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaperTypeID.String() < out[j].PaperTypeID.String() })
	return out
}

func (s *Store) ListStockMovements(_ context.Context, paperTypeID uuid.UUID, limit int) ([]model.StockMovement, error) {
	_, limit = repository.Paginate(1, limit)
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StockMovement
	for i := len(s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if s.movements[i].PaperTypeID == paperTypeID {
			out = append(out, s.movements[i])
		}
	}
	return out, nil
}

func (s *Store) ListStatusLogs(_ context.Context, reelID uuid.UUID) ([]model.StatusLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StatusLog
	for _, l := range s.logs {
		if l.ReelID == reelID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func window[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func now() time.Time { return time.Now().UTC() }
