package memstore

import (
	"sort"

	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
)

// base records what a unit expects committed state to look like at commit time.
type base struct {
	version int64
	created bool
}

type memTx struct {
	s     *Store
	fault FaultFunc

	// tx-local view of written rows; a reel id in reelBase but absent from reels
	// was deleted by this unit
	reels    map[uuid.UUID]*model.Reel
	reelBase map[uuid.UUID]base
	reelNos  map[string]uuid.UUID

	stocks    map[uuid.UUID]*model.Stock
	stockBase map[uuid.UUID]base

	rulings   []*model.Ruling
	movements []model.StockMovement
	logs      []model.StatusLog
}

func newTx(s *Store, fault FaultFunc) *memTx {
	return &memTx{
		s:         s,
		fault:     fault,
		reels:     make(map[uuid.UUID]*model.Reel),
		reelBase:  make(map[uuid.UUID]base),
		reelNos:   make(map[string]uuid.UUID),
		stocks:    make(map[uuid.UUID]*model.Stock),
		stockBase: make(map[uuid.UUID]base),
	}
}

func (t *memTx) check(op string) error {
	if t.fault == nil {
		return nil
	}
	return t.fault(op)
}

// ── Reels ────────────────────────────────────────────────────────────────────

func (t *memTx) FindReel(id uuid.UUID) (*model.Reel, error) {
	if _, touched := t.reelBase[id]; touched {
		r, ok := t.reels[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		return r.Clone(), nil
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	r, ok := t.s.reels[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.Clone(), nil
}

func (t *memTx) FindReelByNo(reelNo string) (*model.Reel, error) {
	if id, ok := t.reelNos[reelNo]; ok {
		return t.FindReel(id)
	}
	t.s.mu.Lock()
	id, ok := t.s.reelNos[reelNo]
	t.s.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	return t.FindReel(id)
}

func (t *memTx) ListReelsByPaperType(paperTypeID uuid.UUID) ([]model.Reel, error) {
	seen := make(map[uuid.UUID]bool)
	var out []model.Reel
	for id, r := range t.reels {
		seen[id] = true
		if r.PaperTypeID == paperTypeID {
			out = append(out, *r.Clone())
		}
	}
	t.s.mu.Lock()
	for id, r := range t.s.reels {
		if seen[id] {
			continue
		}
		if _, deleted := t.reelBase[id]; deleted {
			continue
		}
		if r.PaperTypeID == paperTypeID {
			out = append(out, *r.Clone())
		}
	}
	t.s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ReelNo < out[j].ReelNo })
	return out, nil
}

func (t *memTx) CreateReel(r *model.Reel) error {
	if err := t.check(OpReelCreate); err != nil {
		return err
	}
	if _, err := t.FindReelByNo(r.ReelNo); err == nil {
		return repository.ErrDuplicate
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	ts := now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = ts
	}
	r.UpdatedAt = ts
	t.reels[r.ID] = r.Clone()
	t.reelBase[r.ID] = base{created: true}
	t.reelNos[r.ReelNo] = r.ID
	return nil
}

func (t *memTx) UpdateReel(r *model.Reel) error {
	if err := t.check(OpReelUpdate); err != nil {
		return err
	}
	cur, err := t.FindReel(r.ID)
	if err != nil {
		return err
	}
	if cur.Version != r.Version {
		return repository.ErrConflict
	}
	if _, touched := t.reelBase[r.ID]; !touched {
		t.reelBase[r.ID] = base{version: cur.Version}
	}
	r.Version++
	r.UpdatedAt = now()
	t.reels[r.ID] = r.Clone()
	return nil
}

func (t *memTx) DeleteReel(r *model.Reel) error {
	if err := t.check(OpReelDelete); err != nil {
		return err
	}
	cur, err := t.FindReel(r.ID)
	if err != nil {
		return err
	}
	if cur.Version != r.Version {
		return repository.ErrConflict
	}
	if _, touched := t.reelBase[r.ID]; !touched {
		t.reelBase[r.ID] = base{version: cur.Version}
	}
	delete(t.reels, r.ID)
	delete(t.reelNos, r.ReelNo)
	return nil
}

// ── Rulings ──────────────────────────────────────────────────────────────────

func (t *memTx) CountRulings(reelID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range t.rulings {
		if r.ReelID == reelID {
			n++
		}
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, r := range t.s.rulings {
		if r.ReelID == reelID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CreateRuling(r *model.Ruling) error {
	if err := t.check(OpRulingCreate); err != nil {
		return err
	}
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	for i := range r.Entries {
		e := &r.Entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.RulingID = r.ID
		if e.CreatedAt.IsZero() {
			e.CreatedAt = r.CreatedAt
		}
	}
	t.rulings = append(t.rulings, cloneRuling(r))
	return nil
}

// ── Stock ────────────────────────────────────────────────────────────────────

func (t *memTx) FindStock(paperTypeID uuid.UUID) (*model.Stock, error) {
	if st, ok := t.stocks[paperTypeID]; ok {
		return st.Clone(), nil
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	st, ok := t.s.stocks[paperTypeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return st.Clone(), nil
}

func (t *memTx) ListStock() ([]model.Stock, error) {
	t.s.mu.Lock()
	merged := make(map[uuid.UUID]model.Stock, len(t.s.stocks))
	for id, st := range t.s.stocks {
		merged[id] = *st
	}
	t.s.mu.Unlock()
	for id, st := range t.stocks {
		merged[id] = *st
	}
	out := make([]model.Stock, 0, len(merged))
	for _, st := range merged {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaperTypeID.String() < out[j].PaperTypeID.String() })
	return out, nil
}

func (t *memTx) CreateStock(st *model.Stock) error {
	if err := t.check(OpStockCreate); err != nil {
		return err
	}
	if _, err := t.FindStock(st.PaperTypeID); err == nil {
		return repository.ErrConflict
	}
	if st.UpdatedAt.IsZero() {
		st.UpdatedAt = now()
	}
	t.stocks[st.PaperTypeID] = st.Clone()
	t.stockBase[st.PaperTypeID] = base{created: true}
	return nil
}

func (t *memTx) UpdateStock(st *model.Stock) error {
	if err := t.check(OpStockUpdate); err != nil {
		return err
	}
	cur, err := t.FindStock(st.PaperTypeID)
	if err != nil {
		return err
	}
	if cur.Version != st.Version {
		return repository.ErrConflict
	}
	if _, touched := t.stockBase[st.PaperTypeID]; !touched {
		t.stockBase[st.PaperTypeID] = base{version: cur.Version}
	}
	st.Version++
	t.stocks[st.PaperTypeID] = st.Clone()
	return nil
}

func (t *memTx) CreateStockMovement(m *model.StockMovement) error {
	if err := t.check(OpStockMovement); err != nil {
		return err
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now()
	}
	t.movements = append(t.movements, *m)
	return nil
}

// ── Status logs ──────────────────────────────────────────────────────────────

func (t *memTx) CreateStatusLog(l *model.StatusLog) error {
	if err := t.check(OpStatusLogCreate); err != nil {
		return err
	}
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now()
	}
	t.logs = append(t.logs, *l)
	return nil
}
