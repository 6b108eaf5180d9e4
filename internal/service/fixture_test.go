package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository/memstore"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	operator   = Caller{Username: "op", Role: lifecycle.RoleOperator}
	supervisor = Caller{Username: "sup", Role: lifecycle.RoleSupervisor}
	admin      = Caller{Username: "root", Role: lifecycle.RoleAdmin}
)

// ── Recording publisher ──────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	store   *memstore.Store
	agg     *StockAggregator
	pub     *recordingPublisher
	reels   ReelService
	rulings RulingService
	stock   StockService
	catalog CatalogService
	paper   *model.PaperType
	item    *model.ItemType
}

func testEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.MaxCommitRetries = 3
	cfg.CommitBackoff = 0
	return cfg
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, testEngineConfig(), nil)
}

func newFixtureWith(t *testing.T, cfg EngineConfig, extractor LabelExtractor) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	paper := &model.PaperType{ID: uuid.New(), Name: "Maplitho 60", GSM: 60, LengthCm: 88}
	require.NoError(t, store.CreatePaperType(ctx, paper))
	item := &model.ItemType{ID: uuid.New(), Name: "Notebook 200p"}
	require.NoError(t, store.CreateItemType(ctx, item))

	agg := NewStockAggregator()
	pub := &recordingPublisher{}
	return &fixture{
		store:   store,
		agg:     agg,
		pub:     pub,
		reels:   NewReelService(store, store, agg, extractor, pub, cfg),
		rulings: NewRulingService(store, store, agg, nil, pub, cfg),
		stock:   NewStockService(store, store, agg, cfg),
		catalog: NewCatalogService(store),
		paper:   paper,
		item:    item,
	}
}

func int64p(v int64) *int64 { return &v }

// seedReel stores an 88cm/60gsm reel and counts its full weight in stock, the
// way registration does. initial 0 leaves InitialSheets unset.
func (f *fixture) seedReel(t *testing.T, weightKg, initial int64, mutate ...func(*model.Reel)) *model.Reel {
	t.Helper()
	r := &model.Reel{
		ID:          uuid.New(),
		PaperTypeID: f.paper.ID,
		ReelNo:      "R-" + uuid.NewString()[:8],
		LengthCm:    88,
		GSM:         60,
		Weight:      decimal.NewFromInt(weightKg),
		Status:      model.ReelAvailable,
		CreatedBy:   "seed",
	}
	if initial > 0 {
		r.InitialSheets = int64p(initial)
	}
	for _, m := range mutate {
		m(r)
	}
	require.NoError(t, f.store.Atomic(context.Background(), func(tx repository.Tx) error {
		if err := tx.CreateReel(r); err != nil {
			return err
		}
		if !lifecycle.CountsTowardStock(r.Status) {
			return nil
		}
		_, err := f.agg.AddReel(tx, r)
		return err
	}))
	return r
}

func (f *fixture) entry(sheets int64) dto.RulingEntryDraft {
	return dto.RulingEntryDraft{ItemTypeID: f.item.ID.String(), CutoffCm: 48, SheetsRuled: sheets}
}

func (f *fixture) submit(reel *model.Reel, entries ...dto.RulingEntryDraft) (*dto.SubmitRulingResponse, error) {
	return f.rulings.Submit(context.Background(), operator, dto.SubmitRulingRequest{ReelID: reel.ID.String(), Entries: entries})
}

func (f *fixture) reel(t *testing.T, id uuid.UUID) *model.Reel {
	t.Helper()
	r, err := f.store.FindReel(context.Background(), id)
	require.NoError(t, err)
	return r
}

func (f *fixture) stockRow(t *testing.T) *model.Stock {
	t.Helper()
	st, err := f.store.FindStock(context.Background(), f.paper.ID)
	require.NoError(t, err)
	return st
}

func kg(v string) decimal.Decimal { return decimal.RequireFromString(v) }
