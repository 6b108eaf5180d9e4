package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository/memstore"
	"github.com/Pratham4590/PBM-OP-sub000/internal/yield"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ComputesYieldPerEntry(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 250, 10000)

	resp, err := f.submit(reel, f.entry(5000))
	require.NoError(t, err)

	require.Len(t, resp.Ruling.Entries, 1)
	e := resp.Ruling.Entries[0]
	assert.InDelta(t, 4932.1338, e.TheoreticalSheets, 0.001)
	assert.InDelta(t, 67.8662, e.Difference, 0.001)
	assert.False(t, e.InsufficientData)
	assert.Equal(t, string(model.EntryInProgress), e.Status)

	assert.Equal(t, int64(5000), resp.Ruling.TotalSheetsRuled)
	assert.True(t, kg("250").Equal(resp.Ruling.StartingWeight))
	require.NotNil(t, resp.Reel.AvailableSheets)
	assert.Equal(t, int64(5000), *resp.Reel.AvailableSheets)
	assert.Equal(t, string(model.ReelInUse), resp.Reel.Status)

	stored := f.reel(t, reel.ID)
	assert.Equal(t, int64(5000), stored.Available())
	assert.Equal(t, model.ReelInUse, stored.Status)
}

func TestSubmit_MultipleEntriesShareCapacity(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)

	resp, err := f.submit(reel, f.entry(300), f.entry(200))
	require.NoError(t, err)
	assert.Len(t, resp.Ruling.Entries, 2)
	assert.Equal(t, 0, resp.Ruling.Entries[0].Position)
	assert.Equal(t, 1, resp.Ruling.Entries[1].Position)
	assert.Equal(t, int64(500), f.reel(t, reel.ID).Available())
}

func TestSubmit_RejectsOverCapacity(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	commits := f.store.Commits()

	_, err := f.submit(reel, f.entry(600), f.entry(500))

	var ice *InsufficientCapacityError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, int64(1100), ice.Requested)
	assert.Equal(t, int64(1000), ice.Available)

	assert.Equal(t, commits, f.store.Commits())
	assert.Equal(t, model.ReelAvailable, f.reel(t, reel.ID).Status)
	assert.True(t, kg("100").Equal(f.stockRow(t).TotalWeight))
	assert.Zero(t, f.pub.count(TopicRulingCommitted))
}

func TestSubmit_HugeSheetCountsCannotWrapCapacity(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	commits := f.store.Commits()

	_, err := f.submit(reel, f.entry(math.MaxInt64), f.entry(math.MaxInt64))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "entries[0].sheets_ruled")
	assert.Contains(t, ve.Fields, "entries[1].sheets_ruled")

	assert.Equal(t, commits, f.store.Commits())
	after := f.reel(t, reel.ID)
	assert.Equal(t, int64(1000), after.Available())
	assert.Equal(t, model.ReelAvailable, after.Status)
	assert.True(t, kg("100").Equal(f.stockRow(t).TotalWeight))
}

func TestSubmit_LargestEntriesStillCheckedAgainstCapacity(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)

	_, err := f.submit(reel, f.entry(MaxSheetsPerEntry), f.entry(MaxSheetsPerEntry))

	var ice *InsufficientCapacityError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 2*MaxSheetsPerEntry, ice.Requested)
	assert.Equal(t, int64(1000), ice.Available)
	assert.Equal(t, int64(1000), f.reel(t, reel.ID).Available())
}

func TestSaturatingAdd(t *testing.T) {
	assert.Equal(t, int64(5), saturatingAdd(2, 3))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(math.MaxInt64, 1))
	assert.Equal(t, int64(math.MaxInt64), saturatingAdd(math.MaxInt64-1, math.MaxInt64))
}

func TestSubmit_ExactCapacityFinishesReel(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)

	resp, err := f.submit(reel, f.entry(1000))
	require.NoError(t, err)
	assert.Equal(t, string(model.ReelFinished), resp.Reel.Status)
	assert.Equal(t, int64(0), *resp.Reel.AvailableSheets)
	assert.Equal(t, 1, f.pub.count(TopicReelFinished))

	_, err = f.submit(reel, f.entry(1))
	var ise *InvalidReelStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.ReelFinished, ise.Status)
}

func TestSubmit_FinishThreshold(t *testing.T) {
	tests := []struct {
		name   string
		sheets int64
		want   model.ReelStatus
	}{
		{"below threshold finishes", 901, model.ReelFinished},
		{"at threshold stays in use", 900, model.ReelInUse},
		{"well above threshold", 10, model.ReelInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reel := f.seedReel(t, 100, 1000)

			resp, err := f.submit(reel, f.entry(tt.sheets))
			require.NoError(t, err)
			assert.Equal(t, string(tt.want), resp.Reel.Status)
		})
	}
}

func TestSubmit_HoldReelRejected(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000, func(r *model.Reel) { r.Status = model.ReelHold })

	_, err := f.submit(reel, f.entry(10))
	var ise *InvalidReelStateError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, model.ReelHold, ise.Status)
	assert.Nil(t, f.reel(t, reel.ID).AvailableSheets)
}

func TestSubmit_UnknownReel(t *testing.T) {
	f := newFixture(t)
	_, err := f.rulings.Submit(context.Background(), operator, dto.SubmitRulingRequest{
		ReelID:  uuid.NewString(),
		Entries: []dto.RulingEntryDraft{f.entry(10)},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmit_ValidationReportsEveryField(t *testing.T) {
	f := newFixture(t)

	_, err := f.rulings.Submit(context.Background(), operator, dto.SubmitRulingRequest{
		ReelID: "not-a-uuid",
		Entries: []dto.RulingEntryDraft{
			{ItemTypeID: f.item.ID.String(), CutoffCm: 0, SheetsRuled: 0},
			{ItemTypeID: uuid.NewString(), CutoffCm: 48, SheetsRuled: 10, Status: "Bogus"},
			{CutoffCm: 48, SheetsRuled: -5},
		},
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "reel_id")
	assert.Contains(t, ve.Fields, "entries[0].cutoff_cm")
	assert.Contains(t, ve.Fields, "entries[0].sheets_ruled")
	assert.Contains(t, ve.Fields, "entries[1].item_type_id")
	assert.Contains(t, ve.Fields, "entries[1].status")
	assert.Contains(t, ve.Fields, "entries[2].item_type_id")
	assert.Contains(t, ve.Fields, "entries[2].sheets_ruled")
	assert.NotContains(t, ve.Fields, "entries[1].cutoff_cm")
}

func TestSubmit_EmptyEntries(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)

	_, err := f.submit(reel)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "entries")
}

func TestSubmit_ProgramSuppliesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prog, err := f.catalog.CreateProgram(ctx, dto.CreateProgramRequest{Name: "Long ruled", ItemTypeID: f.item.ID.String(), CutoffCm: 48})
	require.NoError(t, err)
	reel := f.seedReel(t, 250, 10000)

	resp, err := f.submit(reel, dto.RulingEntryDraft{ProgramID: &prog.ID, SheetsRuled: 5000, Status: "Finished"})
	require.NoError(t, err)

	e := resp.Ruling.Entries[0]
	assert.Equal(t, 48.0, e.CutoffCm)
	assert.Equal(t, f.item.ID.String(), e.ItemTypeID)
	require.NotNil(t, e.ProgramID)
	assert.Equal(t, prog.ID, *e.ProgramID)
	assert.Equal(t, string(model.EntryFinished), e.Status)
	assert.InDelta(t, 4932.1338, e.TheoreticalSheets, 0.001)
}

func TestSubmit_UnknownProgram(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	missing := uuid.NewString()

	_, err := f.submit(reel, dto.RulingEntryDraft{ProgramID: &missing, ItemTypeID: f.item.ID.String(), CutoffCm: 48, SheetsRuled: 10})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "entries[0].program_id")
}

func TestSubmit_BackfillsInitialSheetsOnce(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 250, 0)
	want := yield.InitialSheets(88, 60, DefaultEngineConfig().DefaultCutoffCm, 250)
	require.Positive(t, want)

	_, err := f.submit(reel, f.entry(100))
	require.NoError(t, err)
	stored := f.reel(t, reel.ID)
	require.NotNil(t, stored.InitialSheets)
	assert.Equal(t, want, *stored.InitialSheets)
	assert.Equal(t, want-100, stored.Available())

	_, err = f.submit(reel, f.entry(100))
	require.NoError(t, err)
	stored = f.reel(t, reel.ID)
	assert.Equal(t, want, *stored.InitialSheets)
	assert.Equal(t, want-200, stored.Available())
}

func TestSubmit_ZeroYieldMarksInsufficientData(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000, func(r *model.Reel) { r.GSM = 0 })

	resp, err := f.submit(reel, f.entry(10))
	require.NoError(t, err)
	e := resp.Ruling.Entries[0]
	assert.True(t, e.InsufficientData)
	assert.Zero(t, e.TheoreticalSheets)
	assert.Zero(t, e.Difference)
	assert.Equal(t, int64(990), f.reel(t, reel.ID).Available())
}

func TestSubmit_StockFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	commits := f.store.Commits()

	injected := errors.New("stock table unavailable")
	var mu sync.Mutex
	attempts := 0
	f.store.SetFault(func(op string) error {
		if op != memstore.OpStockUpdate {
			return nil
		}
		mu.Lock()
		attempts++
		mu.Unlock()
		return injected
	})

	_, err := f.submit(reel, f.entry(400))

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, injected)
	assert.Equal(t, testEngineConfig().MaxCommitRetries, attempts)

	stored := f.reel(t, reel.ID)
	assert.Nil(t, stored.AvailableSheets)
	assert.Equal(t, model.ReelAvailable, stored.Status)
	assert.Equal(t, reel.Version, stored.Version)

	_, total, err := f.store.ListRulings(context.Background(), repository.RulingFilter{ReelID: &reel.ID})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.True(t, kg("100").Equal(f.stockRow(t).TotalWeight))
	assert.Equal(t, commits, f.store.Commits())
	assert.Zero(t, f.pub.count(TopicRulingCommitted))
}

func TestSubmit_ConflictAfterRetries(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	f.store.SetBeforeCommit(func() { f.store.BumpReelVersion(reel.ID) })

	_, err := f.submit(reel, f.entry(100))

	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, testEngineConfig().MaxCommitRetries, ce.Attempts)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Nil(t, f.reel(t, reel.ID).AvailableSheets)
}

func TestSubmit_RetryRecoversFromOneConflict(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	var once sync.Once
	f.store.SetBeforeCommit(func() { once.Do(func() { f.store.BumpReelVersion(reel.ID) }) })

	_, err := f.submit(reel, f.entry(100))
	require.NoError(t, err)
	assert.Equal(t, int64(900), f.reel(t, reel.ID).Available())

	_, total, err := f.store.ListRulings(context.Background(), repository.RulingFilter{ReelID: &reel.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestSubmit_ConcurrentSubmittersNeverOverConsume(t *testing.T) {
	cfg := testEngineConfig()
	cfg.MaxCommitRetries = 50
	f := newFixtureWith(t, cfg, nil)
	reel := f.seedReel(t, 100, 1000)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.submit(reel, f.entry(100))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			rejected = append(rejected, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	for _, err := range rejected {
		var (
			ice *InsufficientCapacityError
			ise *InvalidReelStateError
		)
		assert.True(t, errors.As(err, &ice) || errors.As(err, &ise), "unexpected error: %v", err)
	}

	stored := f.reel(t, reel.ID)
	assert.Equal(t, int64(0), stored.Available())
	assert.Equal(t, model.ReelFinished, stored.Status)

	rulings, _, err := f.store.ListRulings(context.Background(), repository.RulingFilter{ReelID: &reel.ID, Limit: 100})
	require.NoError(t, err)
	var ruled int64
	for _, r := range rulings {
		ruled += r.TotalSheetsRuled
	}
	assert.Equal(t, int64(1000), ruled)

	st := f.stockRow(t)
	assert.True(t, st.TotalWeight.IsZero(), st.TotalWeight.String())
	assert.Equal(t, int64(0), st.ReelCount)
}

func TestSubmit_StockEndToEnd(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 10000)

	_, err := f.submit(reel, f.entry(6000))
	require.NoError(t, err)
	st := f.stockRow(t)
	assert.True(t, kg("40").Equal(st.TotalWeight), st.TotalWeight.String())
	assert.Equal(t, int64(1), st.ReelCount)

	resp, err := f.submit(reel, f.entry(4000))
	require.NoError(t, err)
	assert.Equal(t, string(model.ReelFinished), resp.Reel.Status)

	st = f.stockRow(t)
	assert.True(t, st.TotalWeight.IsZero(), st.TotalWeight.String())
	assert.Equal(t, int64(0), st.ReelCount)

	detail, err := f.stock.Get(context.Background(), f.paper.ID)
	require.NoError(t, err)
	require.Len(t, detail.Movements, 3)
	assert.Equal(t, string(model.MovementReelFinished), detail.Movements[0].Kind)
	assert.Equal(t, string(model.MovementConsumed), detail.Movements[1].Kind)
	assert.Equal(t, string(model.MovementReelAdded), detail.Movements[2].Kind)

	assert.Equal(t, 2, f.pub.count(TopicRulingCommitted))
	assert.Equal(t, 1, f.pub.count(TopicReelFinished))
}

func TestRulingQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reel := f.seedReel(t, 100, 1000)

	first, err := f.submit(reel, f.entry(100))
	require.NoError(t, err)
	_, err = f.submit(reel, f.entry(200))
	require.NoError(t, err)

	list, err := f.rulings.ListByReel(ctx, reel.ID, dto.RulingFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Len(t, list.Data, 2)

	id := uuid.MustParse(first.Ruling.ID)
	got, err := f.rulings.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.TotalSheetsRuled)

	slip, err := f.rulings.Slip(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(slip[:4]))

	_, err = f.rulings.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.rulings.ListByReel(ctx, uuid.New(), dto.RulingFilter{})
	assert.ErrorIs(t, err, ErrNotFound)
}

// failingCatalog serves reads from the embedded catalog except the ones set to fail.
type failingCatalog struct {
	repository.CatalogRepository
	paperTypes error
	itemTypes  error
}

func (c failingCatalog) FindPaperType(ctx context.Context, id uuid.UUID) (*model.PaperType, error) {
	if c.paperTypes != nil {
		return nil, c.paperTypes
	}
	return c.CatalogRepository.FindPaperType(ctx, id)
}

func (c failingCatalog) FindItemType(ctx context.Context, id uuid.UUID) (*model.ItemType, error) {
	if c.itemTypes != nil {
		return nil, c.itemTypes
	}
	return c.CatalogRepository.FindItemType(ctx, id)
}

func TestSubmit_CatalogOutageIsNotAValidationError(t *testing.T) {
	f := newFixture(t)
	reel := f.seedReel(t, 100, 1000)
	outage := errors.New("connection reset by peer")
	svc := NewRulingService(f.store, failingCatalog{CatalogRepository: f.store, itemTypes: outage}, f.agg, nil, f.pub, testEngineConfig())

	_, err := svc.Submit(context.Background(), operator, dto.SubmitRulingRequest{ReelID: reel.ID.String(), Entries: []dto.RulingEntryDraft{f.entry(10)}})

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, outage)
	var ve *ValidationError
	assert.False(t, errors.As(err, &ve))
	assert.Equal(t, int64(1000), f.reel(t, reel.ID).Available())
}
