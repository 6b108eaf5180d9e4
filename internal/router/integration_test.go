//go:build integration

package router

// Runs the HTTP surface against real Postgres and Redis containers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/config"
	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

type pgEnv struct {
	*testEnv
	rdb        *redis.Client
	failStocks *atomic.Bool
}

func setupPostgres(t *testing.T) *pgEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("reels_test"),
		tcPostgres.WithUsername("reels"),
		tcPostgres.WithPassword("reels"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                   "test",
		JWTSecret:             secret,
		DatabaseURL:           pgURL,
		RedisURL:              rdURL,
		EventsEnabled:         true,
		DefaultCutoffCm:       80,
		FinishThresholdSheets: 100,
		MaxCommitRetries:      10,
		CommitRetryBackoffMs:  5,
		ReelLockTTLSeconds:    5,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))

	// Fails stock updates on demand, after the reel row was already written in
	// the same transaction.
	failStocks := &atomic.Bool{}
	require.NoError(t, db.Callback().Update().Before("gorm:update").Register("test:fail_stocks", func(tx *gorm.DB) {
		if failStocks.Load() && tx.Statement.Table == "stocks" {
			_ = tx.AddError(errors.New("injected stock write failure"))
		}
	}))

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	dispatcher := worker.NewDispatcher(rdb, 0)
	dctx, cancel := context.WithCancel(ctx)
	dispatcher.Start(dctx, 1)
	t.Cleanup(func() {
		cancel()
		dispatcher.Wait()
	})

	store := repository.NewStore(db)
	engine := New(cfg, Deps{
		Store:     store,
		Catalog:   repository.NewCatalogRepository(db),
		Redis:     rdb,
		Locker:    infra.NewRedisLocker(rdb, cfg.ReelLockTTL()),
		Publisher: dispatcher,
	})
	return &pgEnv{testEnv: &testEnv{engine: engine}, rdb: rdb, failStocks: failStocks}
}

// seedReel creates reference data and one 250 kg reel, returning the reel and item type.
func (e *pgEnv) seedReel(t *testing.T, reelNo string) (dto.ReelResponse, dto.ItemTypeResponse) {
	t.Helper()
	adminTok := token(t, "admin")

	w := e.do(t, http.MethodPost, "/v1/paper-types", adminTok, dto.CreatePaperTypeRequest{Name: "Maplitho " + reelNo, GSM: 60, LengthCm: 88})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pt := decode[dto.PaperTypeResponse](t, w)

	w = e.do(t, http.MethodPost, "/v1/item-types", adminTok, dto.CreateItemTypeRequest{Name: "Notebook " + reelNo})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.ItemTypeResponse](t, w)

	w = e.do(t, http.MethodPost, "/v1/reels", token(t, "operator"), map[string]any{
		"paper_type_id": pt.ID, "reel_no": reelNo, "gsm": 60, "length_cm": 88, "weight": "250",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ReelResponse](t, w), item
}

func TestIntegration_HealthReportsRedis(t *testing.T) {
	env := setupPostgres(t)
	w := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"connected"`)
}

func TestIntegration_RulingUpdatesStockAndPublishes(t *testing.T) {
	env := setupPostgres(t)
	reel, item := env.seedReel(t, "PG-1")
	opTok := token(t, "operator")

	w := env.do(t, http.MethodPost, "/v1/rulings", opTok, dto.SubmitRulingRequest{
		ReelID:  reel.ID,
		Entries: []dto.RulingEntryDraft{{ItemTypeID: item.ID, CutoffCm: 48, SheetsRuled: 1000}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sub := decode[dto.SubmitRulingResponse](t, w)
	assert.Equal(t, *reel.AvailableSheets-1000, *sub.Reel.AvailableSheets)

	w = env.do(t, http.MethodGet, "/v1/stock/"+reel.PaperTypeID, opTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[dto.StockDetailResponse](t, w)
	assert.Equal(t, int64(1), st.Stock.ReelCount)
	assert.True(t, st.Stock.TotalWeight.LessThan(reel.Weight))

	assert.Eventually(t, func() bool {
		n, err := env.rdb.LLen(context.Background(), worker.EventQueuePrefix+"ruling.committed").Result()
		return err == nil && n == 1
	}, 5*time.Second, 50*time.Millisecond)
}

func TestIntegration_StockFailureRollsBackReel(t *testing.T) {
	env := setupPostgres(t)
	reel, item := env.seedReel(t, "PG-2")
	opTok := token(t, "operator")

	env.failStocks.Store(true)
	w := env.do(t, http.MethodPost, "/v1/rulings", opTok, dto.SubmitRulingRequest{
		ReelID:  reel.ID,
		Entries: []dto.RulingEntryDraft{{ItemTypeID: item.ID, CutoffCm: 48, SheetsRuled: 1000}},
	})
	env.failStocks.Store(false)
	require.Equal(t, http.StatusServiceUnavailable, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"retryable":true`)

	w = env.do(t, http.MethodGet, "/v1/reels/"+reel.ID, opTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[dto.ReelResponse](t, w)
	assert.Equal(t, *reel.AvailableSheets, *after.AvailableSheets)
	assert.Equal(t, "Available", after.Status)

	w = env.do(t, http.MethodGet, "/v1/reels/"+reel.ID+"/rulings", opTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[dto.RulingListResponse](t, w).Total)
}

func TestIntegration_ConcurrentSubmittersNeverOverdraw(t *testing.T) {
	env := setupPostgres(t)
	reel, item := env.seedReel(t, "PG-3")
	opTok := token(t, "operator")

	per := *reel.AvailableSheets / 4
	const workers = 8

	var (
		wg      sync.WaitGroup
		created atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := env.do(t, http.MethodPost, "/v1/rulings", opTok, dto.SubmitRulingRequest{
				ReelID:  reel.ID,
				Entries: []dto.RulingEntryDraft{{ItemTypeID: item.ID, CutoffCm: 48, SheetsRuled: per}},
			})
			if w.Code == http.StatusCreated {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(4), created.Load())

	w := env.do(t, http.MethodGet, "/v1/reels/"+reel.ID, opTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	after := decode[dto.ReelResponse](t, w)
	assert.Equal(t, *reel.AvailableSheets-4*per, *after.AvailableSheets)
}
