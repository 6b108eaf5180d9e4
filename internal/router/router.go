package router

import (
	"context"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/config"
	"github.com/Pratham4590/PBM-OP-sub000/internal/handler"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/middleware"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Deps are the infrastructure pieces main builds before wiring the engine.
// Redis, Locker and Publisher are optional.
type Deps struct {
	Store        repository.Store
	Catalog      repository.CatalogRepository
	Redis        *redis.Client
	Locker       service.ReelLocker
	Publisher    service.EventPublisher
	Extractor    service.LabelExtractor
	ExtractionCB *infra.CircuitBreaker
}

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	engineCfg := service.NewEngineConfig(cfg)
	stock := service.NewStockAggregator()

	reelSvc := service.NewReelService(deps.Store, deps.Catalog, stock, deps.Extractor, deps.Publisher, engineCfg)
	rulingSvc := service.NewRulingService(deps.Store, deps.Catalog, stock, deps.Locker, deps.Publisher, engineCfg)
	stockSvc := service.NewStockService(deps.Store, deps.Catalog, stock, engineCfg)
	catalogSvc := service.NewCatalogService(deps.Catalog)

	// ── Handlers ─────────────────────────────────────────────────────────────
	reelsH := handler.NewReelsHandler(reelSvc)
	rulingsH := handler.NewRulingsHandler(rulingSvc)
	stockH := handler.NewStockHandler(stockSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var redisCheck handler.Pinger
	if deps.Redis != nil {
		redisCheck = redisPinger{rdb: deps.Redis}
	}
	r.GET("/health", handler.Health(deps.Store, redisCheck, deps.ExtractionCB))

	anyRole := middleware.RequireRole(lifecycle.RoleOperator, lifecycle.RoleSupervisor, lifecycle.RoleAdmin)
	adminOnly := middleware.RequireRole(lifecycle.RoleAdmin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		// Reference data: everyone reads, admin writes
		v1.GET("/paper-types", anyRole, catalogH.ListPaperTypes)
		v1.GET("/paper-types/:id", anyRole, catalogH.GetPaperType)
		v1.POST("/paper-types", adminOnly, catalogH.CreatePaperType)
		v1.GET("/item-types", anyRole, catalogH.ListItemTypes)
		v1.POST("/item-types", adminOnly, catalogH.CreateItemType)
		v1.GET("/programs", anyRole, catalogH.ListPrograms)
		v1.GET("/programs/:id", anyRole, catalogH.GetProgram)
		v1.POST("/programs", adminOnly, catalogH.CreateProgram)

		reels := v1.Group("/reels", anyRole)
		{
			reels.POST("", reelsH.Register)
			reels.POST("/batch", reelsH.RegisterBatch)
			reels.POST("/extract", reelsH.Extract)
			reels.GET("", reelsH.List)
			reels.GET("/:id", reelsH.Get)
			reels.GET("/:id/rulings", rulingsH.ListByReel)
			reels.GET("/:id/status-logs", reelsH.StatusLogs)
			// The services re-check these roles; the route guard keeps the 403 cheap.
			reels.PATCH("/:id/status", middleware.RequireRole(lifecycle.RoleSupervisor, lifecycle.RoleAdmin), reelsH.ChangeStatus)
			reels.DELETE("/:id", adminOnly, reelsH.Delete)
		}

		rulings := v1.Group("/rulings", anyRole)
		{
			rulings.POST("", rulingsH.Submit)
			rulings.GET("/:id", rulingsH.Get)
			rulings.GET("/:id/slip", rulingsH.Slip)
		}

		stk := v1.Group("/stock", anyRole)
		{
			stk.GET("", stockH.List)
			stk.GET("/export", stockH.Export)
			stk.GET("/:paper_type_id", stockH.Get)
			stk.POST("/rebuild", adminOnly, stockH.Rebuild)
		}
	}

	// Swagger UI outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
