package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/config"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/router"
	"github.com/Pratham4590/PBM-OP-sub000/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const eventWorkers = 2

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: console in development, JSON in production
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate schema")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extractionCB := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	deps := router.Deps{
		Store:        repository.NewStore(db),
		Catalog:      repository.NewCatalogRepository(db),
		Extractor:    infra.NewExtractionClient(cfg.ExtractionServiceURL, time.Duration(cfg.ExtractionTimeoutSeconds)*time.Second, extractionCB),
		ExtractionCB: extractionCB,
	}

	// Redis carries the reel locks and the event lists. Rulings stay correct
	// without it, so a missing Redis only degrades.
	var dispatcher *worker.Dispatcher
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, running without reel locks and events")
		} else {
			defer rdb.Close()
			deps.Redis = rdb
			deps.Locker = infra.NewRedisLocker(rdb, cfg.ReelLockTTL())
			if cfg.EventsEnabled {
				dispatcher = worker.NewDispatcher(rdb, 0)
				dispatcher.Start(ctx, eventWorkers)
				deps.Publisher = dispatcher
			}
		}
	}

	r := router.New(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("reel service listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if dispatcher != nil {
		dispatcher.Wait()
	}
	log.Info().Msg("server exited")
}
