package service

import (
	"context"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/config"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/yield"

	"github.com/rs/zerolog/log"
)

// EngineConfig holds the tunables shared by the reel and ruling services.
type EngineConfig struct {
	// DefaultCutoffCm estimates InitialSheets for reels that have none yet. It is an
	// approximation pending domain review.
	DefaultCutoffCm       float64
	FinishThresholdSheets int64
	MaxCommitRetries      int
	CommitBackoff         time.Duration
}

// DefaultEngineConfig mirrors the config package defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DefaultCutoffCm:       80,
		FinishThresholdSheets: 100,
		MaxCommitRetries:      5,
		CommitBackoff:         20 * time.Millisecond,
	}
}

// NewEngineConfig reads the engine tunables from the loaded configuration.
func NewEngineConfig(cfg *config.Config) EngineConfig {
	return EngineConfig{
		DefaultCutoffCm:       cfg.DefaultCutoffCm,
		FinishThresholdSheets: cfg.FinishThresholdSheets,
		MaxCommitRetries:      cfg.MaxCommitRetries,
		CommitBackoff:         cfg.CommitBackoff(),
	}
}

// EnsureInitialSheets backfills r.InitialSheets from the default cutoff when it has
// never been recorded. It reports whether it changed r; calling it again is a no-op.
// A reel whose measurements give no yield is left unset.
func EnsureInitialSheets(r *model.Reel, defaultCutoffCm float64) bool {
	if r.InitialSheets != nil && *r.InitialSheets > 0 {
		return false
	}
	weight, _ := r.Weight.Float64()
	n := yield.InitialSheets(r.LengthCm, r.GSM, defaultCutoffCm, weight)
	if n <= 0 {
		return false
	}
	r.InitialSheets = &n
	return true
}

func lockKey(r string) string { return "reel:" + r }

// acquire takes the best-effort reel lock. Lock failures are logged and ignored.
func acquire(ctx context.Context, locker ReelLocker, key string) func() {
	if locker == nil {
		return func() {}
	}
	release, err := locker.Lock(ctx, key)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("reel lock not obtained, continuing without it")
		return func() {}
	}
	return release
}
