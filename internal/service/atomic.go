package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

// committer runs atomic units with a bounded retry budget. Conflicts and storage
// failures are retried; caller errors are returned on the first attempt.
type committer struct {
	store      repository.Store
	maxRetries int
	backoff    time.Duration
}

func newCommitter(store repository.Store, maxRetries int, backoff time.Duration) *committer {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &committer{store: store, maxRetries: maxRetries, backoff: backoff}
}

// run executes fn until it commits, fails with a caller error, or exhausts the budget.
// fn is re-run from scratch on every attempt and must not leak state across attempts.
func (c *committer) run(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := c.store.Atomic(ctx, fn)
		if err == nil {
			if attempt > 1 {
				log.Info().Str("op", op).Int("attempt", attempt).Msg("atomic unit committed after retry")
			}
			return nil
		}
		if isCallerError(err) {
			return translate(err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		lastErr = err

		if errors.Is(err, repository.ErrConflict) {
			log.Warn().Str("op", op).Int("attempt", attempt).Msg("atomic unit lost a concurrent update, retrying")
		} else {
			log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("atomic unit failed, retrying")
		}
		if attempt < c.maxRetries {
			if err := c.sleep(ctx, attempt); err != nil {
				return err
			}
		}
	}

	if errors.Is(lastErr, repository.ErrConflict) {
		return &ConflictError{Attempts: c.maxRetries}
	}
	log.Error().Err(lastErr).Str("op", op).Int("attempts", c.maxRetries).Msg("atomic unit gave up")
	return &PersistenceError{Err: lastErr}
}

func (c *committer) sleep(ctx context.Context, attempt int) error {
	if c.backoff <= 0 {
		return nil
	}
	d := c.backoff*time.Duration(attempt) + time.Duration(rand.Int64N(int64(c.backoff)))
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
