package service

import (
	"errors"
	"time"

	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// weightPlaces matches the scale of the weight columns.
const weightPlaces = 3

// StockAggregator keeps the per-paper-type stock rows in step with the reel
// population. Every method runs inside the caller's atomic unit and writes one
// stock movement row per adjustment.
type StockAggregator struct {
	clock func() time.Time
}

func NewStockAggregator() *StockAggregator {
	return &StockAggregator{clock: func() time.Time { return time.Now().UTC() }}
}

// ConsumeEvent is the stock-side effect of one committed ruling.
type ConsumeEvent struct {
	Reel            *model.Reel // state before the ruling
	RulingID        uuid.UUID
	WeightUsed      decimal.Decimal
	RemainingBefore decimal.Decimal
	Finished        bool
}

// Consume applies a ruling. A reel that finishes leaves the pool entirely, so its
// whole remaining weight and its count are removed. Otherwise only WeightUsed is.
//
// On finish the delta is RemainingBefore, not the reel's original weight: earlier
// rulings already subtracted their share, and subtracting the original weight
// again would drive the total below the remaining weight of the live reels. For
// an untouched reel the two are equal.
func (a *StockAggregator) Consume(tx repository.Tx, ev ConsumeEvent) (*model.Stock, error) {
	kind := model.MovementConsumed
	delta, count := ev.WeightUsed.Neg(), int64(0)
	if ev.Finished {
		kind = model.MovementReelFinished
		delta, count = ev.RemainingBefore.Neg(), -1
	}
	bootstrap := func() (decimal.Decimal, int64) {
		if ev.Finished {
			return decimal.Zero, 0
		}
		return ev.RemainingBefore.Sub(ev.WeightUsed), 1
	}
	rulingID := ev.RulingID
	return a.apply(tx, ev.Reel, kind, &rulingID, delta, count, bootstrap, true)
}

// AddReel counts a newly registered reel.
func (a *StockAggregator) AddReel(tx repository.Tx, r *model.Reel) (*model.Stock, error) {
	bootstrap := func() (decimal.Decimal, int64) { return r.Weight, 1 }
	return a.apply(tx, r, model.MovementReelAdded, nil, r.Weight, 1, bootstrap, false)
}

// RemoveReel takes a reel's remaining weight out of the pool (manual finish or
// deletion of a live reel).
func (a *StockAggregator) RemoveReel(tx repository.Tx, r *model.Reel, kind model.StockMovementKind) (*model.Stock, error) {
	remaining := RemainingWeight(r)
	bootstrap := func() (decimal.Decimal, int64) { return decimal.Zero, 0 }
	return a.apply(tx, r, kind, nil, remaining.Neg(), -1, bootstrap, true)
}

// RestoreReel puts a reel back into the pool after a manual move out of Finished.
func (a *StockAggregator) RestoreReel(tx repository.Tx, r *model.Reel) (*model.Stock, error) {
	remaining := RemainingWeight(r)
	bootstrap := func() (decimal.Decimal, int64) { return remaining, 1 }
	return a.apply(tx, r, model.MovementReelRestored, nil, remaining, 1, bootstrap, true)
}

func (a *StockAggregator) apply(
	tx repository.Tx,
	r *model.Reel,
	kind model.StockMovementKind,
	rulingID *uuid.UUID,
	delta decimal.Decimal,
	countDelta int64,
	bootstrap func() (decimal.Decimal, int64),
	anomalous bool,
) (*model.Stock, error) {
	now := a.clock()
	reelID := r.ID

	st, err := tx.FindStock(r.PaperTypeID)
	if errors.Is(err, repository.ErrNotFound) {
		weight, count := bootstrap()
		if anomalous {
			log.Warn().
				Str("paper_type_id", r.PaperTypeID.String()).
				Str("reel_id", r.ID.String()).
				Str("kind", string(kind)).
				Msg("stock aggregate missing, bootstrapping from reel")
		}
		st = &model.Stock{
			PaperTypeID: r.PaperTypeID,
			LengthCm:    r.LengthCm,
			GSM:         r.GSM,
			TotalWeight: clampWeight(weight),
			ReelCount:   clampCount(count),
			UpdatedAt:   now,
		}
		if err := tx.CreateStock(st); err != nil {
			return nil, err
		}
		return st, tx.CreateStockMovement(&model.StockMovement{
			PaperTypeID:  st.PaperTypeID,
			Kind:         kind,
			ReelID:       &reelID,
			RulingID:     rulingID,
			WeightBefore: decimal.Zero,
			WeightAfter:  st.TotalWeight,
			CountAfter:   st.ReelCount,
		})
	}
	if err != nil {
		return nil, err
	}

	before, countBefore := st.TotalWeight, st.ReelCount
	st.TotalWeight = clampWeight(st.TotalWeight.Add(delta))
	st.ReelCount = clampCount(st.ReelCount + countDelta)
	st.UpdatedAt = now
	if err := tx.UpdateStock(st); err != nil {
		return nil, err
	}
	return st, tx.CreateStockMovement(&model.StockMovement{
		PaperTypeID:  st.PaperTypeID,
		Kind:         kind,
		ReelID:       &reelID,
		RulingID:     rulingID,
		WeightBefore: before,
		WeightAfter:  st.TotalWeight,
		CountBefore:  countBefore,
		CountAfter:   st.ReelCount,
	})
}

// Rebuild recomputes the aggregates of the given paper types from their reels.
func (a *StockAggregator) Rebuild(tx repository.Tx, paperTypes []model.PaperType) ([]model.Stock, error) {
	now := a.clock()
	out := make([]model.Stock, 0, len(paperTypes))
	for _, pt := range paperTypes {
		reels, err := tx.ListReelsByPaperType(pt.ID)
		if err != nil {
			return nil, err
		}
		weight, count := decimal.Zero, int64(0)
		for i := range reels {
			if !lifecycle.CountsTowardStock(reels[i].Status) {
				continue
			}
			weight = weight.Add(RemainingWeight(&reels[i]))
			count++
		}

		st, err := tx.FindStock(pt.ID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			st = &model.Stock{
				PaperTypeID: pt.ID,
				LengthCm:    pt.LengthCm,
				GSM:         pt.GSM,
				TotalWeight: weight,
				ReelCount:   count,
				UpdatedAt:   now,
			}
			if err := tx.CreateStock(st); err != nil {
				return nil, err
			}
			mv := model.StockMovement{PaperTypeID: pt.ID, Kind: model.MovementRebuild, WeightAfter: weight, CountAfter: count}
			if err := tx.CreateStockMovement(&mv); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			mv := model.StockMovement{
				PaperTypeID:  pt.ID,
				Kind:         model.MovementRebuild,
				WeightBefore: st.TotalWeight,
				CountBefore:  st.ReelCount,
				WeightAfter:  weight,
				CountAfter:   count,
			}
			st.TotalWeight, st.ReelCount, st.UpdatedAt = weight, count, now
			if err := tx.UpdateStock(st); err != nil {
				return nil, err
			}
			if err := tx.CreateStockMovement(&mv); err != nil {
				return nil, err
			}
		}
		out = append(out, *st)
	}
	return out, nil
}

// RemainingWeight is the share of a reel's original weight that has not been ruled
// yet. A reel with no recorded yield still has all of it.
func RemainingWeight(r *model.Reel) decimal.Decimal {
	if r.InitialSheets == nil || *r.InitialSheets <= 0 {
		return r.Weight
	}
	return WeightForSheets(r, r.Available())
}

// WeightForSheets converts a sheet count into kg using the reel's own
// weight-per-sheet.
func WeightForSheets(r *model.Reel, sheets int64) decimal.Decimal {
	if r.InitialSheets == nil || *r.InitialSheets <= 0 {
		return decimal.Zero
	}
	return r.Weight.
		Mul(decimal.NewFromInt(sheets)).
		Div(decimal.NewFromInt(*r.InitialSheets)).
		Round(weightPlaces)
}

func clampWeight(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
