package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/infra"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"
	"github.com/Pratham4590/PBM-OP-sub000/internal/yield"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RulingService is the ruling transaction coordinator.
type RulingService interface {
	Submit(ctx context.Context, caller Caller, req dto.SubmitRulingRequest) (*dto.SubmitRulingResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.RulingResponse, error)
	ListByReel(ctx context.Context, reelID uuid.UUID, filter dto.RulingFilter) (*dto.RulingListResponse, error)
	Slip(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type rulingService struct {
	store     repository.Store
	catalog   repository.CatalogRepository
	stock     *StockAggregator
	commit    *committer
	locker    ReelLocker
	publisher EventPublisher
	cfg       EngineConfig
}

func NewRulingService(
	store repository.Store,
	catalog repository.CatalogRepository,
	stock *StockAggregator,
	locker ReelLocker,
	publisher EventPublisher,
	cfg EngineConfig,
) RulingService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &rulingService{
		store:     store,
		catalog:   catalog,
		stock:     stock,
		commit:    newCommitter(store, cfg.MaxCommitRetries, cfg.CommitBackoff),
		locker:    locker,
		publisher: publisher,
		cfg:       cfg,
	}
}

// draft is a validated, program-resolved entry ready to be priced.
type draft struct {
	itemTypeID  uuid.UUID
	programID   *uuid.UUID
	cutoffCm    float64
	sheetsRuled int64
	status      model.EntryStatus
}

var entryStatuses = map[string]model.EntryStatus{
	string(model.EntryInProgress):   model.EntryInProgress,
	string(model.EntryHalfFinished): model.EntryHalfFinished,
	string(model.EntryFinished):     model.EntryFinished,
}

// ── Submit ────────────────────────────────────────────────────────────────────
// Validation runs before any write and reports every field problem together.
// The atomic unit then:
//   1. loads the reel and rejects Finished/Hold
//   2. backfills InitialSheets if missing
//   3. checks capacity against the available sheets
//   4. prices each entry and writes the ruling
//   5. depletes the reel and applies the automatic status
//   6. adjusts the paper type's stock
// Events are published only after the unit commits.

func (s *rulingService) Submit(ctx context.Context, caller Caller, req dto.SubmitRulingRequest) (*dto.SubmitRulingResponse, error) {
	reelID, drafts, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	release := acquire(ctx, s.locker, lockKey(reelID.String()))
	defer release()

	var (
		ruling *model.Ruling
		after  *model.Reel
	)
	err = s.commit.run(ctx, "ruling.submit", func(tx repository.Tx) error {
		reel, err := tx.FindReel(reelID)
		if err != nil {
			return err
		}
		if err := lifecycle.CanRule(reel.Status); err != nil {
			return &InvalidReelStateError{Status: reel.Status}
		}
		EnsureInitialSheets(reel, s.cfg.DefaultCutoffCm)

		var requested int64
		for _, d := range drafts {
			requested = saturatingAdd(requested, d.sheetsRuled)
		}
		available := reel.Available()
		if requested > available {
			return &InsufficientCapacityError{Requested: requested, Available: available}
		}

		before := reel.Clone()
		r := priceRuling(before, drafts, caller)
		if err := tx.CreateRuling(r); err != nil {
			return err
		}

		remaining := available - requested
		reel.AvailableSheets = &remaining
		reel.Status = lifecycle.AfterRuling(remaining, s.cfg.FinishThresholdSheets)
		if err := tx.UpdateReel(reel); err != nil {
			return err
		}

		if _, err := s.stock.Consume(tx, ConsumeEvent{
			Reel:            before,
			RulingID:        r.ID,
			WeightUsed:      WeightForSheets(before, requested),
			RemainingBefore: RemainingWeight(before),
			Finished:        reel.Status == model.ReelFinished,
		}); err != nil {
			return err
		}

		ruling, after = r, reel
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("ruling_id", ruling.ID.String()).
		Str("reel_id", after.ID.String()).
		Int64("sheets", ruling.TotalSheetsRuled).
		Int64("available", after.Available()).
		Str("status", string(after.Status)).
		Msg("ruling committed")

	resp := &dto.SubmitRulingResponse{Ruling: rulingToResponse(ruling), Reel: reelToResponse(after)}
	s.publisher.Publish(ctx, TopicRulingCommitted, resp)
	if after.Status == model.ReelFinished {
		s.publisher.Publish(ctx, TopicReelFinished, resp.Reel)
	}
	return resp, nil
}

// MaxSheetsPerEntry bounds a single entry far above any real reel.
const MaxSheetsPerEntry int64 = 1_000_000_000

// saturatingAdd adds non-negative sheet counts, pinning at MaxInt64 instead of wrapping.
func saturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// validate checks the request shape and resolves program defaults.
func (s *rulingService) validate(ctx context.Context, req dto.SubmitRulingRequest) (uuid.UUID, []draft, error) {
	fields := make(map[string]string)

	reelID, err := uuid.Parse(req.ReelID)
	if err != nil {
		fields["reel_id"] = "must be a valid uuid"
	}
	if len(req.Entries) == 0 {
		fields["entries"] = "at least one entry is required"
	}

	knownItems := make(map[uuid.UUID]bool)
	drafts := make([]draft, 0, len(req.Entries))
	for i, e := range req.Entries {
		key := func(f string) string { return fmt.Sprintf("entries[%d].%s", i, f) }
		d := draft{cutoffCm: e.CutoffCm, sheetsRuled: e.SheetsRuled, status: model.EntryInProgress}
		itemType := e.ItemTypeID

		if e.ProgramID != nil && *e.ProgramID != "" {
			pid, err := uuid.Parse(*e.ProgramID)
			if err != nil {
				fields[key("program_id")] = "must be a valid uuid"
			} else if p, err := s.catalog.FindProgram(ctx, pid); err != nil {
				if !errors.Is(err, repository.ErrNotFound) {
					return uuid.Nil, nil, &PersistenceError{Err: fmt.Errorf("find program: %w", err)}
				}
				fields[key("program_id")] = "program not found"
			} else {
				d.programID = &pid
				if d.cutoffCm == 0 {
					d.cutoffCm = p.CutoffCm
				}
				if itemType == "" {
					itemType = p.ItemTypeID.String()
				}
			}
		}

		if itemType == "" {
			fields[key("item_type_id")] = "required"
		} else if id, err := uuid.Parse(itemType); err != nil {
			fields[key("item_type_id")] = "must be a valid uuid"
		} else {
			ok, seen := knownItems[id]
			if !seen {
				_, err := s.catalog.FindItemType(ctx, id)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return uuid.Nil, nil, &PersistenceError{Err: fmt.Errorf("find item type: %w", err)}
				}
				ok = err == nil
				knownItems[id] = ok
			}
			if !ok {
				fields[key("item_type_id")] = "item type not found"
			}
			d.itemTypeID = id
		}

		if !(d.cutoffCm > 0) || math.IsInf(d.cutoffCm, 0) {
			fields[key("cutoff_cm")] = "must be greater than 0"
		}
		switch {
		case d.sheetsRuled <= 0:
			fields[key("sheets_ruled")] = "must be greater than 0"
		case d.sheetsRuled > MaxSheetsPerEntry:
			fields[key("sheets_ruled")] = fmt.Sprintf("must not exceed %d", MaxSheetsPerEntry)
		}
		if e.Status != "" {
			st, ok := entryStatuses[e.Status]
			if !ok {
				fields[key("status")] = "must be one of In Progress, Half Finished, Finished"
			}
			d.status = st
		}
		drafts = append(drafts, d)
	}

	if len(fields) > 0 {
		return uuid.Nil, nil, &ValidationError{Fields: fields}
	}
	return reelID, drafts, nil
}

// priceRuling builds the ruling envelope for reel (with InitialSheets already
// backfilled). Yield uses the reel's own measurements and each entry's cutoff.
func priceRuling(reel *model.Reel, drafts []draft, caller Caller) *model.Ruling {
	var initial int64
	if reel.InitialSheets != nil {
		initial = *reel.InitialSheets
	}
	weight, _ := reel.Weight.Float64()

	r := &model.Ruling{
		ID:             uuid.New(),
		ReelID:         reel.ID,
		ReelNo:         reel.ReelNo,
		PaperTypeID:    reel.PaperTypeID,
		StartingWeight: RemainingWeight(reel),
		CreatedBy:      caller.Actor(),
	}
	for i, d := range drafts {
		res := yield.Compute(yield.Input{
			LengthCm:      reel.LengthCm,
			GSM:           reel.GSM,
			CutoffCm:      d.cutoffCm,
			ReelWeightKg:  weight,
			InitialSheets: initial,
			SheetsRuled:   d.sheetsRuled,
		})
		if !res.OK {
			log.Warn().
				Str("reel_id", reel.ID.String()).
				Int("position", i).
				Msg("yield could not be computed for ruling entry")
		}
		r.Entries = append(r.Entries, model.RulingEntry{
			ID:                uuid.New(),
			RulingID:          r.ID,
			Position:          i,
			ReelID:            reel.ID,
			PaperTypeID:       reel.PaperTypeID,
			ItemTypeID:        d.itemTypeID,
			ProgramID:         d.programID,
			CutoffCm:          d.cutoffCm,
			SheetsRuled:       d.sheetsRuled,
			TheoreticalSheets: res.TheoreticalSheets,
			Difference:        res.Difference,
			Status:            d.status,
			InsufficientData:  !res.OK,
		})
		r.TotalSheetsRuled += d.sheetsRuled
	}
	return r
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *rulingService) Get(ctx context.Context, id uuid.UUID) (*dto.RulingResponse, error) {
	r, err := s.store.FindRuling(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := rulingToResponse(r)
	return &resp, nil
}

func (s *rulingService) ListByReel(ctx context.Context, reelID uuid.UUID, filter dto.RulingFilter) (*dto.RulingListResponse, error) {
	if _, err := s.store.FindReel(ctx, reelID); err != nil {
		return nil, translate(err)
	}
	page, limit := repository.Paginate(filter.Page, filter.Limit)
	rulings, total, err := s.store.ListRulings(ctx, repository.RulingFilter{ReelID: &reelID, Page: page, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := &dto.RulingListResponse{
		Data:       make([]dto.RulingResponse, 0, len(rulings)),
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
	for i := range rulings {
		out.Data = append(out.Data, rulingToResponse(&rulings[i]))
	}
	return out, nil
}

// Slip renders the printable slip of a committed ruling.
func (s *rulingService) Slip(ctx context.Context, id uuid.UUID) ([]byte, error) {
	r, err := s.store.FindRuling(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return infra.RenderRulingSlip(r)
}
