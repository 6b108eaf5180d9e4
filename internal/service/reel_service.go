package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/lifecycle"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"
	"github.com/Pratham4590/PBM-OP-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReelService covers reel registration, queries and the manual override path.
type ReelService interface {
	Register(ctx context.Context, caller Caller, req dto.RegisterReelRequest) (*dto.ReelResponse, error)
	RegisterBatch(ctx context.Context, caller Caller, req dto.BatchRegisterRequest) ([]dto.ReelResponse, error)
	Extract(ctx context.Context, filename string, image io.Reader) (*dto.ExtractionResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ReelResponse, error)
	List(ctx context.Context, filter dto.ReelFilter) (*dto.ReelListResponse, error)
	ChangeStatus(ctx context.Context, caller Caller, id uuid.UUID, req dto.ChangeStatusRequest) (*dto.ChangeStatusResponse, error)
	Delete(ctx context.Context, caller Caller, id uuid.UUID) error
	StatusLogs(ctx context.Context, id uuid.UUID) ([]dto.StatusLogResponse, error)
}

// LabelExtractor turns a photographed reel label into number/weight pairs.
type LabelExtractor interface {
	Extract(ctx context.Context, filename string, image io.Reader) ([]dto.ExtractedReel, error)
}

type reelService struct {
	store     repository.Store
	catalog   repository.CatalogRepository
	stock     *StockAggregator
	commit    *committer
	extractor LabelExtractor
	publisher EventPublisher
	cfg       EngineConfig
}

func NewReelService(
	store repository.Store,
	catalog repository.CatalogRepository,
	stock *StockAggregator,
	extractor LabelExtractor,
	publisher EventPublisher,
	cfg EngineConfig,
) ReelService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &reelService{
		store:     store,
		catalog:   catalog,
		stock:     stock,
		commit:    newCommitter(store, cfg.MaxCommitRetries, cfg.CommitBackoff),
		extractor: extractor,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ── Registration ─────────────────────────────────────────────────────────────

func (s *reelService) Register(ctx context.Context, caller Caller, req dto.RegisterReelRequest) (*dto.ReelResponse, error) {
	fields := make(map[string]string)
	pt, err := s.resolvePaperType(ctx, req.PaperTypeID, fields)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ReelNo) == "" {
		fields["reel_no"] = "required"
	}
	if !(req.GSM > 0) {
		fields["gsm"] = "must be greater than 0"
	}
	if !(req.LengthCm > 0) {
		fields["length_cm"] = "must be greater than 0"
	}
	weight := req.Weight.Round(weightPlaces)
	if !weight.IsPositive() {
		fields["weight"] = "must be at least 0.001"
	}
	if req.Status != "" && req.Status != string(model.ReelAvailable) {
		fields["status"] = "new reels are always Available"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	reel := &model.Reel{
		ID:          uuid.New(),
		PaperTypeID: pt.ID,
		ReelNo:      strings.TrimSpace(req.ReelNo),
		LengthCm:    req.LengthCm,
		GSM:         req.GSM,
		Weight:      weight,
		Status:      model.ReelAvailable,
		CreatedBy:   caller.Actor(),
	}
	EnsureInitialSheets(reel, s.cfg.DefaultCutoffCm)

	created, err := s.insert(ctx, "reel.register", []*model.Reel{reel})
	if err != nil {
		return nil, err
	}
	resp := reelToResponse(created[0])
	return &resp, nil
}

// RegisterBatch inserts extracted pairs as reels of one paper type in a single unit.
// Any duplicate reel number, inside the request or already stored, rejects the batch.
func (s *reelService) RegisterBatch(ctx context.Context, caller Caller, req dto.BatchRegisterRequest) ([]dto.ReelResponse, error) {
	fields := make(map[string]string)
	pt, err := s.resolvePaperType(ctx, req.PaperTypeID, fields)
	if err != nil {
		return nil, err
	}
	if len(req.Reels) == 0 {
		fields["reels"] = "at least one reel is required"
	}

	seen := make(map[string]int)
	reels := make([]*model.Reel, 0, len(req.Reels))
	for i, e := range req.Reels {
		no := strings.TrimSpace(e.ReelNumber)
		switch {
		case no == "":
			fields[fmt.Sprintf("reels[%d].reel_number", i)] = "required"
		case seen[no] > 0:
			fields[fmt.Sprintf("reels[%d].reel_number", i)] = fmt.Sprintf("duplicates reels[%d]", seen[no]-1)
		default:
			seen[no] = i + 1
		}
		weight := e.ReelWeight.Round(weightPlaces)
		if !weight.IsPositive() {
			fields[fmt.Sprintf("reels[%d].reel_weight", i)] = "must be at least 0.001"
		}
		if pt == nil {
			continue
		}
		reels = append(reels, &model.Reel{
			ID:          uuid.New(),
			PaperTypeID: pt.ID,
			ReelNo:      no,
			LengthCm:    pt.LengthCm,
			GSM:         pt.GSM,
			Weight:      weight,
			Status:      model.ReelAvailable,
			CreatedBy:   caller.Actor(),
		})
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	for _, r := range reels {
		EnsureInitialSheets(r, s.cfg.DefaultCutoffCm)
	}

	created, err := s.insert(ctx, "reel.register_batch", reels)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReelResponse, 0, len(created))
	for _, r := range created {
		out = append(out, reelToResponse(r))
	}
	log.Info().Str("paper_type_id", pt.ID.String()).Int("count", len(out)).Msg("reel batch registered")
	return out, nil
}

// insert writes reels and their stock contributions in one unit.
func (s *reelService) insert(ctx context.Context, op string, reels []*model.Reel) ([]*model.Reel, error) {
	var created []*model.Reel
	err := s.commit.run(ctx, op, func(tx repository.Tx) error {
		created = created[:0]
		dups := make(map[string]string)
		for i, proto := range reels {
			if _, err := tx.FindReelByNo(proto.ReelNo); err == nil {
				dups[reelNoField(len(reels), i)] = "already registered"
			} else if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		if len(dups) > 0 {
			return &ValidationError{Fields: dups}
		}
		for _, proto := range reels {
			r := proto.Clone()
			if err := tx.CreateReel(r); err != nil {
				return err
			}
			if _, err := s.stock.AddReel(tx, r); err != nil {
				return err
			}
			created = append(created, r)
		}
		return nil
	})
	if errors.Is(err, ErrDuplicate) {
		// a concurrent registration claimed the number between check and insert
		return nil, &ValidationError{Fields: map[string]string{"reel_no": "already registered"}}
	}
	return created, err
}

func reelNoField(n, i int) string {
	if n == 1 {
		return "reel_no"
	}
	return fmt.Sprintf("reels[%d].reel_number", i)
}

// resolvePaperType records caller mistakes in fields and returns storage errors.
func (s *reelService) resolvePaperType(ctx context.Context, raw string, fields map[string]string) (*model.PaperType, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		fields["paper_type_id"] = "must be a valid uuid"
		return nil, nil
	}
	pt, err := s.catalog.FindPaperType(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		fields["paper_type_id"] = "paper type not found"
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Err: fmt.Errorf("find paper type: %w", err)}
	}
	return pt, nil
}

// Extract forwards a label image to the extraction service. Nothing is stored; the
// caller assigns a paper type and submits the pairs through RegisterBatch.
func (s *reelService) Extract(ctx context.Context, filename string, image io.Reader) (*dto.ExtractionResponse, error) {
	if s.extractor == nil {
		return nil, ErrExtractionUnavailable
	}
	pairs, err := s.extractor.Extract(ctx, filename, image)
	if err != nil {
		log.Error().Err(err).Str("filename", filename).Msg("label extraction failed")
		return nil, fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}
	if pairs == nil {
		pairs = []dto.ExtractedReel{}
	}
	return &dto.ExtractionResponse{Reels: pairs}, nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *reelService) Get(ctx context.Context, id uuid.UUID) (*dto.ReelResponse, error) {
	r, err := s.store.FindReel(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := reelToResponse(r)
	return &resp, nil
}

func (s *reelService) List(ctx context.Context, filter dto.ReelFilter) (*dto.ReelListResponse, error) {
	rf := repository.ReelFilter{ReelNo: filter.ReelNo, Page: filter.Page, Limit: filter.Limit}
	if filter.PaperTypeID != "" {
		id, err := uuid.Parse(filter.PaperTypeID)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"paper_type_id": "must be a valid uuid"}}
		}
		rf.PaperTypeID = &id
	}
	if filter.Status != "" {
		st, err := lifecycle.Parse(filter.Status)
		if err != nil {
			return nil, &ValidationError{Fields: map[string]string{"status": "unknown status"}}
		}
		rf.Status = string(st)
	}
	rf.Page, rf.Limit = repository.Paginate(rf.Page, rf.Limit)

	reels, total, err := s.store.ListReels(ctx, rf)
	if err != nil {
		return nil, err
	}
	out := &dto.ReelListResponse{
		Data:       make([]dto.ReelResponse, 0, len(reels)),
		Total:      total,
		Page:       rf.Page,
		Limit:      rf.Limit,
		TotalPages: totalPages(total, rf.Limit),
	}
	for i := range reels {
		out.Data = append(out.Data, reelToResponse(&reels[i]))
	}
	return out, nil
}

func (s *reelService) StatusLogs(ctx context.Context, id uuid.UUID) ([]dto.StatusLogResponse, error) {
	if _, err := s.store.FindReel(ctx, id); err != nil {
		return nil, translate(err)
	}
	logs, err := s.store.ListStatusLogs(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StatusLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, statusLogToResponse(&logs[i]))
	}
	return out, nil
}

// ── Manual override ──────────────────────────────────────────────────────────

// ChangeStatus moves a reel to any status on behalf of an elevated caller. It never
// touches AvailableSheets. Moving into or out of Finished moves the reel's
// remaining weight out of or back into stock.
func (s *reelService) ChangeStatus(ctx context.Context, caller Caller, id uuid.UUID, req dto.ChangeStatusRequest) (*dto.ChangeStatusResponse, error) {
	to, err := lifecycle.Parse(req.Status)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"status": "must be one of Available, In Use, Finished, Hold"}}
	}
	if !lifecycle.IsElevated(caller.Role) {
		return nil, ErrForbidden
	}

	var (
		reel  *model.Reel
		entry *model.StatusLog
	)
	err = s.commit.run(ctx, "reel.change_status", func(tx repository.Tx) error {
		r, err := tx.FindReel(id)
		if err != nil {
			return err
		}
		from := r.Status
		if err := lifecycle.AuthorizeManual(caller.Role, from, to); err != nil {
			if errors.Is(err, lifecycle.ErrNoChange) {
				return &ValidationError{Fields: map[string]string{"status": "reel already has this status"}}
			}
			return err
		}

		r.Status = to
		if err := tx.UpdateReel(r); err != nil {
			return err
		}
		l := &model.StatusLog{ID: uuid.New(), ReelID: r.ID, OldStatus: from, NewStatus: to, Actor: caller.Actor()}
		if err := tx.CreateStatusLog(l); err != nil {
			return err
		}

		switch {
		case lifecycle.CountsTowardStock(from) && !lifecycle.CountsTowardStock(to):
			if _, err := s.stock.RemoveReel(tx, r, model.MovementReelFinished); err != nil {
				return err
			}
		case !lifecycle.CountsTowardStock(from) && lifecycle.CountsTowardStock(to):
			if _, err := s.stock.RestoreReel(tx, r); err != nil {
				return err
			}
		}
		reel, entry = r, l
		return nil
	})
	if err != nil {
		if errors.Is(err, lifecycle.ErrNotElevated) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	log.Info().
		Str("reel_id", reel.ID.String()).
		Str("from", string(entry.OldStatus)).
		Str("to", string(entry.NewStatus)).
		Str("actor", entry.Actor).
		Msg("reel status changed manually")

	resp := &dto.ChangeStatusResponse{Reel: reelToResponse(reel), Log: statusLogToResponse(entry)}
	s.publisher.Publish(ctx, TopicReelStatusChanged, resp)
	if reel.Status == model.ReelFinished {
		s.publisher.Publish(ctx, TopicReelFinished, resp.Reel)
	}
	return resp, nil
}

// Delete hard-deletes a reel no ruling references. Admin only.
func (s *reelService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if caller.Role != lifecycle.RoleAdmin {
		return ErrForbidden
	}
	err := s.commit.run(ctx, "reel.delete", func(tx repository.Tx) error {
		r, err := tx.FindReel(id)
		if err != nil {
			return err
		}
		n, err := tx.CountRulings(id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrReelHasRulings
		}
		if err := tx.DeleteReel(r); err != nil {
			return err
		}
		if lifecycle.CountsTowardStock(r.Status) {
			if _, err := s.stock.RemoveReel(tx, r, model.MovementReelRemoved); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Str("reel_id", id.String()).Str("actor", caller.Actor()).Msg("reel deleted")
	return nil
}
