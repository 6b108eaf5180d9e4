package service

import (
	"github.com/Pratham4590/PBM-OP-sub000/internal/dto"
	"github.com/Pratham4590/PBM-OP-sub000/internal/model"

	"github.com/google/uuid"
)

func reelToResponse(r *model.Reel) dto.ReelResponse {
	resp := dto.ReelResponse{
		ID:          r.ID.String(),
		PaperTypeID: r.PaperTypeID.String(),
		ReelNo:      r.ReelNo,
		GSM:         r.GSM,
		LengthCm:    r.LengthCm,
		Weight:      r.Weight,
		Status:      string(r.Status),
		Version:     r.Version,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.InitialSheets != nil {
		initial, available := *r.InitialSheets, r.Available()
		resp.InitialSheets = &initial
		resp.AvailableSheets = &available
	}
	return resp
}

func rulingToResponse(r *model.Ruling) dto.RulingResponse {
	resp := dto.RulingResponse{
		ID:               r.ID.String(),
		ReelID:           r.ReelID.String(),
		ReelNo:           r.ReelNo,
		PaperTypeID:      r.PaperTypeID.String(),
		StartingWeight:   r.StartingWeight,
		TotalSheetsRuled: r.TotalSheetsRuled,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		Entries:          make([]dto.RulingEntryResponse, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		resp.Entries = append(resp.Entries, dto.RulingEntryResponse{
			ID:                e.ID.String(),
			Position:          e.Position,
			ItemTypeID:        e.ItemTypeID.String(),
			ProgramID:         uuidPtrString(e.ProgramID),
			CutoffCm:          e.CutoffCm,
			SheetsRuled:       e.SheetsRuled,
			TheoreticalSheets: e.TheoreticalSheets,
			Difference:        e.Difference,
			Status:            string(e.Status),
			InsufficientData:  e.InsufficientData,
		})
	}
	return resp
}

func statusLogToResponse(l *model.StatusLog) dto.StatusLogResponse {
	return dto.StatusLogResponse{
		ID:        l.ID.String(),
		ReelID:    l.ReelID.String(),
		OldStatus: string(l.OldStatus),
		NewStatus: string(l.NewStatus),
		Actor:     l.Actor,
		CreatedAt: l.CreatedAt,
	}
}

func stockToResponse(st *model.Stock, name string) dto.StockResponse {
	return dto.StockResponse{
		PaperTypeID:   st.PaperTypeID.String(),
		PaperTypeName: name,
		LengthCm:      st.LengthCm,
		GSM:           st.GSM,
		TotalWeight:   st.TotalWeight,
		ReelCount:     st.ReelCount,
		UpdatedAt:     st.UpdatedAt,
	}
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:           m.ID.String(),
		Kind:         string(m.Kind),
		ReelID:       uuidPtrString(m.ReelID),
		RulingID:     uuidPtrString(m.RulingID),
		WeightBefore: m.WeightBefore,
		WeightAfter:  m.WeightAfter,
		CountBefore:  m.CountBefore,
		CountAfter:   m.CountAfter,
		CreatedAt:    m.CreatedAt,
	}
}

func paperTypeToResponse(p *model.PaperType) dto.PaperTypeResponse {
	return dto.PaperTypeResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		GSM:       p.GSM,
		LengthCm:  p.LengthCm,
		CreatedAt: p.CreatedAt,
	}
}

func itemTypeToResponse(it *model.ItemType) dto.ItemTypeResponse {
	return dto.ItemTypeResponse{ID: it.ID.String(), Name: it.Name, CreatedAt: it.CreatedAt}
}

func programToResponse(p *model.Program) dto.ProgramResponse {
	resp := dto.ProgramResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		ItemTypeID: p.ItemTypeID.String(),
		CutoffCm:   p.CutoffCm,
		CreatedAt:  p.CreatedAt,
	}
	if p.ItemType != nil {
		resp.ItemTypeName = p.ItemType.Name
	}
	return resp
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
