package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RulingEntryDraft is one proposed consumption line. Field-level rules are checked
// by the ruling service so that every problem is reported at once.
type RulingEntryDraft struct {
	ItemTypeID  string  `json:"item_type_id"`
	ProgramID   *string `json:"program_id"`
	CutoffCm    float64 `json:"cutoff_cm"`
	SheetsRuled int64   `json:"sheets_ruled"`
	Status      string  `json:"status"`
}

type SubmitRulingRequest struct {
	ReelID  string             `json:"reel_id" validate:"required"`
	Entries []RulingEntryDraft `json:"entries" validate:"required"`
}

type RulingFilter struct {
	Page  int `form:"page,default=1"   validate:"min=1"`
	Limit int `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type RulingEntryResponse struct {
	ID                string  `json:"id"`
	Position          int     `json:"position"`
	ItemTypeID        string  `json:"item_type_id"`
	ProgramID         *string `json:"program_id"`
	CutoffCm          float64 `json:"cutoff_cm"`
	SheetsRuled       int64   `json:"sheets_ruled"`
	TheoreticalSheets float64 `json:"theoretical_sheets"`
	Difference        float64 `json:"difference"`
	Status            string  `json:"status"`
	// InsufficientData marks entries whose yield could not be computed.
	InsufficientData bool `json:"insufficient_data"`
}

type RulingResponse struct {
	ID               string                `json:"id"`
	ReelID           string                `json:"reel_id"`
	ReelNo           string                `json:"reel_no"`
	PaperTypeID      string                `json:"paper_type_id"`
	StartingWeight   decimal.Decimal       `json:"starting_weight"`
	TotalSheetsRuled int64                 `json:"total_sheets_ruled"`
	CreatedBy        string                `json:"created_by"`
	CreatedAt        time.Time             `json:"created_at"`
	Entries          []RulingEntryResponse `json:"entries"`
}

type RulingListResponse struct {
	Data       []RulingResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// SubmitRulingResponse carries the committed ruling and the reel as it stands after
// the commit.
type SubmitRulingResponse struct {
	Ruling RulingResponse `json:"ruling"`
	Reel   ReelResponse   `json:"reel"`
}
