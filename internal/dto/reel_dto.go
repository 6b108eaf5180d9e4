package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type RegisterReelRequest struct {
	PaperTypeID string          `json:"paper_type_id" validate:"required,uuid"`
	ReelNo      string          `json:"reel_no"       validate:"required,min=1,max=64"`
	GSM         float64         `json:"gsm"           validate:"required,gt=0"`
	LengthCm    float64         `json:"length_cm"     validate:"required,gt=0"`
	Weight      decimal.Decimal `json:"weight"        validate:"required,gt=0"`
	// Status may be omitted; registration always starts a reel as Available.
	Status string `json:"status" validate:"omitempty,eq=Available"`
}

// ExtractedReel is one pair produced by the label extraction service.
type ExtractedReel struct {
	ReelNumber string          `json:"reel_number" validate:"required,min=1,max=64"`
	ReelWeight decimal.Decimal `json:"reel_weight" validate:"required,gt=0"`
}

// BatchRegisterRequest registers extracted pairs under one paper type. GSM and
// length come from the paper type.
type BatchRegisterRequest struct {
	PaperTypeID string          `json:"paper_type_id" validate:"required,uuid"`
	Reels       []ExtractedReel `json:"reels"         validate:"required,min=1,max=200,dive"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ReelFilter struct {
	PaperTypeID string `form:"paper_type_id" validate:"omitempty,uuid"`
	Status      string `form:"status"`
	ReelNo      string `form:"reel_no"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ReelResponse struct {
	ID              string          `json:"id"`
	PaperTypeID     string          `json:"paper_type_id"`
	ReelNo          string          `json:"reel_no"`
	GSM             float64         `json:"gsm"`
	LengthCm        float64         `json:"length_cm"`
	Weight          decimal.Decimal `json:"weight"`
	InitialSheets   *int64          `json:"initial_sheets"`
	AvailableSheets *int64          `json:"available_sheets"`
	Status          string          `json:"status"`
	Version         int64           `json:"version"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ReelListResponse struct {
	Data       []ReelResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type StatusLogResponse struct {
	ID        string    `json:"id"`
	ReelID    string    `json:"reel_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

type ChangeStatusResponse struct {
	Reel ReelResponse      `json:"reel"`
	Log  StatusLogResponse `json:"log"`
}

type ExtractionResponse struct {
	Reels []ExtractedReel `json:"reels"`
}
