package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockResponse struct {
	PaperTypeID   string          `json:"paper_type_id"`
	PaperTypeName string          `json:"paper_type_name,omitempty"`
	LengthCm      float64         `json:"length_cm"`
	GSM           float64         `json:"gsm"`
	TotalWeight   decimal.Decimal `json:"total_weight"`
	ReelCount     int64           `json:"reel_count"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type StockMovementResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	ReelID       *string         `json:"reel_id"`
	RulingID     *string         `json:"ruling_id"`
	WeightBefore decimal.Decimal `json:"weight_before"`
	WeightAfter  decimal.Decimal `json:"weight_after"`
	CountBefore  int64           `json:"count_before"`
	CountAfter   int64           `json:"count_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

type StockDetailResponse struct {
	Stock     StockResponse           `json:"stock"`
	Movements []StockMovementResponse `json:"movements"`
}

type RebuildStockResponse struct {
	Stocks []StockResponse `json:"stocks"`
}
