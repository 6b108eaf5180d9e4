package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementKind names the reel event that moved a stock aggregate.
type StockMovementKind string

const (
	MovementReelAdded    StockMovementKind = "reel_added"
	MovementConsumed     StockMovementKind = "consumed"
	MovementReelFinished StockMovementKind = "reel_finished"
	MovementReelRestored StockMovementKind = "reel_restored"
	MovementReelRemoved  StockMovementKind = "reel_removed"
	MovementRebuild      StockMovementKind = "rebuild"
)

// StockMovement records every change applied to a Stock aggregate. It is written in
// the same transaction as the aggregate update.
type StockMovement struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaperTypeID  uuid.UUID         `gorm:"type:uuid;not null;index"`
	Kind         StockMovementKind `gorm:"type:varchar(20);not null"`
	ReelID       *uuid.UUID        `gorm:"type:uuid;index"`
	RulingID     *uuid.UUID        `gorm:"type:uuid"`
	WeightBefore decimal.Decimal   `gorm:"type:decimal(14,3);not null"`
	WeightAfter  decimal.Decimal   `gorm:"type:decimal(14,3);not null"`
	CountBefore  int64             `gorm:"not null"`
	CountAfter   int64             `gorm:"not null"`
	CreatedAt    time.Time
}

// TableName overrides GORM's default pluralization.
func (StockMovement) TableName() string { return "stock_movements" }
