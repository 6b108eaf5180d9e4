package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is the per-paper-type aggregate of remaining weight and reel count across
// non-finished reels. It is maintained incrementally, never recomputed on read.
type Stock struct {
	PaperTypeID uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LengthCm    float64         `gorm:"not null"`
	GSM         float64         `gorm:"column:gsm;not null"`
	TotalWeight decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	ReelCount   int64           `gorm:"not null;default:0"`
	Version     int64           `gorm:"not null;default:0"`
	UpdatedAt   time.Time
}

func (s *Stock) Clone() *Stock {
	c := *s
	return &c
}
