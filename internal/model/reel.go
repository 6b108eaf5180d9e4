package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReelStatus is the lifecycle state of a reel.
type ReelStatus string

const (
	ReelAvailable ReelStatus = "Available"
	ReelInUse     ReelStatus = "In Use"
	ReelFinished  ReelStatus = "Finished"
	ReelHold      ReelStatus = "Hold"
)

// Reel is a physical roll of paper, the unit of inventory.
// InitialSheets is nil until the first ruling backfills it; AvailableSheets nil means
// "same as InitialSheets".
type Reel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PaperTypeID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReelNo          string          `gorm:"uniqueIndex;not null"`
	LengthCm        float64         `gorm:"not null"`
	GSM             float64         `gorm:"column:gsm;not null"`
	Weight          decimal.Decimal `gorm:"type:decimal(12,3);not null"` // kg, original
	InitialSheets   *int64
	AvailableSheets *int64
	Status          ReelStatus `gorm:"type:varchar(20);not null;default:'Available';index"`
	// Version is bumped on every write; updates are conditional on it.
	Version   int64  `gorm:"not null;default:0"`
	CreatedBy string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	PaperType *PaperType `gorm:"foreignKey:PaperTypeID"`
}

// Available returns the remaining theoretical yield, falling back to InitialSheets.
func (r *Reel) Available() int64 {
	if r.AvailableSheets != nil {
		return *r.AvailableSheets
	}
	if r.InitialSheets != nil {
		return *r.InitialSheets
	}
	return 0
}

// Clone returns a deep copy so callers can mutate without aliasing stored state.
func (r *Reel) Clone() *Reel {
	c := *r
	if r.InitialSheets != nil {
		v := *r.InitialSheets
		c.InitialSheets = &v
	}
	if r.AvailableSheets != nil {
		v := *r.AvailableSheets
		c.AvailableSheets = &v
	}
	c.PaperType = nil
	return &c
}
