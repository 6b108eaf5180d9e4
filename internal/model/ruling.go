package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus is the per-entry progress reported by the operator.
type EntryStatus string

const (
	EntryInProgress   EntryStatus = "In Progress"
	EntryHalfFinished EntryStatus = "Half Finished"
	EntryFinished     EntryStatus = "Finished"
)

// Ruling is the envelope for one or more entries ruled from a single reel in one
// submission. Rulings are append-only.
type Ruling struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReelID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReelNo           string          `gorm:"not null"`
	PaperTypeID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartingWeight   decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	TotalSheetsRuled int64           `gorm:"not null"`
	CreatedBy        string          `gorm:"not null"`
	CreatedAt        time.Time       `gorm:"index"`

	Entries []RulingEntry `gorm:"foreignKey:RulingID;constraint:OnDelete:CASCADE"`
}

// RulingEntry is one consumption line. Cutoff is copied at write time so the row
// stays self-contained even if the linked program changes later.
type RulingEntry struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RulingID          uuid.UUID   `gorm:"type:uuid;not null;index"`
	Position          int         `gorm:"not null"`
	ReelID            uuid.UUID   `gorm:"type:uuid;not null;index"`
	PaperTypeID       uuid.UUID   `gorm:"type:uuid;not null"`
	ItemTypeID        uuid.UUID   `gorm:"type:uuid;not null"`
	ProgramID         *uuid.UUID  `gorm:"type:uuid"`
	CutoffCm          float64     `gorm:"not null"`
	SheetsRuled       int64       `gorm:"not null"`
	TheoreticalSheets float64     `gorm:"not null"`
	Difference        float64     `gorm:"not null"`
	Status            EntryStatus `gorm:"type:varchar(20);not null"`
	// InsufficientData is set when the yield could not be computed (zero ream weight
	// or unknown initial sheets); TheoreticalSheets and Difference are then 0.
	InsufficientData bool `gorm:"not null;default:false"`
	CreatedAt        time.Time
}
