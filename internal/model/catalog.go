package model

import (
	"time"

	"github.com/google/uuid"
)

// PaperType groups reels of the same stock; it carries the default length and GSM
// applied to reels registered in batch.
type PaperType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	GSM       float64   `gorm:"column:gsm;not null"`
	LengthCm  float64   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemType is the product a ruling run produces (e.g. a 200-page lined notebook).
type ItemType struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// Program is a saved ruling setup. Its cutoff is copied onto entries that reference it.
type Program struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string    `gorm:"uniqueIndex;not null"`
	ItemTypeID uuid.UUID `gorm:"type:uuid;not null;index"`
	CutoffCm   float64   `gorm:"not null"`
	CreatedAt  time.Time

	ItemType *ItemType `gorm:"foreignKey:ItemTypeID"`
}
