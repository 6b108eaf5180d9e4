package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusLog audits manual reel status changes.
type StatusLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ReelID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OldStatus ReelStatus `gorm:"type:varchar(20);not null"`
	NewStatus ReelStatus `gorm:"type:varchar(20);not null"`
	Actor     string     `gorm:"not null"`
	CreatedAt time.Time
}
