package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationReminder is one completed order's pending review ask. A single
// outbound message satisfies both the review and the social follow, so both
// sent flags flip together.
type EvaluationReminder struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	OrderID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	CompletedAt    time.Time `gorm:"not null"`
	EvaluationSent bool      `gorm:"default:false"`
	SocialSent     bool      `gorm:"default:false"`
	ReminderCount  int       `gorm:"default:0"`

	gorm.Model
}

func (e *EvaluationReminder) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}
