package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaintenanceReminder tracks one (customer, instrument) maintenance cadence.
type MaintenanceReminder struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID      uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InstrumentID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	LastServiceDate    time.Time `gorm:"not null"`
	LastReminderSentAt *time.Time
	ReminderCount      int  `gorm:"default:0"`
	IsActive           bool `gorm:"default:true"`

	gorm.Model
}

func (m *MaintenanceReminder) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}
