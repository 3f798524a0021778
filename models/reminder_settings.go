package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderSettings holds both reminder policies, one row per owner.
type ReminderSettings struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	// Preventive-maintenance policy
	MaintenanceEnabled  bool   `gorm:"default:true"`
	IntervalMonths      int    `gorm:"default:6"`
	MaxReminders        int    `gorm:"default:3"`
	MaintenanceSendTime string `gorm:"type:varchar(5);default:'09:00'"`

	// Post-service evaluation policy
	EvaluationEnabled  bool   `gorm:"default:true"`
	EvaluationDays     int    `gorm:"default:7"`
	EvaluationMax      int    `gorm:"default:3"`
	EvaluationSendTime string `gorm:"type:varchar(5);default:'09:00'"`
	ReviewLink         string
	InstagramHandle    string

	gorm.Model
}

func (s *ReminderSettings) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
