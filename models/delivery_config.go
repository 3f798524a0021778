package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryConfig selects how rendered messages leave the system.
type DeliveryConfig struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Method       string `gorm:"type:varchar(20);default:'direct'"` // direct, webhook, sms
	WebhookURL   string
	APIKey       string
	InstanceName string
	SMSFrom      string // Twilio sender number for the sms method

	gorm.Model
}

func (d *DeliveryConfig) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
