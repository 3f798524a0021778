package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_owner_phone,priority:1;not null"`

	Name      string `gorm:"not null"`
	Phone     string `gorm:"not null;uniqueIndex:idx_owner_phone,priority:2"`
	Email     string
	Notes     string
	LastVisit *time.Time
	IsActive  bool `gorm:"default:true"`

	Instruments []Instrument `gorm:"foreignKey:CustomerID"`

	gorm.Model
}
