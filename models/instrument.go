package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Instrument struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerID uuid.UUID `gorm:"type:uuid;index;not null"`

	Category     string `gorm:"not null"` // violão, guitarra, baixo, etc.
	Brand        string
	ModelName    string
	SerialNumber string
	Accessories  string
	Notes        string
	IsActive     bool `gorm:"default:true"`

	gorm.Model
}
