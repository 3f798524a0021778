package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageTemplate struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_owner_template_type,priority:1;not null"`

	Type         string `gorm:"type:varchar(50);not null;uniqueIndex:idx_owner_template_type,priority:2"`
	Name         string `gorm:"not null"`
	Body         string `gorm:"type:text;not null"`
	Placeholders JSONB  `gorm:"type:jsonb;default:'[]'"`
	IsActive     bool   `gorm:"default:true"`

	gorm.Model
}

func (t *MessageTemplate) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}
