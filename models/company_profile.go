package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyProfile is the business identity stamped into outgoing messages.
type CompanyProfile struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	OwnerID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`

	Name    string `gorm:"not null"`
	CNPJ    string
	Phone   string
	Address string
	Hours   string // e.g. "09:00 às 18:00"
	Days    string // e.g. "Segunda a Sexta"

	gorm.Model
}

func (p *CompanyProfile) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}
