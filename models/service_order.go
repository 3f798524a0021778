package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceOrder struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OwnerID uuid.UUID `gorm:"type:uuid;index;not null"`

	OrderNumber  string    `gorm:"uniqueIndex;not null"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InstrumentID uuid.UUID `gorm:"type:uuid;index;not null"`

	Status           string `gorm:"type:varchar(20);default:'aberta'"` // aberta, em_andamento, concluida, entregue
	ReportedProblems string
	Accessories      string
	Notes            string

	TotalAmount    *float64 `gorm:"type:decimal(10,2)"`
	PendingAmount  *float64 `gorm:"type:decimal(10,2)"`
	EstimateAmount *float64 `gorm:"type:decimal(10,2)"`
	PaymentMethod  string

	OrderDate        time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	DeliveryEstimate *time.Time
	CompletedAt      *time.Time

	Items []ServiceOrderItem `gorm:"foreignKey:OrderID"`
}

type ServiceOrderItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()"`
	OrderID     uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	ServiceName string    `gorm:"not null"`
	Quantity    int       `gorm:"default:1"`
	UnitPrice   float64   `gorm:"type:decimal(10,2);not null"`
	TotalPrice  float64   `gorm:"type:decimal(10,2);not null"`
}
