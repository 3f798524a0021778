// repository/store.go
package repository

import (
	"errors"

	"oficinapro-backend/models"
	"oficinapro-backend/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the GORM-backed implementation of the services' storage
// interfaces.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Settings returns the owner's reminder settings row.
func (s *Store) Settings(ownerID uuid.UUID) (*models.ReminderSettings, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}
	var settings models.ReminderSettings
	if err := s.db.Where("owner_id = ?", ownerID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// ActiveTemplate returns the owner's active customized template for a type.
func (s *Store) ActiveTemplate(ownerID uuid.UUID, templateType string) (*models.MessageTemplate, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}
	var template models.MessageTemplate
	if err := s.db.Where("owner_id = ? AND type = ? AND is_active = true", ownerID, templateType).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// DeliveryConfig returns the owner's dispatch configuration.
func (s *Store) DeliveryConfig(ownerID uuid.UUID) (*models.DeliveryConfig, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}
	var config models.DeliveryConfig
	if err := s.db.Where("owner_id = ?", ownerID).First(&config).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

// CompanyProfile returns the owner's business identity record.
func (s *Store) CompanyProfile(ownerID uuid.UUID) (*models.CompanyProfile, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}
	var profile models.CompanyProfile
	if err := s.db.Where("owner_id = ?", ownerID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// LogDelivery records one outbound message outcome.
func (s *Store) LogDelivery(entry *models.ReminderLog) error {
	return s.db.Create(entry).Error
}

// ActiveOwners lists the owners the scheduler sweeps.
func (s *Store) ActiveOwners() ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.Model(&models.User{}).Where("is_active = ?", true).Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
