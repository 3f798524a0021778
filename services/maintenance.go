// services/maintenance.go
package services

import (
	"errors"
	"log"
	"time"

	"oficinapro-backend/models"
	"oficinapro-backend/utils"

	"github.com/google/uuid"
)

// BatchResult tallies one engine's batch outcome. Each reminder's result is
// independent; a failure never aborts the batch.
type BatchResult struct {
	Sent   int
	Errors int
}

// ReminderPolicy is the maintenance-reminder policy in effect for an owner.
type ReminderPolicy struct {
	Enabled        bool
	IntervalMonths int
	MaxReminders   int
	SendTime       string
}

// PendingMaintenance is one customer/instrument due for a maintenance
// reminder, joined with the reference data the message needs.
type PendingMaintenance struct {
	ReminderID         uuid.UUID
	CustomerID         uuid.UUID
	CustomerName       string
	Phone              string
	InstrumentName     string
	Brand              string
	ModelName          string
	LastServiceDate    time.Time
	LastReminderSentAt *time.Time
	ReminderCount      int
}

// MaintenanceStore is the storage surface the maintenance engine consumes.
type MaintenanceStore interface {
	Settings(ownerID uuid.UUID) (*models.ReminderSettings, error)
	ActiveReminders(ownerID uuid.UUID) ([]PendingMaintenance, error)
	MarkReminderSent(reminderID uuid.UUID, sentAt time.Time) error
	LogDelivery(entry *models.ReminderLog) error
}

const dedupWindowDays = 30

// MaintenanceEngine decides which customers are due for a preventive
// maintenance reminder and sends them.
type MaintenanceEngine struct {
	store    MaintenanceStore
	renderer *TemplateRenderer
	delivery *DeliveryChannel
	cache    *ResultCache
	pace     time.Duration
	now      func() time.Time
}

func NewMaintenanceEngine(store MaintenanceStore, renderer *TemplateRenderer, delivery *DeliveryChannel, cache *ResultCache) *MaintenanceEngine {
	return &MaintenanceEngine{
		store:    store,
		renderer: renderer,
		delivery: delivery,
		cache:    cache,
		pace:     2 * time.Second,
		now:      time.Now,
	}
}

// Settings returns the owner's maintenance policy, falling back to the
// documented default when nothing is stored.
func (e *MaintenanceEngine) Settings(ownerID uuid.UUID) (ReminderPolicy, error) {
	return cacheLookup(e.cache, "maintenance_settings:"+ownerID.String(), func() (ReminderPolicy, error) {
		if ownerID == uuid.Nil {
			return defaultMaintenancePolicy(), nil
		}
		stored, err := e.store.Settings(ownerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthenticated) {
				return defaultMaintenancePolicy(), nil
			}
			return ReminderPolicy{}, err
		}
		policy := ReminderPolicy{
			Enabled:        stored.MaintenanceEnabled,
			IntervalMonths: stored.IntervalMonths,
			MaxReminders:   stored.MaxReminders,
			SendTime:       stored.MaintenanceSendTime,
		}
		if policy.IntervalMonths < 1 {
			policy.IntervalMonths = 1
		}
		if policy.MaxReminders < 0 {
			policy.MaxReminders = 0
		}
		return policy, nil
	})
}

func defaultMaintenancePolicy() ReminderPolicy {
	return ReminderPolicy{Enabled: true, IntervalMonths: 6, MaxReminders: 3, SendTime: "09:00"}
}

// PendingReminders selects the active records due for a reminder: last
// service older than the interval (less one day), under the per-customer
// cap, and outside the 30-day dedup window.
func (e *MaintenanceEngine) PendingReminders(ownerID uuid.UUID) ([]PendingMaintenance, error) {
	policy, err := e.Settings(ownerID)
	if err != nil {
		return nil, err
	}
	if !policy.Enabled {
		return nil, nil
	}

	records, err := e.store.ActiveReminders(ownerID)
	if err != nil {
		return nil, err
	}

	today := utils.BeginningOfDay(e.now())
	cutoff := today.AddDate(0, -policy.IntervalMonths, 1)
	dedupBefore := today.AddDate(0, 0, -dedupWindowDays)

	var pending []PendingMaintenance
	for _, record := range records {
		if record.ReminderCount >= policy.MaxReminders {
			continue
		}
		if utils.BeginningOfDay(record.LastServiceDate).After(cutoff) {
			continue
		}
		if record.LastReminderSentAt != nil && !utils.BeginningOfDay(*record.LastReminderSentAt).Before(dedupBefore) {
			continue
		}
		pending = append(pending, record)
	}
	return pending, nil
}

// PendingCount reports how many reminders are currently due, cached for the
// statistics view.
func (e *MaintenanceEngine) PendingCount(ownerID uuid.UUID) (int, error) {
	return cacheLookup(e.cache, "maintenance_pending:"+ownerID.String(), func() (int, error) {
		pending, err := e.PendingReminders(ownerID)
		if err != nil {
			return 0, err
		}
		return len(pending), nil
	})
}

// SendReminder renders and dispatches one maintenance reminder. On success
// the record's counter is incremented and its sent date stamped.
func (e *MaintenanceEngine) SendReminder(ownerID uuid.UUID, item PendingMaintenance) error {
	if item.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "customer has no phone number"}
	}

	profile, err := e.delivery.LoadCompanyProfile(ownerID)
	if err != nil {
		return err
	}

	lastService := item.LastServiceDate
	data := TemplateData{
		CustomerName:         item.CustomerName,
		InstrumentName:       item.InstrumentName,
		Brand:                item.Brand,
		ModelName:            item.ModelName,
		LastServiceDate:      &lastService,
		MonthsWithoutService: utils.MonthsBetween(item.LastServiceDate, e.now()),
	}

	message, err := e.renderer.Render(ownerID, TemplateMaintenance, data, *profile)
	if err != nil {
		return err
	}

	receipt, sendErr := e.delivery.Send(ownerID, item.Phone, message)
	e.logOutcome(ownerID, item.CustomerID, message, receipt, sendErr)
	if sendErr != nil {
		return sendErr
	}

	if err := e.store.MarkReminderSent(item.ReminderID, utils.BeginningOfDay(e.now())); err != nil {
		return err
	}
	return nil
}

// ProcessAutomaticReminders sends every pending reminder sequentially with a
// pacing delay between sends to stay under rate limits.
func (e *MaintenanceEngine) ProcessAutomaticReminders(ownerID uuid.UUID) (BatchResult, error) {
	var result BatchResult

	pending, err := e.PendingReminders(ownerID)
	if err != nil {
		return result, err
	}

	for i, item := range pending {
		if i > 0 && e.pace > 0 {
			time.Sleep(e.pace)
		}
		if err := e.SendReminder(ownerID, item); err != nil {
			log.Printf("Maintenance reminder for customer %s failed: %v", item.CustomerID, err)
			result.Errors++
			continue
		}
		result.Sent++
	}

	if result.Sent > 0 {
		e.cache.Invalidate("maintenance_pending:" + ownerID.String())
	}
	return result, nil
}

func (e *MaintenanceEngine) logOutcome(ownerID, customerID uuid.UUID, message string, receipt *DeliveryReceipt, sendErr error) {
	entry := &models.ReminderLog{
		OwnerID:    ownerID,
		CustomerID: customerID,
		Kind:       "maintenance",
		Message:    message,
		Status:     "sent",
		SentAt:     e.now(),
	}
	if receipt != nil {
		entry.Channel = receipt.Channel
		entry.DeepLink = receipt.DeepLink
	}
	if sendErr != nil {
		entry.Status = "failed"
		entry.ErrorMessage = sendErr.Error()
	}
	if err := e.store.LogDelivery(entry); err != nil {
		log.Printf("Failed to log maintenance reminder for customer %s: %v", customerID, err)
	}
}
