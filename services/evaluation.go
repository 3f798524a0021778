// services/evaluation.go
package services

import (
	"errors"
	"log"
	"time"

	"oficinapro-backend/models"
	"oficinapro-backend/utils"

	"github.com/google/uuid"
)

// EvaluationPolicy is the post-service review-reminder policy for an owner.
type EvaluationPolicy struct {
	Enabled         bool
	Days            int
	Max             int
	SendTime        string
	ReviewLink      string
	InstagramHandle string
}

// PendingEvaluation is one completed order whose customer has not yet been
// asked for a review.
type PendingEvaluation struct {
	ReminderID          uuid.UUID
	OrderID             uuid.UUID
	OrderNumber         string
	CustomerID          uuid.UUID
	CustomerName        string
	Phone               string
	InstrumentName      string
	Brand               string
	ModelName           string
	CompletedAt         time.Time
	DaysSinceCompletion int
	ReminderCount       int
}

// EvaluationStore is the storage surface the evaluation engine consumes.
// PendingEvaluations returns rows not yet marked complete and under the
// reminder cap; the engine applies the days threshold.
type EvaluationStore interface {
	Settings(ownerID uuid.UUID) (*models.ReminderSettings, error)
	PendingEvaluations(ownerID uuid.UUID, maxCount int) ([]PendingEvaluation, error)
	MarkEvaluationComplete(reminderID uuid.UUID) error
	LogDelivery(entry *models.ReminderLog) error
}

// EvaluationEngine asks customers of recently completed services for a review
// and a social follow with a single message.
type EvaluationEngine struct {
	store    EvaluationStore
	renderer *TemplateRenderer
	delivery *DeliveryChannel
	cache    *ResultCache
	now      func() time.Time
}

func NewEvaluationEngine(store EvaluationStore, renderer *TemplateRenderer, delivery *DeliveryChannel, cache *ResultCache) *EvaluationEngine {
	return &EvaluationEngine{
		store:    store,
		renderer: renderer,
		delivery: delivery,
		cache:    cache,
		now:      time.Now,
	}
}

// Settings returns the owner's evaluation policy with documented defaults.
func (e *EvaluationEngine) Settings(ownerID uuid.UUID) (EvaluationPolicy, error) {
	return cacheLookup(e.cache, "evaluation_settings:"+ownerID.String(), func() (EvaluationPolicy, error) {
		if ownerID == uuid.Nil {
			return defaultEvaluationPolicy(), nil
		}
		stored, err := e.store.Settings(ownerID)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrUnauthenticated) {
				return defaultEvaluationPolicy(), nil
			}
			return EvaluationPolicy{}, err
		}
		policy := EvaluationPolicy{
			Enabled:         stored.EvaluationEnabled,
			Days:            stored.EvaluationDays,
			Max:             stored.EvaluationMax,
			SendTime:        stored.EvaluationSendTime,
			ReviewLink:      stored.ReviewLink,
			InstagramHandle: stored.InstagramHandle,
		}
		if policy.Days < 0 {
			policy.Days = 0
		}
		return policy, nil
	})
}

func defaultEvaluationPolicy() EvaluationPolicy {
	return EvaluationPolicy{
		Enabled:         true,
		Days:            7,
		Max:             3,
		SendTime:        "09:00",
		InstagramHandle: "@oficina",
	}
}

// PendingReminders returns completed orders past the waiting period whose
// customers have not been asked yet.
func (e *EvaluationEngine) PendingReminders(ownerID uuid.UUID) ([]PendingEvaluation, error) {
	policy, err := e.Settings(ownerID)
	if err != nil {
		return nil, err
	}
	if !policy.Enabled {
		return nil, nil
	}

	rows, err := e.store.PendingEvaluations(ownerID, policy.Max)
	if err != nil {
		return nil, err
	}

	var pending []PendingEvaluation
	for _, row := range rows {
		row.DaysSinceCompletion = utils.DaysBetween(row.CompletedAt, e.now())
		if row.DaysSinceCompletion < policy.Days {
			continue
		}
		pending = append(pending, row)
	}
	return pending, nil
}

// PendingCount reports how many evaluation asks are due, cached for the
// statistics view.
func (e *EvaluationEngine) PendingCount(ownerID uuid.UUID) (int, error) {
	return cacheLookup(e.cache, "evaluation_pending:"+ownerID.String(), func() (int, error) {
		pending, err := e.PendingReminders(ownerID)
		if err != nil {
			return 0, err
		}
		return len(pending), nil
	})
}

// SendReminder renders and dispatches one evaluation ask. A single message
// covers both the review link and the social handle, so success marks the
// record fully complete.
func (e *EvaluationEngine) SendReminder(ownerID uuid.UUID, item PendingEvaluation, policy EvaluationPolicy) error {
	if item.Phone == "" {
		return &ValidationError{Field: "phone", Reason: "customer has no phone number"}
	}

	profile, err := e.delivery.LoadCompanyProfile(ownerID)
	if err != nil {
		return err
	}

	data := TemplateData{
		CustomerName:    item.CustomerName,
		InstrumentName:  item.InstrumentName,
		Brand:           item.Brand,
		ModelName:       item.ModelName,
		OrderNumber:     item.OrderNumber,
		DaysReady:       item.DaysSinceCompletion,
		ReviewLink:      policy.ReviewLink,
		InstagramHandle: policy.InstagramHandle,
	}

	message, err := e.renderer.Render(ownerID, TemplateEvaluation, data, *profile)
	if err != nil {
		return err
	}

	receipt, sendErr := e.delivery.Send(ownerID, item.Phone, message)
	e.logOutcome(ownerID, item.CustomerID, message, receipt, sendErr)
	if sendErr != nil {
		return sendErr
	}

	return e.store.MarkEvaluationComplete(item.ReminderID)
}

// ProcessAutomaticReminders sends the due evaluation asks, but only when the
// current hour is within one hour of the configured send time.
func (e *EvaluationEngine) ProcessAutomaticReminders(ownerID uuid.UUID) (BatchResult, error) {
	var result BatchResult

	policy, err := e.Settings(ownerID)
	if err != nil {
		return result, err
	}
	if !policy.Enabled || !withinTargetHour(policy.SendTime, e.now()) {
		return result, nil
	}

	pending, err := e.PendingReminders(ownerID)
	if err != nil {
		return result, err
	}

	for _, item := range pending {
		if err := e.SendReminder(ownerID, item, policy); err != nil {
			log.Printf("Evaluation reminder for customer %s failed: %v", item.CustomerID, err)
			result.Errors++
			continue
		}
		result.Sent++
	}

	if result.Sent > 0 {
		e.cache.Invalidate("evaluation_pending:" + ownerID.String())
	}
	return result, nil
}

func (e *EvaluationEngine) logOutcome(ownerID, customerID uuid.UUID, message string, receipt *DeliveryReceipt, sendErr error) {
	entry := &models.ReminderLog{
		OwnerID:    ownerID,
		CustomerID: customerID,
		Kind:       "evaluation",
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
		log.Printf("Failed to log evaluation reminder for customer %s: %v", customerID, err)
	}
}

// withinTargetHour allows dispatch when now is within one hour of the
// configured "HH:MM" send time.
func withinTargetHour(sendTime string, now time.Time) bool {
	target, err := utils.ParseHour(sendTime)
	if err != nil {
		return false
	}
	diff := now.Hour() - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}
