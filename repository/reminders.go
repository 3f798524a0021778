// repository/reminders.go
package repository

import (
	"time"

	"oficinapro-backend/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveReminders returns the owner's active maintenance cadences joined with
// the customer and instrument data the message needs, oldest service first.
func (s *Store) ActiveReminders(ownerID uuid.UUID) ([]services.PendingMaintenance, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}

	query := `
		SELECT mr.id AS reminder_id,
		       mr.customer_id,
		       c.name AS customer_name,
		       c.phone,
		       i.category AS instrument_name,
		       i.brand,
		       i.model_name,
		       mr.last_service_date,
		       mr.last_reminder_sent_at,
		       mr.reminder_count
		FROM maintenance_reminders mr
		JOIN customers c ON c.id = mr.customer_id AND c.deleted_at IS NULL
		JOIN instruments i ON i.id = mr.instrument_id AND i.deleted_at IS NULL
		WHERE mr.owner_id = ?
		  AND mr.is_active = true
		  AND mr.deleted_at IS NULL
		  AND c.is_active = true
		ORDER BY mr.last_service_date ASC
	`

	var rows []services.PendingMaintenance
	if err := s.db.Raw(query, ownerID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkReminderSent increments the reminder counter and stamps the sent date.
func (s *Store) MarkReminderSent(reminderID uuid.UUID, sentAt time.Time) error {
	return s.db.Exec(`
		UPDATE maintenance_reminders
		SET reminder_count = reminder_count + 1, last_reminder_sent_at = ?
		WHERE id = ?`, sentAt, reminderID).Error
}

// PendingEvaluations returns completed orders whose customer has not been
// asked for a review yet and is still under the reminder cap, oldest first.
// The waiting-period threshold is applied by the engine.
func (s *Store) PendingEvaluations(ownerID uuid.UUID, maxCount int) ([]services.PendingEvaluation, error) {
	if ownerID == uuid.Nil {
		return nil, services.ErrUnauthenticated
	}

	query := `
		SELECT er.id AS reminder_id,
		       er.order_id,
		       o.order_number,
		       er.customer_id,
		       c.name AS customer_name,
		       c.phone,
		       i.category AS instrument_name,
		       i.brand,
		       i.model_name,
		       er.completed_at,
		       er.reminder_count
		FROM evaluation_reminders er
		JOIN service_orders o ON o.id = er.order_id
		JOIN customers c ON c.id = er.customer_id AND c.deleted_at IS NULL
		JOIN instruments i ON i.id = o.instrument_id AND i.deleted_at IS NULL
		WHERE er.owner_id = ?
		  AND er.evaluation_sent = false
		  AND er.reminder_count < ?
		  AND er.deleted_at IS NULL
		  AND c.is_active = true
		ORDER BY er.completed_at ASC
	`

	var rows []services.PendingEvaluation
	if err := s.db.Raw(query, ownerID, maxCount).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkEvaluationComplete flips both sent flags in one step; a single outbound
// message satisfies the review ask and the social ask.
func (s *Store) MarkEvaluationComplete(reminderID uuid.UUID) error {
	return s.db.Exec(`
		UPDATE evaluation_reminders
		SET evaluation_sent = true, social_sent = true, reminder_count = reminder_count + 1
		WHERE id = ?`, reminderID).Error
}

// UpsertMaintenanceCadence refreshes the (customer, instrument) cadence when
// an order completes: the completion date becomes the new last service date
// and the reminder counter restarts.
func (s *Store) UpsertMaintenanceCadence(tx *gorm.DB, ownerID, customerID, instrumentID uuid.UUID, serviceDate time.Time) error {
	return tx.Exec(`
		INSERT INTO maintenance_reminders
			(id, owner_id, customer_id, instrument_id, last_service_date, reminder_count, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, true, NOW(), NOW())
		ON CONFLICT (instrument_id) DO UPDATE
		SET last_service_date = EXCLUDED.last_service_date,
		    last_reminder_sent_at = NULL,
		    reminder_count = 0,
		    is_active = true,
		    updated_at = NOW()`,
		uuid.New(), ownerID, customerID, instrumentID, serviceDate).Error
}
