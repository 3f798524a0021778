package services

import (
	"testing"
	"time"

	"oficinapro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaintenanceStore struct {
	settings  *models.ReminderSettings
	reminders []PendingMaintenance
	marked    []uuid.UUID
	logs      []*models.ReminderLog
}

func (s *fakeMaintenanceStore) Settings(ownerID uuid.UUID) (*models.ReminderSettings, error) {
	if s.settings == nil {
		return nil, ErrNotFound
	}
	return s.settings, nil
}

func (s *fakeMaintenanceStore) ActiveReminders(ownerID uuid.UUID) ([]PendingMaintenance, error) {
	return s.reminders, nil
}

func (s *fakeMaintenanceStore) MarkReminderSent(reminderID uuid.UUID, sentAt time.Time) error {
	s.marked = append(s.marked, reminderID)
	return nil
}

func (s *fakeMaintenanceStore) LogDelivery(entry *models.ReminderLog) error {
	s.logs = append(s.logs, entry)
	return nil
}

func newMaintenanceEngine(store *fakeMaintenanceStore, now time.Time) *MaintenanceEngine {
	cache := NewResultCache(DefaultCacheTTL)
	renderer := NewTemplateRenderer(&fakeTemplateStore{}, FallbackKeep)
	delivery := newTestChannel(&fakeConfigStore{})
	engine := NewMaintenanceEngine(store, renderer, delivery, cache)
	engine.pace = 0
	engine.now = func() time.Time { return now }
	return engine
}

func maintenanceRow(lastService time.Time) PendingMaintenance {
	return PendingMaintenance{
		ReminderID:      uuid.New(),
		CustomerID:      uuid.New(),
		CustomerName:    "Ana",
		Phone:           "(11) 99999-9999",
		InstrumentName:  "Violão",
		Brand:           "Takamine",
		LastServiceDate: lastService,
	}
}

func TestMaintenancePendingIntervalCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// interval 6 months: due when the last service is on or before 2025-09-11.
	due := maintenanceRow(time.Date(2025, 9, 11, 14, 30, 0, 0, time.UTC))
	notDue := maintenanceRow(time.Date(2025, 9, 12, 8, 0, 0, 0, time.UTC))

	store := &fakeMaintenanceStore{
		settings: &models.ReminderSettings{
			MaintenanceEnabled:  true,
			IntervalMonths:      6,
			MaxReminders:        3,
			MaintenanceSendTime: "09:00",
		},
		reminders: []PendingMaintenance{due, notDue},
	}
	engine := newMaintenanceEngine(store, now)

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, due.ReminderID, pending[0].ReminderID)
}

func TestMaintenancePendingRespectsMaxReminders(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	capped := maintenanceRow(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC))
	capped.ReminderCount = 3

	store := &fakeMaintenanceStore{
		settings: &models.ReminderSettings{
			MaintenanceEnabled: true,
			IntervalMonths:     6,
			MaxReminders:       3,
		},
		reminders: []PendingMaintenance{capped},
	}
	engine := newMaintenanceEngine(store, now)

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMaintenancePendingDedupWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lastService := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	recent := maintenanceRow(lastService)
	recent.LastReminderSentAt = timePtr(time.Date(2026, 2, 20, 9, 0, 0, 0, time.UTC)) // 18 days ago

	old := maintenanceRow(lastService)
	old.LastReminderSentAt = timePtr(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)) // 37 days ago

	store := &fakeMaintenanceStore{
		settings: &models.ReminderSettings{
			MaintenanceEnabled: true,
			IntervalMonths:     6,
			MaxReminders:       3,
		},
		reminders: []PendingMaintenance{recent, old},
	}
	engine := newMaintenanceEngine(store, now)

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, old.ReminderID, pending[0].ReminderID)
}

func TestMaintenanceDisabledYieldsNothing(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeMaintenanceStore{
		settings:  &models.ReminderSettings{MaintenanceEnabled: false, IntervalMonths: 6, MaxReminders: 3},
		reminders: []PendingMaintenance{maintenanceRow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	engine := newMaintenanceEngine(store, now)

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMaintenanceSettingsDefaults(t *testing.T) {
	engine := newMaintenanceEngine(&fakeMaintenanceStore{}, time.Now())

	policy, err := engine.Settings(uuid.New())
	require.NoError(t, err)
	assert.True(t, policy.Enabled)
	assert.Equal(t, 6, policy.IntervalMonths)
	assert.Equal(t, 3, policy.MaxReminders)
	assert.Equal(t, "09:00", policy.SendTime)
}

func TestMaintenanceSendReminderMarksAndLogs(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeMaintenanceStore{}
	engine := newMaintenanceEngine(store, now)

	item := maintenanceRow(time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC))
	err := engine.SendReminder(uuid.New(), item)
	require.NoError(t, err)

	require.Len(t, store.marked, 1)
	assert.Equal(t, item.ReminderID, store.marked[0])

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "maintenance", entry.Kind)
	assert.Equal(t, "sent", entry.Status)
	assert.Equal(t, MethodDirect, entry.Channel)
	assert.Contains(t, entry.DeepLink, "wa.me/5511999999999")
	assert.Contains(t, entry.Message, "Ana")
	assert.Contains(t, entry.Message, "6 meses")
}

func TestMaintenanceSendReminderRequiresPhone(t *testing.T) {
	store := &fakeMaintenanceStore{}
	engine := newMaintenanceEngine(store, time.Now())

	item := maintenanceRow(time.Now().AddDate(-1, 0, 0))
	item.Phone = ""

	err := engine.SendReminder(uuid.New(), item)
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "phone", validationErr.Field)
	assert.Empty(t, store.marked)
}

func TestMaintenanceBatchIsolatesFailures(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lastService := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	good := maintenanceRow(lastService)
	broken := maintenanceRow(lastService)
	broken.Phone = ""
	alsoGood := maintenanceRow(lastService)

	store := &fakeMaintenanceStore{
		settings: &models.ReminderSettings{
			MaintenanceEnabled: true,
			IntervalMonths:     6,
			MaxReminders:       3,
		},
		reminders: []PendingMaintenance{good, broken, alsoGood},
	}
	engine := newMaintenanceEngine(store, now)

	result, err := engine.ProcessAutomaticReminders(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent)
	assert.Equal(t, 1, result.Errors)
	assert.Len(t, store.marked, 2)
}

func TestMaintenancePendingCountInvalidatedAfterBatch(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	lastService := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	owner := uuid.New()

	store := &fakeMaintenanceStore{
		settings: &models.ReminderSettings{
			MaintenanceEnabled: true,
			IntervalMonths:     6,
			MaxReminders:       3,
		},
		reminders: []PendingMaintenance{maintenanceRow(lastService)},
	}
	engine := newMaintenanceEngine(store, now)

	count, err := engine.PendingCount(owner)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	result, err := engine.ProcessAutomaticReminders(owner)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)

	// The batch cleared the cached count, so the next read recomputes.
	store.reminders = nil
	count, err = engine.PendingCount(owner)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
