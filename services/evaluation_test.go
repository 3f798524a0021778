package services

import (
	"testing"
	"time"

	"oficinapro-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEvaluationStore struct {
	settings  *models.ReminderSettings
	rows      []PendingEvaluation
	completed []uuid.UUID
	logs      []*models.ReminderLog
}

func (s *fakeEvaluationStore) Settings(ownerID uuid.UUID) (*models.ReminderSettings, error) {
	if s.settings == nil {
		return nil, ErrNotFound
	}
	return s.settings, nil
}

func (s *fakeEvaluationStore) PendingEvaluations(ownerID uuid.UUID, maxCount int) ([]PendingEvaluation, error) {
	return s.rows, nil
}

func (s *fakeEvaluationStore) MarkEvaluationComplete(reminderID uuid.UUID) error {
	s.completed = append(s.completed, reminderID)
	return nil
}

func (s *fakeEvaluationStore) LogDelivery(entry *models.ReminderLog) error {
	s.logs = append(s.logs, entry)
	return nil
}

func newEvaluationEngine(store *fakeEvaluationStore, now time.Time) *EvaluationEngine {
	cache := NewResultCache(DefaultCacheTTL)
	renderer := NewTemplateRenderer(&fakeTemplateStore{}, FallbackKeep)
	delivery := newTestChannel(&fakeConfigStore{})
	engine := NewEvaluationEngine(store, renderer, delivery, cache)
	engine.now = func() time.Time { return now }
	return engine
}

func evaluationRow(completedAt time.Time) PendingEvaluation {
	return PendingEvaluation{
		ReminderID:     uuid.New(),
		OrderID:        uuid.New(),
		OrderNumber:    "OS-2026-0042",
		CustomerID:     uuid.New(),
		CustomerName:   "Felipe",
		Phone:          "(21) 98888-7777",
		InstrumentName: "Cavaquinho",
		Brand:          "Giannini",
		CompletedAt:    completedAt,
	}
}

func evaluationSettings() *models.ReminderSettings {
	return &models.ReminderSettings{
		EvaluationEnabled:  true,
		EvaluationDays:     7,
		EvaluationMax:      3,
		EvaluationSendTime: "09:00",
		ReviewLink:         "https://g.page/r/abc",
		InstagramHandle:    "@oficina",
	}
}

func TestEvaluationPendingDaysThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	past := evaluationRow(time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC))  // 8 days ago
	exact := evaluationRow(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)) // 7 days ago
	fresh := evaluationRow(time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)) // 6 days ago

	store := &fakeEvaluationStore{
		settings: evaluationSettings(),
		rows:     []PendingEvaluation{past, exact, fresh},
	}
	engine := newEvaluationEngine(store, now)

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, past.ReminderID, pending[0].ReminderID)
	assert.Equal(t, 8, pending[0].DaysSinceCompletion)
	assert.Equal(t, exact.ReminderID, pending[1].ReminderID)
	assert.Equal(t, 7, pending[1].DaysSinceCompletion)
}

func TestEvaluationDisabledYieldsNothing(t *testing.T) {
	settings := evaluationSettings()
	settings.EvaluationEnabled = false

	store := &fakeEvaluationStore{
		settings: settings,
		rows:     []PendingEvaluation{evaluationRow(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	engine := newEvaluationEngine(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	pending, err := engine.PendingReminders(uuid.New())
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestEvaluationSettingsDefaults(t *testing.T) {
	engine := newEvaluationEngine(&fakeEvaluationStore{}, time.Now())

	policy, err := engine.Settings(uuid.New())
	require.NoError(t, err)
	assert.True(t, policy.Enabled)
	assert.Equal(t, 7, policy.Days)
	assert.Equal(t, 3, policy.Max)
	assert.Equal(t, "09:00", policy.SendTime)
}

func TestEvaluationSendMarksComplete(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	store := &fakeEvaluationStore{}
	engine := newEvaluationEngine(store, now)

	item := evaluationRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	item.DaysSinceCompletion = 9
	policy := EvaluationPolicy{
		Enabled:         true,
		Days:            7,
		Max:             3,
		ReviewLink:      "https://g.page/r/abc",
		InstagramHandle: "@oficina",
	}

	err := engine.SendReminder(uuid.New(), item, policy)
	require.NoError(t, err)

	// A single message covers review and social, so one send completes the record.
	require.Len(t, store.completed, 1)
	assert.Equal(t, item.ReminderID, store.completed[0])

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, "evaluation", entry.Kind)
	assert.Equal(t, "sent", entry.Status)
	assert.Contains(t, entry.Message, "https://g.page/r/abc")
	assert.Contains(t, entry.Message, "@oficina")
	assert.Contains(t, entry.Message, "OS-2026-0042")
}

func TestEvaluationBatchGatedByTargetHour(t *testing.T) {
	store := &fakeEvaluationStore{
		settings: evaluationSettings(),
		rows:     []PendingEvaluation{evaluationRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))},
	}

	// 14h is too far from the 09:00 target.
	engine := newEvaluationEngine(store, time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC))
	result, err := engine.ProcessAutomaticReminders(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Empty(t, store.completed)
}

func TestEvaluationBatchSendsWithinTargetHour(t *testing.T) {
	store := &fakeEvaluationStore{
		settings: evaluationSettings(),
		rows:     []PendingEvaluation{evaluationRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))},
	}

	// 10h is within one hour of the 09:00 target.
	engine := newEvaluationEngine(store, time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC))
	result, err := engine.ProcessAutomaticReminders(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 0, result.Errors)
	assert.Len(t, store.completed, 1)
}

func TestEvaluationBatchCountsMissingPhone(t *testing.T) {
	broken := evaluationRow(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	broken.Phone = ""

	store := &fakeEvaluationStore{
		settings: evaluationSettings(),
		rows:     []PendingEvaluation{broken},
	}
	engine := newEvaluationEngine(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	result, err := engine.ProcessAutomaticReminders(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 1, result.Errors)
	assert.Empty(t, store.completed)
}

func TestWithinTargetHour(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2026, 3, 10, hour, 15, 0, 0, time.UTC)
	}

	assert.True(t, withinTargetHour("09:00", at(8)))
	assert.True(t, withinTargetHour("09:00", at(9)))
	assert.True(t, withinTargetHour("09:00", at(10)))
	assert.False(t, withinTargetHour("09:00", at(7)))
	assert.False(t, withinTargetHour("09:00", at(11)))
	assert.False(t, withinTargetHour("not-a-time", at(9)))
}
