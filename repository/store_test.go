package repository

import (
	"database/sql"
	"testing"
	"time"

	"oficinapro-backend/services"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Store) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock, NewStore(gormDB)
}

func TestSettingsRequiresOwner(t *testing.T) {
	db, _, store := setupMockDB(t)
	defer db.Close()

	_, err := store.Settings(uuid.Nil)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestSettingsNotFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	ownerID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "reminder_settings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Settings(ownerID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	ownerID := uuid.New()
	rows := sqlmock.NewRows([]string{
		"id", "owner_id", "maintenance_enabled", "interval_months", "max_reminders", "maintenance_send_time",
		"evaluation_enabled", "evaluation_days", "evaluation_max", "evaluation_send_time",
	}).AddRow(uuid.New().String(), ownerID.String(), true, 6, 3, "09:00", true, 7, 3, "10:00")

	mock.ExpectQuery(`SELECT \* FROM "reminder_settings"`).
		WillReturnRows(rows)

	settings, err := store.Settings(ownerID)
	require.NoError(t, err)
	assert.Equal(t, 6, settings.IntervalMonths)
	assert.Equal(t, "10:00", settings.EvaluationSendTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveTemplateNotFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT \* FROM "message_templates"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.ActiveTemplate(uuid.New(), "maintenance_reminder")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestActiveRemindersScansJoinedRows(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	ownerID := uuid.New()
	reminderID := uuid.New()
	customerID := uuid.New()
	lastService := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"reminder_id", "customer_id", "customer_name", "phone",
		"instrument_name", "brand", "model_name",
		"last_service_date", "last_reminder_sent_at", "reminder_count",
	}).AddRow(reminderID.String(), customerID.String(), "Ana", "(11) 99999-9999",
		"Violão", "Takamine", "GD30", lastService, nil, 1)

	mock.ExpectQuery(`FROM maintenance_reminders mr`).
		WithArgs(ownerID).
		WillReturnRows(rows)

	reminders, err := store.ActiveReminders(ownerID)
	require.NoError(t, err)
	require.Len(t, reminders, 1)

	row := reminders[0]
	assert.Equal(t, reminderID, row.ReminderID)
	assert.Equal(t, "Ana", row.CustomerName)
	assert.Equal(t, "Violão", row.InstrumentName)
	assert.Nil(t, row.LastReminderSentAt)
	assert.Equal(t, 1, row.ReminderCount)
	assert.True(t, row.LastServiceDate.Equal(lastService))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingEvaluationsAppliesCap(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	ownerID := uuid.New()
	completedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"reminder_id", "order_id", "order_number", "customer_id", "customer_name", "phone",
		"instrument_name", "brand", "model_name", "completed_at", "reminder_count",
	}).AddRow(uuid.New().String(), uuid.New().String(), "OS-2026-0042", uuid.New().String(), "Felipe", "(21) 98888-7777",
		"Cavaquinho", "Giannini", "", completedAt, 0)

	mock.ExpectQuery(`FROM evaluation_reminders er`).
		WithArgs(ownerID, 3).
		WillReturnRows(rows)

	pending, err := store.PendingEvaluations(ownerID, 3)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "OS-2026-0042", pending[0].OrderNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReminderSent(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	reminderID := uuid.New()
	sentAt := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE maintenance_reminders`).
		WithArgs(sentAt, reminderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MarkReminderSent(reminderID, sentAt)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEvaluationComplete(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	reminderID := uuid.New()
	mock.ExpectExec(`UPDATE evaluation_reminders`).
		WithArgs(reminderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.MarkEvaluationComplete(reminderID)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveOwners(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	first := uuid.New()
	second := uuid.New()
	mock.ExpectQuery(`SELECT "id" FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(first.String()).AddRow(second.String()))

	owners, err := store.ActiveOwners()
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, owners)
	assert.NoError(t, mock.ExpectationsWereMet())
}
