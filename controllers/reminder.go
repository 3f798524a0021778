// controllers/reminder.go
package controllers

import (
	"errors"
	"net/http"

	"oficinapro-backend/config"
	"oficinapro-backend/models"
	"oficinapro-backend/services"
	"oficinapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReminderController exposes the reminder pipeline to the API
type ReminderController struct {
	Scheduler   *services.Scheduler
	Maintenance *services.MaintenanceEngine
	Evaluation  *services.EvaluationEngine
	Cache       *services.ResultCache
}

// CreateTemplateInput defines the expected JSON structure
type CreateTemplateInput struct {
	Type string `json:"type" binding:"required,oneof=nova_ordem ordem_concluida maintenance_reminder evaluation_google_instagram"`
	Name string `json:"name" binding:"required"`
	Body string `json:"body" binding:"required"`
}

// UpdateTemplateInput defines the expected JSON structure
type UpdateTemplateInput struct {
	Name     *string `json:"name"`
	Body     *string `json:"body"`
	IsActive *bool   `json:"isActive"`
}

// UpdateSettingsInput covers both reminder policies
type UpdateSettingsInput struct {
	MaintenanceEnabled  *bool   `json:"maintenanceEnabled"`
	IntervalMonths      *int    `json:"intervalMonths" binding:"omitempty,min=1"`
	MaxReminders        *int    `json:"maxReminders" binding:"omitempty,min=0"`
	MaintenanceSendTime *string `json:"maintenanceSendTime"`
	EvaluationEnabled   *bool   `json:"evaluationEnabled"`
	EvaluationDays      *int    `json:"evaluationDays" binding:"omitempty,min=0"`
	EvaluationMax       *int    `json:"evaluationMax" binding:"omitempty,min=0"`
	EvaluationSendTime  *string `json:"evaluationSendTime"`
	ReviewLink          *string `json:"reviewLink"`
	InstagramHandle     *string `json:"instagramHandle"`
}

// CreateTemplate creates a customized message template
func (rc *ReminderController) CreateTemplate(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input CreateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// Check if template type already exists for this workshop
	var existingTemplate models.MessageTemplate
	if err := config.DB.Where("owner_id = ? AND type = ?", ownerUUID, input.Type).
		First(&existingTemplate).Error; err == nil {
		utils.RespondWithError(c, http.StatusConflict, "Template for this type already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	template := models.MessageTemplate{
		ID:       uuid.New(),
		OwnerID:  ownerUUID,
		Type:     input.Type,
		Name:     input.Name,
		Body:     input.Body,
		IsActive: true,
	}

	if err := config.DB.Create(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, template)
}

// GetTemplates retrieves all message templates for the workshop
func (rc *ReminderController) GetTemplates(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var templates []models.MessageTemplate
	if err := config.DB.Where("owner_id = ?", ownerUUID).Find(&templates).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve templates")
		return
	}

	c.JSON(http.StatusOK, templates)
}

// UpdateTemplate updates an existing template
func (rc *ReminderController) UpdateTemplate(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	templateUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	var input UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var template models.MessageTemplate
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, templateUUID).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		template.Name = *input.Name
	}
	if input.Body != nil {
		template.Body = *input.Body
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&template).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update template")
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplate deletes a template; rendering falls back to the built-in default
func (rc *ReminderController) DeleteTemplate(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	templateUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid template ID format")
		return
	}

	result := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, templateUUID).
		Delete(&models.MessageTemplate{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete template")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Template not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Template deleted successfully"})
}

// GetSettings returns the stored reminder settings, creating the default row
// when none exists
func (rc *ReminderController) GetSettings(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var settings models.ReminderSettings
	if err := config.DB.Where("owner_id = ?", ownerUUID).First(&settings).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		settings = models.ReminderSettings{
			OwnerID:             ownerUUID,
			MaintenanceEnabled:  true,
			IntervalMonths:      6,
			MaxReminders:        3,
			MaintenanceSendTime: "09:00",
			EvaluationEnabled:   true,
			EvaluationDays:      7,
			EvaluationMax:       3,
			EvaluationSendTime:  "09:00",
		}
		if err := config.DB.Create(&settings).Error; err != nil {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create settings")
			return
		}
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings updates the reminder policies and drops the cached copies
func (rc *ReminderController) UpdateSettings(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var settings models.ReminderSettings
	if err := config.DB.Where("owner_id = ?", ownerUUID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Settings not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.MaintenanceEnabled != nil {
		settings.MaintenanceEnabled = *input.MaintenanceEnabled
	}
	if input.IntervalMonths != nil {
		settings.IntervalMonths = *input.IntervalMonths
	}
	if input.MaxReminders != nil {
		settings.MaxReminders = *input.MaxReminders
	}
	if input.MaintenanceSendTime != nil {
		settings.MaintenanceSendTime = *input.MaintenanceSendTime
	}
	if input.EvaluationEnabled != nil {
		settings.EvaluationEnabled = *input.EvaluationEnabled
	}
	if input.EvaluationDays != nil {
		settings.EvaluationDays = *input.EvaluationDays
	}
	if input.EvaluationMax != nil {
		settings.EvaluationMax = *input.EvaluationMax
	}
	if input.EvaluationSendTime != nil {
		settings.EvaluationSendTime = *input.EvaluationSendTime
	}
	if input.ReviewLink != nil {
		settings.ReviewLink = *input.ReviewLink
	}
	if input.InstagramHandle != nil {
		settings.InstagramHandle = *input.InstagramHandle
	}

	if err := config.DB.Save(&settings).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	// Stale policy must not drive the next cycle
	rc.Cache.Invalidate("maintenance_settings:" + ownerUUID.String())
	rc.Cache.Invalidate("evaluation_settings:" + ownerUUID.String())

	c.JSON(http.StatusOK, settings)
}

// GetStats returns the scheduler's latest aggregate statistics
func (rc *ReminderController) GetStats(c *gin.Context) {
	if _, ok := ownerFromContext(c); !ok {
		return
	}

	stats := rc.Scheduler.Stats()
	c.JSON(http.StatusOK, gin.H{
		"lastCheck":          stats.LastCheck,
		"maintenanceSent":    stats.MaintenanceSent,
		"evaluationSent":     stats.EvaluationSent,
		"errors":             stats.Errors,
		"pendingMaintenance": stats.PendingMaintenance,
		"pendingEvaluation":  stats.PendingEvaluation,
	})
}

// RunNow triggers a reminder cycle outside the regular timer. The cycle still
// honors the business-hours gate and the re-entrancy guard.
func (rc *ReminderController) RunNow(c *gin.Context) {
	if _, ok := ownerFromContext(c); !ok {
		return
	}

	go rc.Scheduler.RunCycle()
	c.JSON(http.StatusAccepted, gin.H{"message": "Reminder cycle started"})
}

// GetPending lists what each engine would send right now
func (rc *ReminderController) GetPending(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	maintenance, err := rc.Maintenance.PendingReminders(ownerUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute pending maintenance reminders")
		return
	}
	evaluation, err := rc.Evaluation.PendingReminders(ownerUUID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to compute pending evaluation reminders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"maintenance": maintenance,
		"evaluation":  evaluation,
	})
}

// GetLogs lists recent delivery outcomes
func (rc *ReminderController) GetLogs(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var logs []models.ReminderLog
	if err := config.DB.Where("owner_id = ?", ownerUUID).
		Order("sent_at DESC").Limit(100).Find(&logs).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve logs")
		return
	}

	c.JSON(http.StatusOK, logs)
}
