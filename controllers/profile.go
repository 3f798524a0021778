package controllers

import (
	"errors"
	"net/http"

	"oficinapro-backend/config"
	"oficinapro-backend/models"
	"oficinapro-backend/services"
	"oficinapro-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProfileController handles company profile and delivery configuration
type ProfileController struct {
	Cache *services.ResultCache
}

type UpdateProfileInput struct {
	Name    *string `json:"name"`
	CNPJ    *string `json:"cnpj"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Hours   *string `json:"hours"`
	Days    *string `json:"days"`
}

type UpdateDeliveryConfigInput struct {
	Method       *string `json:"method" binding:"omitempty,oneof=direct webhook sms"`
	WebhookURL   *string `json:"webhookUrl"`
	APIKey       *string `json:"apiKey"`
	InstanceName *string `json:"instanceName"`
	SMSFrom      *string `json:"smsFrom"`
}

// GetProfile returns the company profile used in outgoing messages
func (pc *ProfileController) GetProfile(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var profile models.CompanyProfile
	if err := config.DB.Where("owner_id = ?", ownerUUID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Profile not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile updates the company profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var profile models.CompanyProfile
	if err := config.DB.Where("owner_id = ?", ownerUUID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Profile not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Name != nil {
		profile.Name = *input.Name
	}
	if input.CNPJ != nil {
		profile.CNPJ = *input.CNPJ
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.Address != nil {
		profile.Address = *input.Address
	}
	if input.Hours != nil {
		profile.Hours = *input.Hours
	}
	if input.Days != nil {
		profile.Days = *input.Days
	}

	if err := config.DB.Save(&profile).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	pc.Cache.Invalidate("company_profile:" + ownerUUID.String())

	c.JSON(http.StatusOK, profile)
}

// GetDeliveryConfig returns the dispatch configuration
func (pc *ProfileController) GetDeliveryConfig(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var deliveryConfig models.DeliveryConfig
	if err := config.DB.Where("owner_id = ?", ownerUUID).First(&deliveryConfig).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			return
		}
		// Nothing stored yet: report the default without persisting it
		deliveryConfig = models.DeliveryConfig{OwnerID: ownerUUID, Method: services.MethodDirect}
	}

	// The API key never leaves the server
	deliveryConfig.APIKey = ""
	c.JSON(http.StatusOK, deliveryConfig)
}

// UpdateDeliveryConfig updates the dispatch configuration
func (pc *ProfileController) UpdateDeliveryConfig(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input UpdateDeliveryConfigInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var deliveryConfig models.DeliveryConfig
	err := config.DB.Where("owner_id = ?", ownerUUID).First(&deliveryConfig).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		deliveryConfig = models.DeliveryConfig{OwnerID: ownerUUID, Method: services.MethodDirect}
	}

	if input.Method != nil {
		deliveryConfig.Method = *input.Method
	}
	if input.WebhookURL != nil {
		deliveryConfig.WebhookURL = *input.WebhookURL
	}
	if input.APIKey != nil {
		deliveryConfig.APIKey = *input.APIKey
	}
	if input.InstanceName != nil {
		deliveryConfig.InstanceName = *input.InstanceName
	}
	if input.SMSFrom != nil {
		deliveryConfig.SMSFrom = *input.SMSFrom
	}

	// The webhook method is unusable without an endpoint
	if deliveryConfig.Method == services.MethodWebhook && deliveryConfig.WebhookURL == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Webhook method requires a webhook URL")
		return
	}

	if err := config.DB.Save(&deliveryConfig).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update delivery configuration")
		return
	}

	pc.Cache.Invalidate("delivery_config:" + ownerUUID.String())

	deliveryConfig.APIKey = ""
	c.JSON(http.StatusOK, deliveryConfig)
}
