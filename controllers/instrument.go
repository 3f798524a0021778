package controllers

import (
	"errors"
	"net/http"

	"oficinapro-backend/config"
	"oficinapro-backend/models"
	"oficinapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateInstrumentInput defines the expected JSON structure for creating an instrument
type CreateInstrumentInput struct {
	CustomerID   uuid.UUID `json:"customerId" binding:"required"`
	Category     string    `json:"category" binding:"required"`
	Brand        string    `json:"brand"`
	ModelName    string    `json:"model"`
	SerialNumber string    `json:"serialNumber"`
	Accessories  string    `json:"accessories"`
	Notes        string    `json:"notes"`
}

// UpdateInstrumentInput defines the expected JSON structure for updating an instrument
type UpdateInstrumentInput struct {
	Category     *string `json:"category"`
	Brand        *string `json:"brand"`
	ModelName    *string `json:"model"`
	SerialNumber *string `json:"serialNumber"`
	Accessories  *string `json:"accessories"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"isActive"`
}

// CreateInstrument registers a customer's instrument
func CreateInstrument(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input CreateInstrumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	// The customer must belong to this workshop
	var customer models.Customer
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, input.CustomerID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Customer not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	instrument := models.Instrument{
		ID:           uuid.New(),
		OwnerID:      ownerUUID,
		CustomerID:   input.CustomerID,
		Category:     input.Category,
		Brand:        input.Brand,
		ModelName:    input.ModelName,
		SerialNumber: input.SerialNumber,
		Accessories:  input.Accessories,
		Notes:        input.Notes,
		IsActive:     true,
	}

	if err := config.DB.Create(&instrument).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create instrument")
		return
	}

	c.JSON(http.StatusCreated, instrument)
}

// GetInstruments retrieves the workshop's instruments, optionally by customer
func GetInstruments(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("owner_id = ?", ownerUUID)
	if customerID := c.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var instruments []models.Instrument
	if err := query.Find(&instruments).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve instruments")
		return
	}

	c.JSON(http.StatusOK, instruments)
}

// GetInstrument retrieves a specific instrument by ID
func GetInstrument(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	instrumentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid instrument ID format")
		return
	}

	var instrument models.Instrument
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, instrumentUUID).
		First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Instrument not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, instrument)
}

// UpdateInstrument updates an existing instrument
func UpdateInstrument(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	instrumentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid instrument ID format")
		return
	}

	var input UpdateInstrumentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var instrument models.Instrument
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, instrumentUUID).
		First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Instrument not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Category != nil {
		instrument.Category = *input.Category
	}
	if input.Brand != nil {
		instrument.Brand = *input.Brand
	}
	if input.ModelName != nil {
		instrument.ModelName = *input.ModelName
	}
	if input.SerialNumber != nil {
		instrument.SerialNumber = *input.SerialNumber
	}
	if input.Accessories != nil {
		instrument.Accessories = *input.Accessories
	}
	if input.Notes != nil {
		instrument.Notes = *input.Notes
	}
	if input.IsActive != nil {
		instrument.IsActive = *input.IsActive
	}

	if err := config.DB.Save(&instrument).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update instrument")
		return
	}

	c.JSON(http.StatusOK, instrument)
}

// DeleteInstrument deletes an instrument
func DeleteInstrument(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	instrumentUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid instrument ID format")
		return
	}

	result := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, instrumentUUID).
		Delete(&models.Instrument{})

	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete instrument")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Instrument not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Instrument deleted successfully"})
}
