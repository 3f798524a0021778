package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"oficinapro-backend/config"
	"oficinapro-backend/models"
	"oficinapro-backend/repository"
	"oficinapro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItemInput is one catalog service included in an order
type OrderItemInput struct {
	ServiceID uuid.UUID `json:"serviceId" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderInput defines the expected JSON structure for opening a service order
type CreateOrderInput struct {
	CustomerID       uuid.UUID        `json:"customerId" binding:"required"`
	InstrumentID     uuid.UUID        `json:"instrumentId" binding:"required"`
	Items            []OrderItemInput `json:"items"`
	ReportedProblems string           `json:"reportedProblems"`
	Accessories      string           `json:"accessories"`
	Notes            string           `json:"notes"`
	EstimateAmount   *float64         `json:"estimateAmount"`
	PaymentMethod    string           `json:"paymentMethod"`
	DeliveryEstimate *time.Time       `json:"deliveryEstimate"`
}

// UpdateOrderInput defines the expected JSON structure for updating an order
type UpdateOrderInput struct {
	Status           *string    `json:"status" binding:"omitempty,oneof=aberta em_andamento concluida entregue"`
	ReportedProblems *string    `json:"reportedProblems"`
	Accessories      *string    `json:"accessories"`
	Notes            *string    `json:"notes"`
	TotalAmount      *float64   `json:"totalAmount"`
	PendingAmount    *float64   `json:"pendingAmount"`
	PaymentMethod    *string    `json:"paymentMethod"`
	DeliveryEstimate *time.Time `json:"deliveryEstimate"`
}

// CreateOrder opens a new service order for an instrument
func CreateOrder(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var instrument models.Instrument
	if err := config.DB.
		Where("owner_id = ? AND id = ? AND customer_id = ?", ownerUUID, input.InstrumentID, input.CustomerID).
		First(&instrument).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Instrument not found for this customer")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	order := models.ServiceOrder{
		ID:               uuid.New(),
		OwnerID:          ownerUUID,
		OrderNumber:      nextOrderNumber(ownerUUID),
		CustomerID:       input.CustomerID,
		InstrumentID:     input.InstrumentID,
		Status:           "aberta",
		ReportedProblems: input.ReportedProblems,
		Accessories:      input.Accessories,
		Notes:            input.Notes,
		EstimateAmount:   input.EstimateAmount,
		PaymentMethod:    input.PaymentMethod,
		OrderDate:        time.Now(),
		DeliveryEstimate: input.DeliveryEstimate,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var total float64
		for _, item := range input.Items {
			var service models.CatalogService
			if err := tx.Where("owner_id = ? AND id = ?", ownerUUID, item.ServiceID).
				First(&service).Error; err != nil {
				return err
			}
			quantity := item.Quantity
			if quantity < 1 {
				quantity = 1
			}
			orderItem := models.ServiceOrderItem{
				ID:          uuid.New(),
				OrderID:     order.ID,
				ServiceID:   service.ID,
				ServiceName: service.Name,
				Quantity:    quantity,
				UnitPrice:   service.Price,
				TotalPrice:  service.Price * float64(quantity),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			total += orderItem.TotalPrice
		}

		if len(input.Items) > 0 {
			order.TotalAmount = &total
			order.PendingAmount = &total
			return tx.Model(&order).Updates(map[string]interface{}{
				"total_amount":   total,
				"pending_amount": total,
			}).Error
		}
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create order")
		return
	}

	c.JSON(http.StatusCreated, order)
}

// nextOrderNumber builds a sequential OS number per owner and year
func nextOrderNumber(ownerID uuid.UUID) string {
	year := time.Now().Year()
	var count int64
	config.DB.Model(&models.ServiceOrder{}).
		Where("owner_id = ? AND EXTRACT(YEAR FROM order_date) = ?", ownerID, year).
		Count(&count)
	return fmt.Sprintf("OS-%d-%04d", year, count+1)
}

// GetOrders retrieves service orders, optionally filtered by status or customer
func GetOrders(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	query := config.DB.Where("owner_id = ?", ownerUUID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.Query("customerId"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var orders []models.ServiceOrder
	if err := query.Preload("Items").Order("order_date DESC").Find(&orders).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder retrieves a specific order with its items
func GetOrder(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var order models.ServiceOrder
	if err := config.DB.Preload("Items").
		Where("owner_id = ? AND id = ?", ownerUUID, orderUUID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrder updates an existing order
func UpdateOrder(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var input UpdateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var order models.ServiceOrder
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, orderUUID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.ReportedProblems != nil {
		order.ReportedProblems = *input.ReportedProblems
	}
	if input.Accessories != nil {
		order.Accessories = *input.Accessories
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}
	if input.TotalAmount != nil {
		order.TotalAmount = input.TotalAmount
	}
	if input.PendingAmount != nil {
		order.PendingAmount = input.PendingAmount
	}
	if input.PaymentMethod != nil {
		order.PaymentMethod = *input.PaymentMethod
	}
	if input.DeliveryEstimate != nil {
		order.DeliveryEstimate = input.DeliveryEstimate
	}

	if err := config.DB.Save(&order).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to update order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// CompleteOrder marks an order as completed and feeds the reminder pipeline:
// the maintenance cadence restarts from the completion date and a pending
// evaluation ask is created
func CompleteOrder(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	var order models.ServiceOrder
	if err := config.DB.Where("owner_id = ? AND id = ?", ownerUUID, orderUUID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if order.CompletedAt != nil {
		utils.RespondWithError(c, http.StatusConflict, "Order is already completed")
		return
	}

	now := time.Now()
	store := repository.NewStore(config.DB)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&order).Updates(map[string]interface{}{
			"status":       "concluida",
			"completed_at": now,
		}).Error; err != nil {
			return err
		}

		if err := store.UpsertMaintenanceCadence(tx, ownerUUID, order.CustomerID, order.InstrumentID, now); err != nil {
			return err
		}

		evaluation := models.EvaluationReminder{
			OwnerID:     ownerUUID,
			OrderID:     order.ID,
			CustomerID:  order.CustomerID,
			CompletedAt: now,
		}
		return tx.Create(&evaluation).Error
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to complete order")
		return
	}

	config.DB.Model(&models.Customer{}).Where("id = ?", order.CustomerID).
		Update("last_visit", now)

	c.JSON(http.StatusOK, gin.H{"message": "Order completed", "completedAt": now})
}

// DeleteOrder deletes an order and its items
func DeleteOrder(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	orderUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid order ID format")
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("owner_id = ? AND id = ?", ownerUUID, orderUUID).
			Delete(&models.ServiceOrder{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("order_id = ?", orderUUID).Delete(&models.ServiceOrderItem{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Order not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Failed to delete order")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
