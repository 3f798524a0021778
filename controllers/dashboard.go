package controllers

import (
	"net/http"
	"time"

	"oficinapro-backend/config"
	"oficinapro-backend/models"

	"github.com/gin-gonic/gin"
)

// GetDashboardOverview returns the counts the dashboard cards show
func GetDashboardOverview(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	var customers, openOrders, completedThisMonth, remindersSentThisMonth int64

	config.DB.Model(&models.Customer{}).
		Where("owner_id = ? AND is_active = true", ownerUUID).Count(&customers)

	config.DB.Model(&models.ServiceOrder{}).
		Where("owner_id = ? AND status IN ?", ownerUUID, []string{"aberta", "em_andamento"}).
		Count(&openOrders)

	monthStart := time.Date(time.Now().Year(), time.Now().Month(), 1, 0, 0, 0, 0, time.Local)
	config.DB.Model(&models.ServiceOrder{}).
		Where("owner_id = ? AND completed_at >= ?", ownerUUID, monthStart).
		Count(&completedThisMonth)

	config.DB.Model(&models.ReminderLog{}).
		Where("owner_id = ? AND status = 'sent' AND sent_at >= ?", ownerUUID, monthStart).
		Count(&remindersSentThisMonth)

	c.JSON(http.StatusOK, gin.H{
		"activeCustomers":        customers,
		"openOrders":             openOrders,
		"completedThisMonth":     completedThisMonth,
		"remindersSentThisMonth": remindersSentThisMonth,
	})
}
