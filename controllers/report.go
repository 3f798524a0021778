package controllers

import (
	"net/http"
	"time"

	"oficinapro-backend/config"
	"oficinapro-backend/utils"

	"github.com/gin-gonic/gin"
)

// ReportController builds reminder-activity analytics
type ReportController struct{}

type reminderActivityRow struct {
	Month  time.Time `json:"month"`
	Kind   string    `json:"kind"`
	Sent   int       `json:"sent"`
	Failed int       `json:"failed"`
}

// GetReminderActivity returns monthly sent/failed series per reminder kind
// for the last six months
func (ReportController) GetReminderActivity(c *gin.Context) {
	ownerUUID, ok := ownerFromContext(c)
	if !ok {
		return
	}

	since := time.Now().AddDate(0, -6, 0)

	query := `
		SELECT date_trunc('month', sent_at) AS month,
		       kind,
		       COUNT(*) FILTER (WHERE status = 'sent') AS sent,
		       COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM reminder_logs
		WHERE owner_id = ? AND sent_at >= ? AND deleted_at IS NULL
		GROUP BY 1, 2
		ORDER BY 1 ASC, 2 ASC
	`

	var rows []reminderActivityRow
	if err := config.DB.Raw(query, ownerUUID, since).Scan(&rows).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": rows})
}
