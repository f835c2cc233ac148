package handlers

import (
	"database/sql"
	"net/http"

	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboardStats godoc
// @Summary      Dashboard counters
// @Description  Quotation and customer counts for the caller, plus the global catalog size
// @Tags         Dashboard
// @Produce      json
// @Success      200  {object}  models.DashboardStats
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/dashboard [get]
func GetDashboardStats(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		user, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		var stats models.DashboardStats
		err = db.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM cotizaciones WHERE vendedor_id = $1),
				(SELECT COUNT(*) FROM clientes WHERE vendedor_id = $1),
				(SELECT COUNT(*) FROM productos WHERE is_active = TRUE)`,
			user.VendedorID).
			Scan(&stats.Cotizaciones, &stats.Clientes, &stats.Productos)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard stats", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
