package handlers

import (
	"database/sql"
	"net/http"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
)

// GetQuotationWhatsAppLink godoc
// @Summary      Build WhatsApp handoff link
// @Description  Build a wa.me deep link carrying the pre-filled quotation message
// @Tags         Quotations
// @Produce      json
// @Param        id   path  int  true  "Quotation ID"
// @Success      200  {object}  models.WhatsAppLinkResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Failure      422  {object}  models.ErrorResponse
// @Router       /api/quotations/{id}/whatsapp [get]
func GetQuotationWhatsAppLink(db *sql.DB) gin.HandlerFunc {
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

		view, err := loadQuotationView(db, c.Param("id"), user.VendedorID)
		if err == ErrQuotationNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotation", "details": err.Error()})
			return
		}

		q := view.Quotation
		mensaje := services.BuildWhatsAppMessage(view.Cliente.Nombre, q.Numero,
			services.FormatCOP(q.Total), q.ValidezDias)

		link, err := services.BuildWhatsAppLink(view.Cliente.Telefono, mensaje)
		if err == services.ErrNoCustomerPhone {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "El cliente no tiene teléfono registrado"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build WhatsApp link", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.WhatsAppLinkResponse{
			Success: true,
			Message: "WhatsApp link generated successfully",
			URL:     link,
			Mensaje: mensaje,
		})
	}
}
