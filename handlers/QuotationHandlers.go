package handlers

import (
	"backend/models"
	"backend/repository"
	"backend/services"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrQuotationNotFound is the clean not-found state for quotation lookups; the
// export handlers turn it into a 404 instead of a crash.
var ErrQuotationNotFound = errors.New("quotation not found")

// ==================== QUOTATION OPERATIONS ====================

// CreateQuotation creates a quotation header and its line items atomically
// @Summary Create quotation
// @Description Validate the cart, compute totals server-side, and insert header plus items in one transaction
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body models.CreateQuotationRequest true "Quotation creation request"
// @Success 201 {object} models.QuotationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/quotations [post]
func CreateQuotation(db *sql.DB) gin.HandlerFunc {
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

		var req models.CreateQuotationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Validation failures block submission with no state change.
		if req.ClienteID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selecciona un cliente"})
			return
		}
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Agrega al menos un producto"})
			return
		}
		if req.ValidezDias <= 0 {
			req.ValidezDias = 5
		}

		// The customer must exist inside the caller's partition.
		var clienteExists bool
		err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM clientes WHERE id = $1 AND vendedor_id = $2)`,
			req.ClienteID, user.VendedorID).Scan(&clienteExists)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
			return
		}
		if !clienteExists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Customer does not exist"})
			return
		}

		// Totals are always recomputed server-side from the submitted cart;
		// whatever the client displayed is advisory only.
		lines := make([]services.PriceLine, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, services.PriceLine{
				PrecioUnitario: item.PrecioUnitario,
				Cantidad:       item.Cantidad,
			})
		}
		totals, err := services.ComputeTotals(lines, req.Descuento, req.IVA)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// Header and items go in one transaction. A failing item insert rolls
		// the header back too, so no orphaned quotation can exist.
		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		numero, err := repository.NextQuotationNumber(tx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to allocate quotation number", "details": err.Error()})
			return
		}

		quotation := models.Quotation{
			Numero:        numero,
			ClienteID:     req.ClienteID,
			VendedorID:    user.VendedorID,
			Fecha:         time.Now(),
			Subtotal:      totals.Subtotal,
			Descuento:     req.Descuento,
			IVA:           req.IVA,
			Total:         totals.Total,
			ValidezDias:   req.ValidezDias,
			Observaciones: req.Observaciones,
			Estado:        models.QuotationPending,
		}

		err = tx.QueryRow(`
			INSERT INTO cotizaciones (numero, cliente_id, vendedor_id, fecha, subtotal, descuento, iva,
			                          total, validez_dias, observaciones, estado, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $4)
			RETURNING id, created_at`,
			quotation.Numero, quotation.ClienteID, quotation.VendedorID, quotation.Fecha,
			quotation.Subtotal, quotation.Descuento, quotation.IVA, quotation.Total,
			quotation.ValidezDias, quotation.Observaciones, quotation.Estado,
		).Scan(&quotation.ID, &quotation.CreatedAt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quotation", "details": err.Error()})
			return
		}

		for _, item := range req.Items {
			// Unit prices are snapshotted here; later product price changes
			// never touch an existing quotation.
			_, err = tx.Exec(`
				INSERT INTO cotizacion_items (cotizacion_id, producto_id, descripcion, cantidad, precio_unitario, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				quotation.ID, item.ProductoID, item.Descripcion, item.Cantidad,
				item.PrecioUnitario, services.LineSubtotal(item.PrecioUnitario, item.Cantidad))
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quotation items", "details": err.Error()})
				return
			}
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit quotation", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, models.QuotationResponse{
			Success: true,
			Message: "Quotation created successfully",
			Data:    &quotation,
		})
	}
}

// GetQuotations lists the caller's quotations
// @Summary Get quotations
// @Tags Quotations
// @Produce json
// @Success 200 {object} models.QuotationListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/quotations [get]
func GetQuotations(db *sql.DB) gin.HandlerFunc {
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

		rows, err := db.Query(`
			SELECT q.id, q.numero, q.cliente_id, q.vendedor_id, q.fecha, q.subtotal, q.descuento,
			       q.iva, q.total, q.validez_dias, COALESCE(q.observaciones, ''), q.estado,
			       cl.nombre, q.created_at
			FROM cotizaciones q
			JOIN clientes cl ON q.cliente_id = cl.id
			WHERE q.vendedor_id = $1
			ORDER BY q.numero DESC`, user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotations", "details": err.Error()})
			return
		}
		defer rows.Close()

		var quotations []models.Quotation
		for rows.Next() {
			var q models.Quotation
			if err := rows.Scan(&q.ID, &q.Numero, &q.ClienteID, &q.VendedorID, &q.Fecha,
				&q.Subtotal, &q.Descuento, &q.IVA, &q.Total, &q.ValidezDias,
				&q.Observaciones, &q.Estado, &q.ClienteNombre, &q.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quotation data", "details": err.Error()})
				return
			}
			quotations = append(quotations, q)
		}
		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating quotations", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.QuotationListResponse{
			Success: true,
			Message: "Quotations retrieved successfully",
			Data:    quotations,
		})
	}
}

// loadQuotationView fetches a quotation with its customer and resolved line
// items. The detail endpoint and all three export handlers share it. Returns
// ErrQuotationNotFound when the id does not exist in the caller's partition.
func loadQuotationView(db *sql.DB, quotationID string, vendedorID int) (*models.QuotationView, error) {
	var view models.QuotationView
	q := &view.Quotation
	cl := &view.Cliente

	err := db.QueryRow(`
		SELECT q.id, q.numero, q.cliente_id, q.vendedor_id, q.fecha, q.subtotal, q.descuento,
		       q.iva, q.total, q.validez_dias, COALESCE(q.observaciones, ''), q.estado, q.created_at,
		       cl.id, cl.nombre, COALESCE(cl.telefono, ''), COALESCE(cl.nit, ''), COALESCE(cl.email, ''),
		       COALESCE(cl.direccion, ''), COALESCE(cl.ciudad, ''), cl.vendedor_id
		FROM cotizaciones q
		JOIN clientes cl ON q.cliente_id = cl.id
		WHERE q.id = $1 AND q.vendedor_id = $2`, quotationID, vendedorID).Scan(
		&q.ID, &q.Numero, &q.ClienteID, &q.VendedorID, &q.Fecha, &q.Subtotal, &q.Descuento,
		&q.IVA, &q.Total, &q.ValidezDias, &q.Observaciones, &q.Estado, &q.CreatedAt,
		&cl.ID, &cl.Nombre, &cl.Telefono, &cl.NIT, &cl.Email,
		&cl.Direccion, &cl.Ciudad, &cl.VendedorID,
	)
	if err == sql.ErrNoRows {
		return nil, ErrQuotationNotFound
	} else if err != nil {
		return nil, err
	}
	q.ClienteNombre = cl.Nombre

	// Line items resolve against the catalog's canonical fields; ad-hoc items
	// (no producto_id) fall back to their stored free-text description.
	rows, err := db.Query(`
		SELECT COALESCE(p.product_name, i.descripcion, ''),
		       COALESCE(p.short_description, p.description, ''),
		       COALESCE(p.image_url_png, p.main_image_url, ''),
		       i.cantidad, i.precio_unitario, i.subtotal
		FROM cotizacion_items i
		LEFT JOIN productos p ON i.producto_id = p.id
		WHERE i.cotizacion_id = $1
		ORDER BY i.id`, q.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.QuotationItemView
		if err := rows.Scan(&item.ProductName, &item.Description, &item.ImageURL,
			&item.Cantidad, &item.PrecioUnitario, &item.Subtotal); err != nil {
			return nil, err
		}
		item.Description = services.HTMLToText(item.Description)
		view.Items = append(view.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return &view, nil
}

// GetQuotation fetches one quotation with customer and resolved items
// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.QuotationViewResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id} [get]
func GetQuotation(db *sql.DB) gin.HandlerFunc {
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

		c.JSON(http.StatusOK, models.QuotationViewResponse{
			Success: true,
			Message: "Quotation retrieved successfully",
			Data:    view,
		})
	}
}

// UpdateQuotationStatus marks a quotation accepted or rejected
// @Summary Update quotation status
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path int true "Quotation ID"
// @Param request body models.UpdateQuotationStatusRequest true "New status"
// @Success 200 {object} models.QuotationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/status [put]
func UpdateQuotationStatus(db *sql.DB) gin.HandlerFunc {
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

		var req models.UpdateQuotationStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		switch req.Estado {
		case models.QuotationPending, models.QuotationAccepted, models.QuotationRejected:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}

		result, err := db.Exec(`UPDATE cotizaciones SET estado = $1 WHERE id = $2 AND vendedor_id = $3`,
			req.Estado, c.Param("id"), user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status", "details": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}

		log.Printf("Quotation %s marked %s by vendedor %d", c.Param("id"), req.Estado, user.VendedorID)
		c.JSON(http.StatusOK, models.QuotationResponse{
			Success: true,
			Message: "Quotation status updated successfully",
		})
	}
}

// DeleteQuotation removes a quotation and its line items
// @Summary Delete quotation
// @Tags Quotations
// @Produce json
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.QuotationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id} [delete]
func DeleteQuotation(db *sql.DB) gin.HandlerFunc {
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

		quotationID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quotation ID"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to begin transaction", "details": err.Error()})
			return
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`DELETE FROM cotizacion_items WHERE cotizacion_id = $1`, quotationID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quotation items", "details": err.Error()})
			return
		}

		result, err := tx.Exec(`DELETE FROM cotizaciones WHERE id = $1 AND vendedor_id = $2`,
			quotationID, user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quotation", "details": err.Error()})
			return
		}
		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Quotation not found"})
			return
		}

		if err := tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit delete", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.QuotationResponse{
			Success: true,
			Message: "Quotation deleted successfully",
		})
	}
}
