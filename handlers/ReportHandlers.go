package handlers

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend/models"
	"backend/services"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// GetReportStats godoc
// @Summary      Sales report totals
// @Description  Historic and current-month quotation totals for the caller
// @Tags         Reports
// @Produce      json
// @Success      200  {object}  models.ReportStats
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/reports [get]
func GetReportStats(db *sql.DB) gin.HandlerFunc {
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

		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		var stats models.ReportStats
		err = db.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				COALESCE(SUM(total), 0),
				COUNT(*) FILTER (WHERE date_trunc('month', fecha) = date_trunc('month', NOW())),
				COALESCE(SUM(total) FILTER (WHERE date_trunc('month', fecha) = date_trunc('month', NOW())), 0)
			FROM cotizaciones
			WHERE vendedor_id = $1`, user.VendedorID).
			Scan(&stats.TotalCotizaciones, &stats.TotalVentas,
				&stats.CotizacionesEsteMes, &stats.VentasEsteMes)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report stats", "details": err.Error()})
			return
		}

		err = db.QueryRowContext(ctx, `
			SELECT COUNT(DISTINCT cliente_id) FROM cotizaciones WHERE vendedor_id = $1`,
			user.VendedorID).Scan(&stats.ClientesActivos)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch active customers", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}

// ExportQuotationsXLSX godoc
// @Summary      Export quotations to Excel
// @Description  Download the caller's quotations as an XLSX workbook
// @Tags         Reports
// @Success      200  "XLSX file"
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/reports/quotations/xlsx [get]
func ExportQuotationsXLSX(db *sql.DB) gin.HandlerFunc {
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
			SELECT q.numero, cl.nombre, q.fecha, q.subtotal, q.descuento, q.iva, q.total, q.estado
			FROM cotizaciones q
			JOIN clientes cl ON q.cliente_id = cl.id
			WHERE q.vendedor_id = $1
			ORDER BY q.numero`, user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotations", "details": err.Error()})
			return
		}
		defer rows.Close()

		f := excelize.NewFile()
		defer func() {
			if err := f.Close(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
			}
		}()

		sheet := "Cotizaciones"
		index, err := f.NewSheet(sheet)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating sheet"})
			return
		}
		f.SetActiveSheet(index)
		f.DeleteSheet("Sheet1")

		headers := []string{"Número", "Cliente", "Fecha", "Subtotal", "Descuento %", "IVA %", "Total", "Estado"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		rowNum := 2
		for rows.Next() {
			var numero int
			var nombre, estado string
			var fecha time.Time
			var subtotal, descuento, iva, total float64
			if err := rows.Scan(&numero, &nombre, &fecha, &subtotal, &descuento, &iva, &total, &estado); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan quotation data", "details": err.Error()})
				return
			}
			values := []interface{}{numero, nombre, fecha.Format("02/01/2006"), subtotal, descuento, iva, total, estado}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
				f.SetCellValue(sheet, cell, v)
			}
			rowNum++
		}
		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating quotations", "details": err.Error()})
			return
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment;filename=cotizaciones_export.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file", "details": err.Error()})
			return
		}
	}
}

// ExportProductsCSV godoc
// @Summary      Export products to CSV
// @Description  Download the active catalog as a CSV file
// @Tags         Reports
// @Success      200  "CSV file"
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/reports/products/csv [get]
func ExportProductsCSV(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		if _, err := GetSessionDetails(db, sessionID); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		rows, err := db.Query(`
			SELECT ` + productColumns + `, COALESCE(cat.name, '')
			FROM productos p
			LEFT JOIN categories cat ON p.category_id = cat.id
			WHERE p.is_active = TRUE
			ORDER BY p.product_name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products", "details": err.Error()})
			return
		}
		defer rows.Close()

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", "attachment;filename=productos_export.csv")

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		writer.Write([]string{"sku", "nombre", "marca", "precio_cop", "descripcion_corta",
			"stock", "garantia_meses", "categoria"})

		for rows.Next() {
			var p models.Product
			if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Brand, &p.PriceCOP,
				&p.ShortDescription, &p.Description, &p.ImageURL,
				&p.AvailableStock, &p.WarrantyMonths, &p.CategoryID, &p.SubcategoryID,
				&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.CategoryName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product data", "details": err.Error()})
				return
			}
			writer.Write([]string{
				p.SKU,
				p.Name,
				p.Brand,
				fmt.Sprintf("%.0f", p.PriceCOP),
				services.HTMLToText(p.ShortDescription),
				strconv.Itoa(p.AvailableStock),
				strconv.Itoa(p.WarrantyMonths),
				p.CategoryName,
			})
		}
	}
}
