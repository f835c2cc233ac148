package handlers

import (
	"backend/models"
	"backend/repository"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// ==================== PRODUCT CRUD OPERATIONS ====================

// productColumns resolves the legacy duplicate columns into the canonical
// fields once, at the query boundary. Older rows only populated price /
// main_image_url; newer rows write price_cop / image_url_png. Handlers and
// renderers never see the split.
const productColumns = `
	p.id, p.sku, p.product_name,
	COALESCE(p.brand, ''),
	COALESCE(p.price_cop, p.price, 0),
	COALESCE(p.short_description, ''),
	COALESCE(p.description, ''),
	COALESCE(p.image_url_png, p.main_image_url, ''),
	COALESCE(p.available_stock, 0),
	COALESCE(p.warranty_months, 0),
	p.category_id, p.subcategory_id,
	p.is_active, p.is_featured,
	p.created_at`

// CreateProduct creates a new catalog product
// @Summary Create product
// @Description Create a new product; both legacy and canonical price/image columns are written
// @Tags Products
// @Accept json
// @Produce json
// @Param request body models.CreateProductRequest true "Product creation request"
// @Success 201 {object} models.ProductResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/products [post]
func CreateProduct(db *sql.DB) gin.HandlerFunc {
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

		var req models.CreateProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.PriceCOP < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price_cop must not be negative"})
			return
		}
		if strings.TrimSpace(req.SKU) == "" {
			req.SKU = repository.GenerateSKUSuggestion()
		}

		// Legacy columns are written alongside the canonical ones so older
		// readers of this database keep working.
		var product models.Product
		err := db.QueryRow(`
			INSERT INTO productos (sku, product_name, brand, price_cop, price,
			                       short_description, description, image_url_png, main_image_url,
			                       available_stock, warranty_months, category_id, subcategory_id,
			                       is_active, is_featured, created_at)
			VALUES ($1, $2, $3, $4, $4, $5, $6, $7, $7, $8, $9, $10, $11, TRUE, FALSE, $12)
			RETURNING id, created_at`,
			req.SKU, req.Name, req.Brand, req.PriceCOP,
			req.ShortDescription, req.Description, req.ImageURL,
			req.AvailableStock, req.WarrantyMonths, req.CategoryID, req.SubcategoryID,
			time.Now(),
		).Scan(&product.ID, &product.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				c.JSON(http.StatusConflict, gin.H{"error": "Product with this SKU already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product", "details": err.Error()})
			return
		}

		product.SKU = req.SKU
		product.Name = req.Name
		product.Brand = req.Brand
		product.PriceCOP = req.PriceCOP
		product.ShortDescription = req.ShortDescription
		product.Description = req.Description
		product.ImageURL = req.ImageURL
		product.AvailableStock = req.AvailableStock
		product.WarrantyMonths = req.WarrantyMonths
		product.CategoryID = req.CategoryID
		product.SubcategoryID = req.SubcategoryID
		product.IsActive = true

		c.JSON(http.StatusCreated, models.ProductResponse{
			Success: true,
			Message: "Product created successfully",
			Data:    &product,
		})
	}
}

// GetProducts lists the catalog, optionally filtered by a search term
// @Summary Get products
// @Description List products (catalog is shared across salespeople); supports ?search= on name/sku/brand
// @Tags Products
// @Produce json
// @Param search query string false "Filter by name, SKU, or brand"
// @Success 200 {object} models.ProductListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/products [get]
func GetProducts(db *sql.DB) gin.HandlerFunc {
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

		query := `
			SELECT ` + productColumns + `, COALESCE(cat.name, '')
			FROM productos p
			LEFT JOIN categories cat ON p.category_id = cat.id
			WHERE p.is_active = TRUE`
		var args []interface{}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			query += ` AND (p.product_name ILIKE $1 OR p.sku ILIKE $1 OR p.brand ILIKE $1)`
			args = append(args, "%"+search+"%")
		}
		query += ` ORDER BY p.product_name`

		rows, err := db.Query(query, args...)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products", "details": err.Error()})
			return
		}
		defer rows.Close()

		var products []models.Product
		for rows.Next() {
			var p models.Product
			if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.Brand, &p.PriceCOP,
				&p.ShortDescription, &p.Description, &p.ImageURL,
				&p.AvailableStock, &p.WarrantyMonths, &p.CategoryID, &p.SubcategoryID,
				&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.CategoryName); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product data", "details": err.Error()})
				return
			}
			products = append(products, p)
		}

		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating products", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.ProductListResponse{
			Success: true,
			Message: "Products retrieved successfully",
			Data:    products,
		})
	}
}

// GetProduct fetches a single product by id
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{id} [get]
func GetProduct(db *sql.DB) gin.HandlerFunc {
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

		var p models.Product
		err := db.QueryRow(`
			SELECT `+productColumns+`, COALESCE(cat.name, '')
			FROM productos p
			LEFT JOIN categories cat ON p.category_id = cat.id
			WHERE p.id = $1`, c.Param("id")).
			Scan(&p.ID, &p.SKU, &p.Name, &p.Brand, &p.PriceCOP,
				&p.ShortDescription, &p.Description, &p.ImageURL,
				&p.AvailableStock, &p.WarrantyMonths, &p.CategoryID, &p.SubcategoryID,
				&p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.CategoryName)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.ProductResponse{
			Success: true,
			Message: "Product retrieved successfully",
			Data:    &p,
		})
	}
}

// DeleteProduct removes a product from the catalog
// @Summary Delete product
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.ProductResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{id} [delete]
func DeleteProduct(db *sql.DB) gin.HandlerFunc {
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

		// Quotation line items keep their snapshot prices; deleting the
		// product only nulls the reference, it never rewrites history.
		result, err := db.Exec(`DELETE FROM productos WHERE id = $1`, c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product", "details": err.Error()})
			return
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}

		c.JSON(http.StatusOK, models.ProductResponse{
			Success: true,
			Message: "Product deleted successfully",
		})
	}
}
