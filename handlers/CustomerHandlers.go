package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// ==================== CUSTOMER CRUD OPERATIONS ====================

// CreateCustomer creates a new customer owned by the calling salesperson
// @Summary Create customer
// @Description Create a new customer under the caller's vendedor partition
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body models.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} models.CustomerResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/customers [post]
func CreateCustomer(db *sql.DB) gin.HandlerFunc {
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

		var req models.CreateCustomerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var customer models.Customer
		err = db.QueryRow(`
			INSERT INTO clientes (nombre, telefono, nit, email, direccion, ciudad, vendedor_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`,
			req.Nombre, req.Telefono, req.NIT, req.Email, req.Direccion, req.Ciudad,
			user.VendedorID, time.Now(),
		).Scan(&customer.ID, &customer.CreatedAt)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				c.JSON(http.StatusConflict, gin.H{"error": "Customer already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create customer", "details": err.Error()})
			return
		}

		customer.Nombre = req.Nombre
		customer.Telefono = req.Telefono
		customer.NIT = req.NIT
		customer.Email = req.Email
		customer.Direccion = req.Direccion
		customer.Ciudad = req.Ciudad
		customer.VendedorID = user.VendedorID

		c.JSON(http.StatusCreated, models.CustomerResponse{
			Success: true,
			Message: "Customer created successfully",
			Data:    &customer,
		})
	}
}

// GetCustomers lists the caller's customers
// @Summary Get customers
// @Description List all customers in the caller's vendedor partition
// @Tags Customers
// @Produce json
// @Success 200 {object} models.CustomerListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/customers [get]
func GetCustomers(db *sql.DB) gin.HandlerFunc {
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
			SELECT id, nombre, COALESCE(telefono, ''), COALESCE(nit, ''), COALESCE(email, ''),
			       COALESCE(direccion, ''), COALESCE(ciudad, ''), vendedor_id, created_at
			FROM clientes
			WHERE vendedor_id = $1
			ORDER BY nombre`, user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers", "details": err.Error()})
			return
		}
		defer rows.Close()

		var customers []models.Customer
		for rows.Next() {
			var cust models.Customer
			if err := rows.Scan(&cust.ID, &cust.Nombre, &cust.Telefono, &cust.NIT, &cust.Email,
				&cust.Direccion, &cust.Ciudad, &cust.VendedorID, &cust.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan customer data", "details": err.Error()})
				return
			}
			customers = append(customers, cust)
		}

		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating customers", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.CustomerListResponse{
			Success: true,
			Message: "Customers retrieved successfully",
			Data:    customers,
		})
	}
}

// GetCustomer fetches a single customer by id
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} models.CustomerResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [get]
func GetCustomer(db *sql.DB) gin.HandlerFunc {
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

		var cust models.Customer
		err = db.QueryRow(`
			SELECT id, nombre, COALESCE(telefono, ''), COALESCE(nit, ''), COALESCE(email, ''),
			       COALESCE(direccion, ''), COALESCE(ciudad, ''), vendedor_id, created_at
			FROM clientes
			WHERE id = $1 AND vendedor_id = $2`, c.Param("id"), user.VendedorID).
			Scan(&cust.ID, &cust.Nombre, &cust.Telefono, &cust.NIT, &cust.Email,
				&cust.Direccion, &cust.Ciudad, &cust.VendedorID, &cust.CreatedAt)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customer", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.CustomerResponse{
			Success: true,
			Message: "Customer retrieved successfully",
			Data:    &cust,
		})
	}
}

// DeleteCustomer removes a customer from the caller's partition
// @Summary Delete customer
// @Tags Customers
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} models.CustomerResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [delete]
func DeleteCustomer(db *sql.DB) gin.HandlerFunc {
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

		result, err := db.Exec(`DELETE FROM clientes WHERE id = $1 AND vendedor_id = $2`,
			c.Param("id"), user.VendedorID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete customer", "details": err.Error()})
			return
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
			return
		}

		c.JSON(http.StatusOK, models.CustomerResponse{
			Success: true,
			Message: "Customer deleted successfully",
		})
	}
}
