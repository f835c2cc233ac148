package handlers

import (
	"backend/models"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

// ==================== CATEGORY CRUD OPERATIONS ====================

// CreateCategory creates a new category
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body models.Category true "Category creation request"
// @Success 201 {object} models.CategoryResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/categories [post]
func CreateCategory(db *sql.DB) gin.HandlerFunc {
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

		var category models.Category
		if err := c.ShouldBindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := db.QueryRow(
			"INSERT INTO categories (name, created_at) VALUES ($1, $2) RETURNING id",
			category.Name, time.Now(),
		).Scan(&category.ID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				c.JSON(http.StatusConflict, gin.H{"error": "Category with this name already exists"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
			return
		}

		c.JSON(http.StatusCreated, models.CategoryResponse{
			Success: true,
			Message: "Category created successfully",
			Data:    &category,
		})
	}
}

// GetCategories retrieves all categories with their subcategories
// @Summary Get all categories
// @Tags Categories
// @Produce json
// @Success 200 {object} models.CategoryListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/categories [get]
func GetCategories(db *sql.DB) gin.HandlerFunc {
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

		rows, err := db.Query(`SELECT id, name, created_at FROM categories ORDER BY name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories", "details": err.Error()})
			return
		}
		defer rows.Close()

		var categories []models.Category
		for rows.Next() {
			var cat models.Category
			if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category data", "details": err.Error()})
				return
			}
			categories = append(categories, cat)
		}
		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating categories", "details": err.Error()})
			return
		}

		subRows, err := db.Query(`SELECT id, category_id, name, created_at FROM subcategories ORDER BY name`)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories", "details": err.Error()})
			return
		}
		defer subRows.Close()

		var subcategories []models.Subcategory
		for subRows.Next() {
			var sub models.Subcategory
			if err := subRows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan subcategory data", "details": err.Error()})
				return
			}
			subcategories = append(subcategories, sub)
		}

		c.JSON(http.StatusOK, models.CategoryListResponse{
			Success:       true,
			Message:       "Categories retrieved successfully",
			Data:          categories,
			Subcategories: subcategories,
		})
	}
}

// GetSubcategoriesByCategory retrieves the subcategories of one category
// @Summary Get subcategories by category
// @Tags Categories
// @Produce json
// @Param category_id path int true "Category ID"
// @Success 200 {object} models.CategoryListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/categories/{category_id}/subcategories [get]
func GetSubcategoriesByCategory(db *sql.DB) gin.HandlerFunc {
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

		categoryID, err := strconv.Atoi(c.Param("category_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
			return
		}

		rows, err := db.Query(`SELECT id, category_id, name, created_at FROM subcategories WHERE category_id = $1 ORDER BY name`, categoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories", "details": err.Error()})
			return
		}
		defer rows.Close()

		var subcategories []models.Subcategory
		for rows.Next() {
			var sub models.Subcategory
			if err := rows.Scan(&sub.ID, &sub.CategoryID, &sub.Name, &sub.CreatedAt); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan subcategory data", "details": err.Error()})
				return
			}
			subcategories = append(subcategories, sub)
		}

		c.JSON(http.StatusOK, models.CategoryListResponse{
			Success:       true,
			Message:       "Subcategories retrieved successfully",
			Subcategories: subcategories,
		})
	}
}
