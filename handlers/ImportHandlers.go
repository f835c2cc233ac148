package handlers

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"backend/models"
	"backend/repository"
	"backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const importBatchSize = 100

// ImportJobManager tracks background product imports. Job rows live in the
// import_jobs table through GORM; the cancel map and WaitGroup only exist in
// memory, so a restart leaves stale "processing" rows that the next status
// read reports as-is.
type ImportJobManager struct {
	gdb *gorm.DB
	sdb *sql.DB

	jobCancelMap map[int]context.CancelFunc
	jobMutex     sync.RWMutex
	jobWG        sync.WaitGroup

	isShuttingDown bool
}

func NewImportJobManager(sdb *sql.DB) *ImportJobManager {
	return &ImportJobManager{
		gdb:          storage.GetGormDB(),
		sdb:          sdb,
		jobCancelMap: make(map[int]context.CancelFunc),
	}
}

func (m *ImportJobManager) registerJob(jobID int, cancel context.CancelFunc) bool {
	m.jobMutex.Lock()
	defer m.jobMutex.Unlock()
	if m.isShuttingDown {
		cancel()
		return false
	}
	m.jobCancelMap[jobID] = cancel
	return true
}

func (m *ImportJobManager) unregisterJob(jobID int) {
	m.jobMutex.Lock()
	defer m.jobMutex.Unlock()
	delete(m.jobCancelMap, jobID)
}

// GracefulShutdown cancels every running import and waits for the workers to
// drain, up to timeout.
func (m *ImportJobManager) GracefulShutdown(timeout time.Duration) error {
	m.jobMutex.Lock()
	m.isShuttingDown = true
	for jobID, cancel := range m.jobCancelMap {
		log.Printf("Cancelling import job %d", jobID)
		cancel()
	}
	m.jobMutex.Unlock()

	done := make(chan struct{})
	go func() {
		m.jobWG.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("All import jobs completed gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("import shutdown timed out after %v", timeout)
	}
}

func (m *ImportJobManager) updateJobStatus(jobID int, status string, progress, processed, failed int, errorMsg *string) {
	updates := map[string]interface{}{
		"status":          status,
		"progress":        progress,
		"processed_items": processed,
		"failed_items":    failed,
		"updated_at":      time.Now(),
	}
	if status == "completed" || status == "completed_with_errors" || status == "failed" || status == "cancelled" {
		updates["completed_at"] = time.Now()
	}
	if errorMsg != nil {
		updates["error"] = *errorMsg
	}
	if err := m.gdb.Model(&models.ImportJobGorm{}).Where("id = ?", jobID).Updates(updates).Error; err != nil {
		log.Printf("Failed to update import job %d: %v", jobID, err)
	}
}

type importRow struct {
	sku, name, brand string
	price            float64
	shortDescription string
	stock, warranty  int
}

func parseProductCSV(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %v", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have a header row and at least one data row")
	}

	var rows []importRow
	for i, rec := range records[1:] {
		if len(rec) < 4 {
			return nil, fmt.Errorf("row %d: expected at least 4 columns (sku, nombre, marca, precio_cop)", i+2)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("row %d: invalid price %q", i+2, rec[3])
		}
		row := importRow{
			sku:   strings.TrimSpace(rec[0]),
			name:  strings.TrimSpace(rec[1]),
			brand: strings.TrimSpace(rec[2]),
			price: price,
		}
		if row.name == "" {
			return nil, fmt.Errorf("row %d: nombre is required", i+2)
		}
		if row.sku == "" {
			row.sku = repository.GenerateSKUSuggestion()
		}
		if len(rec) > 4 {
			row.shortDescription = strings.TrimSpace(rec[4])
		}
		if len(rec) > 5 {
			row.stock, _ = strconv.Atoi(strings.TrimSpace(rec[5]))
		}
		if len(rec) > 6 {
			row.warranty, _ = strconv.Atoi(strings.TrimSpace(rec[6]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// processImportJob upserts the parsed rows in batches, reporting progress
// after each batch and honoring cancellation between batches.
func (m *ImportJobManager) processImportJob(ctx context.Context, jobID int, rows []importRow) {
	total := len(rows)
	m.updateJobStatus(jobID, "processing", 0, 0, 0, nil)

	processed := 0
	failed := 0
	for i := 0; i < total; i += importBatchSize {
		select {
		case <-ctx.Done():
			errorMsg := "Job cancelled"
			m.updateJobStatus(jobID, "cancelled", (processed*100)/total, processed, failed, &errorMsg)
			return
		default:
		}

		end := i + importBatchSize
		if end > total {
			end = total
		}

		for _, row := range rows[i:end] {
			_, err := m.sdb.ExecContext(ctx, `
				INSERT INTO productos (sku, product_name, brand, price_cop, price,
				                       short_description, available_stock, warranty_months,
				                       is_active, is_featured, created_at)
				VALUES ($1, $2, $3, $4, $4, $5, $6, $7, TRUE, FALSE, NOW())
				ON CONFLICT (sku) DO UPDATE SET
					product_name = EXCLUDED.product_name,
					brand = EXCLUDED.brand,
					price_cop = EXCLUDED.price_cop,
					price = EXCLUDED.price,
					short_description = EXCLUDED.short_description,
					available_stock = EXCLUDED.available_stock,
					warranty_months = EXCLUDED.warranty_months`,
				row.sku, row.name, row.brand, row.price,
				row.shortDescription, row.stock, row.warranty)
			if err != nil {
				log.Printf("Import job %d: failed to upsert %s: %v", jobID, row.sku, err)
				failed++
				continue
			}
			processed++
		}

		m.updateJobStatus(jobID, "processing", ((processed+failed)*100)/total, processed, failed, nil)
	}

	status := importTerminalStatus(processed, failed)
	switch status {
	case "completed":
		m.updateJobStatus(jobID, status, 100, processed, 0, nil)
	case "failed":
		errorMsg := fmt.Sprintf("All %d rows failed", failed)
		m.updateJobStatus(jobID, status, 100, 0, failed, &errorMsg)
	default:
		errorMsg := fmt.Sprintf("%d rows failed", failed)
		m.updateJobStatus(jobID, status, 100, processed, failed, &errorMsg)
	}
}

// importTerminalStatus picks the final job state from the row outcome. A run
// where every row landed is completed; a run where none did is failed;
// anything in between finishes as completed_with_errors.
func importTerminalStatus(processed, failed int) string {
	switch {
	case failed == 0:
		return "completed"
	case processed == 0:
		return "failed"
	default:
		return "completed_with_errors"
	}
}

// StartProductImport godoc
// @Summary      Start product CSV import
// @Description  Upload a CSV of products and process it as a background job
// @Tags         Imports
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Product CSV"
// @Success      202   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/imports/products [post]
func (m *ImportJobManager) StartProductImport(db *sql.DB) gin.HandlerFunc {
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

		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		rows, err := parseProductCSV(file)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		job := models.ImportJobGorm{
			JobType:    "product_import",
			Status:     "pending",
			TotalItems: len(rows),
			CreatedBy:  user.Username,
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := m.gdb.Create(&job).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create import job", "details": err.Error()})
			return
		}

		jobID := int(job.ID)
		ctx, cancel := context.WithCancel(context.Background())
		if !m.registerJob(jobID, cancel) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is shutting down"})
			return
		}

		m.jobWG.Add(1)
		go func() {
			defer func() {
				m.jobWG.Done()
				m.unregisterJob(jobID)
			}()
			m.processImportJob(ctx, jobID, rows)
		}()

		c.JSON(http.StatusAccepted, gin.H{
			"success": true,
			"message": "Import job started",
			"job_id":  jobID,
			"total":   len(rows),
		})
	}
}

// GetImportJobStatus godoc
// @Summary      Import job status
// @Tags         Imports
// @Produce      json
// @Param        job_id  path  int  true  "Job ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/imports/{job_id} [get]
func (m *ImportJobManager) GetImportJobStatus(db *sql.DB) gin.HandlerFunc {
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

		jobID, err := strconv.Atoi(c.Param("job_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
			return
		}

		var job models.ImportJobGorm
		if err := m.gdb.First(&job, jobID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch job status"})
			return
		}

		m.jobMutex.RLock()
		_, running := m.jobCancelMap[jobID]
		m.jobMutex.RUnlock()

		c.JSON(http.StatusOK, gin.H{
			"job":        job,
			"is_running": running,
		})
	}
}

// CancelImportJob godoc
// @Summary      Cancel import job
// @Tags         Imports
// @Produce      json
// @Param        job_id  path  int  true  "Job ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/imports/{job_id}/cancel [post]
func (m *ImportJobManager) CancelImportJob(db *sql.DB) gin.HandlerFunc {
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

		jobID, err := strconv.Atoi(c.Param("job_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job_id"})
			return
		}

		m.jobMutex.Lock()
		cancel, exists := m.jobCancelMap[jobID]
		if exists {
			cancel()
			delete(m.jobCancelMap, jobID)
		}
		m.jobMutex.Unlock()

		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "No running job found with that ID"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Import job cancelled"})
	}
}
