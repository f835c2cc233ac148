// @title           Cotizador API
// @version         1.0
// @description     Tintas y Tecnología quotation backend - All endpoints used in the application.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://cotizador.tintasytecnologia.co",
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:9000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// safeGo runs a named maintenance job in its own goroutine with panic
// recovery, so one failing job never takes down the cron cycle.
func safeGo(ctx context.Context, wg *sync.WaitGroup, name string, fn func(context.Context) error, cronLogger *log.Logger) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Panic in cron job %s: %v", name, r)
				if cronLogger != nil {
					cronLogger.Printf("Panic in cron job %s: %v", name, r)
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("Cron job %s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("Cron job %s failed: %v", name, err)
			}
		} else {
			log.Printf("Cron job %s completed", name)
		}
	}()
}

func main() {
	db := storage.InitDB()
	_ = storage.InitGormDB()

	importManager := handlers.NewImportJobManager(db)

	// Daily maintenance at 00:30 Bogota time
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== 2. CUSTOMERS ====================
	r.POST("/api/customers", handlers.CreateCustomer(db))
	r.GET("/api/customers", handlers.GetCustomers(db))
	r.GET("/api/customers/:id", handlers.GetCustomer(db))
	r.DELETE("/api/customers/:id", handlers.DeleteCustomer(db))

	// ==================== 3. PRODUCTS ====================
	r.POST("/api/products", handlers.CreateProduct(db))
	r.GET("/api/products", handlers.GetProducts(db))
	r.GET("/api/products/:id", handlers.GetProduct(db))
	r.DELETE("/api/products/:id", handlers.DeleteProduct(db))

	// ==================== 4. CATEGORIES ====================
	r.POST("/api/categories", handlers.CreateCategory(db))
	r.GET("/api/categories", handlers.GetCategories(db))
	r.GET("/api/categories/:category_id/subcategories", handlers.GetSubcategoriesByCategory(db))

	// ==================== 5. QUOTATIONS ====================
	r.POST("/api/quotations", handlers.CreateQuotation(db))
	r.GET("/api/quotations", handlers.GetQuotations(db))
	r.GET("/api/quotations/:id", handlers.GetQuotation(db))
	r.PUT("/api/quotations/:id/status", handlers.UpdateQuotationStatus(db))
	r.DELETE("/api/quotations/:id", handlers.DeleteQuotation(db))

	// ==================== 6. QUOTATION EXPORTS ====================
	r.GET("/api/quotations/:id/pdf", handlers.GenerateQuotationPDF(db))
	r.GET("/api/quotations/:id/jpg", handlers.GenerateQuotationJPEG(db))
	r.GET("/api/quotations/:id/whatsapp", handlers.GetQuotationWhatsAppLink(db))

	// ==================== 7. DASHBOARD & REPORTS ====================
	r.GET("/api/dashboard", handlers.GetDashboardStats(db))
	r.GET("/api/reports", handlers.GetReportStats(db))
	r.GET("/api/reports/quotations/xlsx", handlers.ExportQuotationsXLSX(db))
	r.GET("/api/reports/products/csv", handlers.ExportProductsCSV(db))

	// ==================== 8. PRODUCT IMPORTS ====================
	r.POST("/api/imports/products", importManager.StartProductImport(db))
	r.GET("/api/imports/:job_id", importManager.GetImportJobStatus(db))
	r.POST("/api/imports/:job_id/cancel", importManager.CancelImportJob(db))

	// ==================== 9. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Running imports drain before the HTTP listener closes
	if err := importManager.GracefulShutdown(20 * time.Second); err != nil {
		log.Printf("Warning: Import manager shutdown error: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
