package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"toolcare/internal/caching"
	"toolcare/internal/handlers"
	"toolcare/internal/jobs"
	"toolcare/internal/jobs/background"
	"toolcare/internal/middleware"
	"toolcare/internal/models"
	"toolcare/internal/repositories"
	"toolcare/internal/services"
	"toolcare/pkg/database"
)

const version = "1.0.0"

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; sessions will not survive restarts")
	}

	tokenTTL := durationEnv("ACCESS_TOKEN_TTL_MINUTES", 15) * time.Minute
	refreshTTL := durationEnv("REFRESH_TOKEN_TTL_HOURS", 24*30) * time.Hour

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "toolcare-photos"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	// Initialize object storage
	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}
	if err := storageSvc.EnsureBucketExists(context.Background()); err != nil {
		log.Fatalf("Failed to ensure storage bucket: %v", err)
	}

	// Create repositories
	branchRepo := repositories.NewBranchRepository(pool)
	warehouseRepo := repositories.NewWarehouseRepository(pool)
	toolRepo := repositories.NewToolRepository(pool)
	employeeRepo := repositories.NewEmployeeRepository(pool)
	sectorRepo := repositories.NewSectorRepository(pool)
	positionRepo := repositories.NewPositionRepository(pool)
	loanRepo := repositories.NewLoanRepository(pool)
	maintenanceRepo := repositories.NewMaintenanceRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	tokenRepo := repositories.NewTokenRepository(pool)
	auditLogRepo := repositories.NewAuditLogRepository(pool)

	txManager := repositories.NewTxManager(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Create services
	auditSvc := services.NewAuditService(auditLogRepo)
	authSvc := services.NewAuthService(userRepo, tokenRepo, jwtSecret, tokenTTL, refreshTTL)
	toolSvc := services.NewToolService(toolRepo, warehouseRepo, cacheSvc, auditSvc)
	loanSvc := services.NewLoanService(loanRepo, toolRepo, employeeRepo, txManager, cacheSvc, auditSvc)
	maintenanceSvc := services.NewMaintenanceService(maintenanceRepo, toolRepo, txManager, cacheSvc, auditSvc)
	branchSvc := services.NewBranchService(branchRepo, warehouseRepo, toolRepo, employeeRepo, userRepo, txManager, cacheSvc, auditSvc)
	warehouseSvc := services.NewWarehouseService(warehouseRepo, branchRepo, toolRepo, txManager, auditSvc)
	employeeSvc := services.NewEmployeeService(employeeRepo, loanRepo, txManager, auditSvc)
	sectorSvc := services.NewSectorService(sectorRepo)
	positionSvc := services.NewPositionService(positionRepo)
	userSvc := services.NewUserService(userRepo, txManager, authSvc)

	// Create handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, cacheSvc)
	toolHandlers := handlers.NewToolHandlers(toolSvc, storageSvc)
	loanHandlers := handlers.NewLoanHandlers(loanSvc)
	maintenanceHandlers := handlers.NewMaintenanceHandlers(maintenanceSvc)
	branchHandlers := handlers.NewBranchHandlers(branchSvc)
	warehouseHandlers := handlers.NewWarehouseHandlers(warehouseSvc)
	employeeHandlers := handlers.NewEmployeeHandlers(employeeSvc, storageSvc)
	sectorHandlers := handlers.NewSectorHandlers(sectorSvc)
	positionHandlers := handlers.NewPositionHandlers(positionSvc)
	userHandlers := handlers.NewUserHandlers(userSvc)
	auditLogHandlers := handlers.NewAuditLogHandlers(auditSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc)

	// Background jobs
	alertSvc := jobs.NewOverdueAlertService(loanRepo, toolRepo)
	scheduler := background.NewJobScheduler(alertSvc, authSvc, cacheSvc, branchRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop job scheduler: %v", err)
		}
	}()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)
	e.GET("/health/detailed", healthHandlers.DetailedHealthCheck)

	// API routes
	v1 := e.Group("/v1")

	// Authentication routes (no JWT required)
	auth := v1.Group("/auth")
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(authSvc))

	protected.POST("/auth/logout", authHandlers.Logout)

	// Branch routes
	protected.GET("/branches", branchHandlers.ListBranches)
	protected.POST("/branches", branchHandlers.CreateBranch)
	protected.GET("/branches/:id", branchHandlers.GetBranch)
	protected.PUT("/branches/:id", branchHandlers.UpdateBranch)
	protected.POST("/branches/:id/deactivate", branchHandlers.DeactivateBranch)
	protected.POST("/branches/:id/reactivate", branchHandlers.ReactivateBranch)

	// Warehouse routes
	protected.GET("/warehouses", warehouseHandlers.ListWarehouses)
	protected.POST("/warehouses", warehouseHandlers.CreateWarehouse)
	protected.GET("/warehouses/:id", warehouseHandlers.GetWarehouse)
	protected.PUT("/warehouses/:id", warehouseHandlers.UpdateWarehouse)
	protected.POST("/warehouses/:id/deactivate", warehouseHandlers.DeactivateWarehouse)
	protected.POST("/warehouses/:id/reactivate", warehouseHandlers.ReactivateWarehouse)

	// Tool routes
	protected.GET("/tools", toolHandlers.ListTools)
	protected.POST("/tools", toolHandlers.CreateTool)
	protected.GET("/tools/:id", toolHandlers.GetTool)
	protected.PUT("/tools/:id", toolHandlers.UpdateTool)
	protected.DELETE("/tools/:id", toolHandlers.DeleteTool)
	protected.POST("/tools/:id/deactivate", toolHandlers.DeactivateTool)
	protected.POST("/tools/:id/reactivate", toolHandlers.ReactivateTool)
	protected.POST("/tools/:id/photo", toolHandlers.UploadToolPhoto)

	// Employee routes
	protected.GET("/employees", employeeHandlers.ListEmployees)
	protected.POST("/employees", employeeHandlers.CreateEmployee)
	protected.GET("/employees/:id", employeeHandlers.GetEmployee)
	protected.PUT("/employees/:id", employeeHandlers.UpdateEmployee)
	protected.PUT("/employees/:id/branches", employeeHandlers.SetEmployeeBranches)
	protected.POST("/employees/:id/deactivate", employeeHandlers.DeactivateEmployee)
	protected.POST("/employees/:id/reactivate", employeeHandlers.ReactivateEmployee)
	protected.POST("/employees/:id/photo", employeeHandlers.UploadEmployeePhoto)

	// Sector and position routes
	protected.GET("/sectors", sectorHandlers.ListSectors)
	protected.POST("/sectors", sectorHandlers.CreateSector)
	protected.GET("/sectors/:id", sectorHandlers.GetSector)
	protected.PUT("/sectors/:id", sectorHandlers.UpdateSector)
	protected.POST("/sectors/:id/deactivate", sectorHandlers.DeactivateSector)

	protected.GET("/positions", positionHandlers.ListPositions)
	protected.POST("/positions", positionHandlers.CreatePosition)
	protected.GET("/positions/:id", positionHandlers.GetPosition)
	protected.PUT("/positions/:id", positionHandlers.UpdatePosition)
	protected.POST("/positions/:id/deactivate", positionHandlers.DeactivatePosition)

	// Loan routes
	protected.GET("/loans", loanHandlers.ListLoans)
	protected.POST("/loans", loanHandlers.OpenLoan)
	protected.GET("/loans/:id", loanHandlers.GetLoan)
	protected.PUT("/loans/:id", loanHandlers.UpdateLoan)
	protected.POST("/loans/:id/close", loanHandlers.CloseLoan)
	protected.DELETE("/loans/:id", loanHandlers.DeleteLoan)

	// Maintenance routes
	protected.GET("/maintenances", maintenanceHandlers.ListMaintenances)
	protected.POST("/maintenances", maintenanceHandlers.OpenMaintenance)
	protected.GET("/maintenances/:id", maintenanceHandlers.GetMaintenance)
	protected.PUT("/maintenances/:id", maintenanceHandlers.UpdateMaintenance)
	protected.POST("/maintenances/:id/close", maintenanceHandlers.CloseMaintenance)
	protected.DELETE("/maintenances/:id", maintenanceHandlers.DeleteMaintenance)

	// User routes
	protected.GET("/users", userHandlers.ListUsers, middleware.RequireRole(models.RoleMaximo))
	protected.POST("/users", userHandlers.CreateUser, middleware.RequireRole(models.RoleMaximo, models.RoleAdministrador))
	protected.GET("/users/:id", userHandlers.GetUser)
	protected.PUT("/users/:id", userHandlers.UpdateUser)
	protected.PUT("/users/:id/branches", userHandlers.SetUserBranches, middleware.RequireRole(models.RoleMaximo, models.RoleAdministrador))
	protected.POST("/users/:id/deactivate", userHandlers.DeactivateUser, middleware.RequireRole(models.RoleMaximo))

	// Audit log routes
	protected.GET("/audit-logs", auditLogHandlers.ListAuditLogs, middleware.RequireRole(models.RoleMaximo))

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	go func() {
		log.Printf("Toolcare server v%s starting on port %d", version, port)
		if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Wait for interrupt, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

func durationEnv(name string, fallback int) time.Duration {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return time.Duration(v)
		}
	}
	return time.Duration(fallback)
}
