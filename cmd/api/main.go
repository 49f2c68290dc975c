// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/inkline-studio/inkline-backend/internal/api/handlers"
	"github.com/inkline-studio/inkline-backend/internal/api/middleware"
	"github.com/inkline-studio/inkline-backend/internal/config"
	"github.com/inkline-studio/inkline-backend/internal/cron"
	"github.com/inkline-studio/inkline-backend/internal/db"
	"github.com/inkline-studio/inkline-backend/internal/email"
	"github.com/inkline-studio/inkline-backend/internal/notification"
	"github.com/inkline-studio/inkline-backend/internal/repository"
	"github.com/inkline-studio/inkline-backend/internal/seed"
	"github.com/inkline-studio/inkline-backend/internal/service"
	"github.com/inkline-studio/inkline-backend/internal/socket"
	"github.com/inkline-studio/inkline-backend/internal/storage"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL
	// ============================================
	pg, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(pg.Pool)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize File Storage
	// ============================================
	store, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		log.Fatalf("❌ Failed to initialize file storage: %v", err)
	}
	log.Printf("📁 File storage rooted at %s", cfg.StorageDir)

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.NotificationRepo, repos.UserRepo)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
		Store:       store,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services, cfg)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(notificationSvc, repos.OverrideRepo, repos.ProofRepo)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// Client routes
			clients := protected.Group("/clients")
			{
				clients.POST("", h.Client.Create)
				clients.GET("", h.Client.List)
				clients.GET("/me", h.Client.GetMine)
				clients.GET("/:id", h.Client.Get)
				clients.PUT("/:id", h.Client.Update)
			}

			// Project routes
			projects := protected.Group("/projects")
			{
				projects.POST("", h.Project.Create)
				projects.GET("", h.Project.List)
				projects.GET("/:id", h.Project.Get)
				projects.PUT("/:id", h.Project.Update)
				projects.GET("/:id/phases", h.Project.Phases)

				// Phase advancement (admin trigger for the same gate the
				// toggle endpoint drives automatically)
				projects.POST("/:id/advance", h.Requirement.Advance)

				// Files
				projects.POST("/:id/files", h.Project.UploadFile)
				projects.GET("/:id/files", h.Project.ListFiles)
				projects.DELETE("/:id/files/:fileId", h.Project.ArchiveFile)
				projects.GET("/:id/files/:fileId/spec", h.Project.FileSpec)

				// Requirements
				projects.GET("/:id/phases/:phaseKey/requirements", h.Requirement.ListForProject)
				projects.POST("/:id/phases/:phaseKey/requirements", h.Requirement.Create)
				projects.PUT("/:id/requirements/:reqId", h.Requirement.Update)
				projects.DELETE("/:id/requirements/:reqId", h.Requirement.Delete)
				projects.POST("/:id/requirements/:reqId/toggle", h.Requirement.Toggle)

				// Proofs
				projects.POST("/:id/proofs", h.Proof.Create)
				projects.GET("/:id/proofs", h.Proof.ListByProject)
				projects.GET("/:id/proofs/current", h.Proof.Current)

				// Invoices
				projects.POST("/:id/invoices", h.Invoice.Create)
				projects.GET("/:id/invoices", h.Invoice.ListByProject)
			}

			// Proof routes
			proofs := protected.Group("/proofs")
			{
				proofs.GET("/:proofId", h.Proof.Get)
				proofs.PATCH("/:proofId", h.Proof.Update)
				proofs.POST("/:proofId/validate", h.Proof.Validate)

				// Overrides
				proofs.POST("/:proofId/overrides", h.Proof.RequestOverride)
				proofs.GET("/:proofId/overrides", h.Proof.ListOverrides)

				// Approvals
				proofs.POST("/:proofId/approvals", h.Approval.Submit)
				proofs.GET("/:proofId/approvals", h.Approval.ListByProof)
			}

			// Override review routes (admin)
			overrides := protected.Group("/overrides")
			{
				overrides.GET("/pending", h.Proof.ListPendingOverrides)
				overrides.POST("/:overrideId/review", h.Proof.ReviewOverride)
			}

			// Approval routes
			approvals := protected.Group("/approvals")
			{
				approvals.GET("/:approvalId", h.Approval.Get)
			}

			// Validation standard routes
			standards := protected.Group("/standards")
			{
				standards.GET("", h.Standard.List)
				standards.GET("/:code", h.Standard.Get)
				standards.PUT("/:code", middleware.RequireAdmin(), h.Standard.Upsert)
			}

			// Invoice routes
			invoices := protected.Group("/invoices")
			{
				invoices.POST("/:invoiceId/send", h.Invoice.Send)
				invoices.POST("/:invoiceId/void", h.Invoice.Void)
				invoices.POST("/:invoiceId/pay", h.Invoice.MarkPaid)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.UnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.DELETE("/:id", h.Notification.Delete)
			}

			// Activity routes
			activities := protected.Group("/activities")
			{
				activities.GET("/me", h.Activity.ListMine)
				activities.GET("/:entityType/:entityId", h.Activity.ListByEntity)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
