package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"minicrm/internal/config"
	"minicrm/internal/handler"
	"minicrm/internal/middleware"
	"minicrm/internal/repository"
	"minicrm/internal/service"
	"minicrm/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// --- Database Connection ---
	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(db, config.DriverFor(cfg.DatabaseURL)); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// --- Seed Baseline Data ---
	seeder := service.NewSeeder(userRepo, customerRepo, taskRepo)
	if err := seeder.EnsureSeedData(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// --- Initialize Services ---
	sessions := session.NewManager(cfg.SessionSecret)
	authService := service.NewAuthService(userRepo)
	crmService := service.NewCRMService(userRepo, customerRepo, taskRepo)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, sessions)
	crmHandler := handler.NewCRMHandler(crmService, sessions)

	// --- Setup Gin Router ---
	router := gin.Default()
	router.Use(middleware.RequestIDMiddleware())

	sessionMW := middleware.SessionAuthMiddleware(sessions)
	authHandler.RegisterAuthRoutes(router)
	crmHandler.RegisterCRMRoutes(router, sessionMW)

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
