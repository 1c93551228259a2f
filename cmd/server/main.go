package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"

	httpapi "libcirc-backend/internal/api/http"
	"libcirc-backend/internal/config"
	"libcirc-backend/internal/logger"
	"libcirc-backend/internal/repository/postgres"
	"libcirc-backend/internal/service"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Library Circulation Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("Circulation policy", "loan_period_days", cfg.Circulation.LoanPeriodDays, "fine_rate_per_day", cfg.Circulation.FineRatePerDay)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	circSvc := service.NewCirculationService(store, store.NotificationRepository, cfg.Circulation)
	catalogSvc := service.NewCatalogService(store.ItemRepository)
	borrowerSvc := service.NewBorrowerService(store.BorrowerRepository)
	reportSvc := service.NewReportingService(store.LoanRepository, store.BorrowerRepository)
	noteSvc := service.NewNotificationService(store.NotificationRepository)

	// Initialize HTTP handlers
	handler := httpapi.NewHandler(circSvc, catalogSvc, borrowerSvc, reportSvc, noteSvc)
	router := mux.NewRouter()
	httpapi.RegisterRoutes(router, handler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
