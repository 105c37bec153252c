package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/buyers"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/config"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/credits"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/farms"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/marketplace"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/measurements"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/reports"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Ledger.AuthorityID == "" {
		logger.Warn("No platform authority configured; privileged operations will be rejected")
	}

	// Connect to database
	dbURL := cfg.Database.GetDatabaseURL()
	logger.Info("Connecting to database", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Migrate entity tables and seed the statistics singleton
	err = db.AutoMigrate(
		&auth.Account{},
		&farms.Farm{},
		&farms.Sensor{},
		&farms.PracticeVerification{},
		&measurements.Measurement{},
		&measurements.SatelliteObservation{},
		&measurements.VerificationRecord{},
		&credits.CarbonCredit{},
		&credits.IncentivePayment{},
		&buyers.CorporateBuyer{},
		&marketplace.CreditTransaction{},
		&ledger.PlatformStatistics{},
		&reports.SnapshotRecord{},
	)
	if err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	if err := ledger.EnsureStatistics(db, cfg.Ledger.BaseCreditPrice, cfg.Ledger.PlatformFeeBps); err != nil {
		logger.Fatal("Failed to seed platform statistics", zap.Error(err))
	}

	// Read-path connection for the reporting module
	sqlxDB, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.Fatal("Failed to connect reporting database", zap.Error(err))
	}
	defer sqlxDB.Close()

	// Ledger kernel
	guard := ledger.NewGuard(cfg.Ledger.AuthorityID)
	seq := ledger.NewSequence(uint64(time.Now().UnixNano()))
	clock := ledger.Clock(time.Now)

	// Services
	authService := auth.NewService(db, []byte(cfg.Security.JWTSecret), cfg.Security.TokenTTL, clock)
	farmService := farms.NewService(db, guard, seq, clock, logger)
	measurementService := measurements.NewService(db, guard, seq, clock, logger)
	creditService := credits.NewService(db, guard, seq, clock, logger)
	buyerService := buyers.NewService(db, guard, clock, logger)
	marketService := marketplace.NewService(db, seq, clock, logger)
	reportService := reports.NewService(reports.NewPostgresRepository(sqlxDB), clock, logger)

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register Routes
	auth.NewHandler(authService, logger).RegisterRoutes(router)

	api := router.Group("/api/v1")
	api.Use(auth.Middleware(authService))
	{
		farms.NewHandler(farmService, logger).RegisterRoutes(api)
		measurements.NewHandler(measurementService, logger).RegisterRoutes(api)
		credits.NewHandler(creditService, logger).RegisterRoutes(api)
		buyers.NewHandler(buyerService, logger).RegisterRoutes(api)
		marketplace.NewHandler(marketService, logger).RegisterRoutes(api)
		reports.NewHandler(reportService, logger).RegisterRoutes(api)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
