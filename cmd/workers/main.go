package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/config"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/reports"
)

// SnapshotWorker periodically persists marketplace snapshots for the portal
// dashboard's history view.
type SnapshotWorker struct {
	db      *sqlx.DB
	service *reports.Service
	logger  *zap.Logger
}

func NewSnapshotWorker(db *sqlx.DB, service *reports.Service, logger *zap.Logger) *SnapshotWorker {
	return &SnapshotWorker{db: db, service: service, logger: logger}
}

// TakeSnapshot computes and stores one marketplace snapshot row.
func (w *SnapshotWorker) TakeSnapshot(ctx context.Context) {
	snapshot, err := w.service.MarketplaceSnapshot(ctx)
	if err != nil {
		w.logger.Error("Failed to build marketplace snapshot", zap.Error(err))
		return
	}

	query := `
		INSERT INTO marketplace_snapshots (
			taken_at, total_transactions, total_volume, total_revenue, total_fees, average_unit_price
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = w.db.ExecContext(ctx, query,
		snapshot.GeneratedAt,
		snapshot.TotalTransactions,
		snapshot.TotalVolume,
		snapshot.TotalRevenue,
		snapshot.TotalFees,
		snapshot.AverageUnitPrice,
	)
	if err != nil {
		w.logger.Error("Failed to persist marketplace snapshot", zap.Error(err))
		return
	}

	w.logger.Info("Marketplace snapshot persisted",
		zap.Int64("total_transactions", snapshot.TotalTransactions),
		zap.Int64("total_volume", snapshot.TotalVolume))
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	_ = godotenv.Load()
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	service := reports.NewService(reports.NewPostgresRepository(db), ledger.Clock(time.Now), logger)
	worker := NewSnapshotWorker(db, service, logger)

	schedule := os.Getenv("SNAPSHOT_CRON")
	if schedule == "" {
		schedule = "@every 15m"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(schedule, func() { worker.TakeSnapshot(ctx) }); err != nil {
		logger.Fatal("Invalid snapshot schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	logger.Info("Snapshot worker started", zap.String("schedule", schedule))
	worker.TakeSnapshot(ctx)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Snapshot worker shutting down")
	<-scheduler.Stop().Done()
}
