package reports

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository defines the interface for snapshot data access
type Repository interface {
	PlatformSnapshot(ctx context.Context) (*PlatformSnapshot, error)
	MarketplaceSnapshot(ctx context.Context) (*MarketplaceSnapshot, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) PlatformSnapshot(ctx context.Context) (*PlatformSnapshot, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM farms) AS total_farms,
			(SELECT COUNT(*) FROM farms WHERE verified) AS verified_farms,
			(SELECT COUNT(*) FROM sensors) AS total_sensors,
			(SELECT COUNT(*) FROM measurements WHERE status = 'PENDING') AS pending_measurements,
			(SELECT COUNT(*) FROM measurements WHERE status = 'VERIFIED') AS verified_measurements,
			(SELECT total_credits_issued FROM platform_statistics LIMIT 1) AS total_credits_issued,
			(SELECT total_verified_carbon FROM platform_statistics LIMIT 1) AS total_verified_carbon
	`

	var snapshot PlatformSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query); err != nil {
		return nil, fmt.Errorf("failed to build platform snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *PostgresRepository) MarketplaceSnapshot(ctx context.Context) (*MarketplaceSnapshot, error) {
	query := `
		SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(amount), 0) AS total_volume,
			COALESCE(SUM(total_price), 0) AS total_revenue,
			COALESCE(SUM(platform_fee), 0) AS total_fees,
			COALESCE(CAST(AVG(unit_price) AS BIGINT), 0) AS average_unit_price,
			(SELECT COUNT(*) FROM corporate_buyers WHERE verified) AS verified_buyers
		FROM credit_transactions
	`

	var snapshot MarketplaceSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query); err != nil {
		return nil, fmt.Errorf("failed to build marketplace snapshot: %w", err)
	}
	return &snapshot, nil
}
