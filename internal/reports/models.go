package reports

import "time"

// PlatformSnapshot is the read-only aggregate view of the ledger.
type PlatformSnapshot struct {
	TotalFarms            int64     `json:"total_farms" db:"total_farms"`
	VerifiedFarms         int64     `json:"verified_farms" db:"verified_farms"`
	TotalSensors          int64     `json:"total_sensors" db:"total_sensors"`
	PendingMeasurements   int64     `json:"pending_measurements" db:"pending_measurements"`
	VerifiedMeasurements  int64     `json:"verified_measurements" db:"verified_measurements"`
	TotalCreditsIssued    int64     `json:"total_credits_issued" db:"total_credits_issued"`
	TotalVerifiedCarbon   int64     `json:"total_verified_carbon" db:"total_verified_carbon"`
	GeneratedAt           time.Time `json:"generated_at"`
}

// SnapshotRecord is a marketplace snapshot persisted by the snapshot worker
// for the portal dashboard's history view.
type SnapshotRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TakenAt           time.Time `gorm:"index" json:"taken_at"`
	TotalTransactions int64     `json:"total_transactions"`
	TotalVolume       int64     `json:"total_volume"`
	TotalRevenue      int64     `json:"total_revenue"`
	TotalFees         int64     `json:"total_fees"`
	AverageUnitPrice  int64     `json:"average_unit_price"`
}

// TableName keeps the worker's insert target stable.
func (SnapshotRecord) TableName() string {
	return "marketplace_snapshots"
}

// MarketplaceSnapshot is the read-only aggregate view of trading activity.
type MarketplaceSnapshot struct {
	TotalTransactions int64     `json:"total_transactions" db:"total_transactions"`
	TotalVolume       int64     `json:"total_volume" db:"total_volume"`
	TotalRevenue      int64     `json:"total_revenue" db:"total_revenue"`
	TotalFees         int64     `json:"total_fees" db:"total_fees"`
	AverageUnitPrice  int64     `json:"average_unit_price" db:"average_unit_price"`
	VerifiedBuyers    int64     `json:"verified_buyers" db:"verified_buyers"`
	GeneratedAt       time.Time `json:"generated_at"`
}
