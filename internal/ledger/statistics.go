package ledger

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// statisticsRowID is the primary key of the singleton statistics row.
const statisticsRowID = 1

// PlatformStatistics is the process-wide aggregate singleton. All counters
// are monotonically non-decreasing except AveragePrice, which the platform
// authority sets through the pricing operation. Amounts are tonnes x100,
// prices and revenue are integer cents, carbon is x100.
type PlatformStatistics struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	TotalCreditsIssued  int64     `gorm:"not null;default:0" json:"total_credits_issued"`
	TotalCreditsSold    int64     `gorm:"not null;default:0" json:"total_credits_sold"`
	TotalRevenue        int64     `gorm:"not null;default:0" json:"total_revenue"`
	TotalVerifiedCarbon int64     `gorm:"not null;default:0" json:"total_verified_carbon"`
	AveragePrice        int64     `gorm:"not null;default:0" json:"average_price"`
	PlatformFeeBps      int64     `gorm:"not null;default:0" json:"platform_fee_bps"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// EnsureStatistics seeds the singleton row if it does not exist yet.
func EnsureStatistics(db *gorm.DB, basePrice, feeBps int64) error {
	var stats PlatformStatistics
	err := db.First(&stats, statisticsRowID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	stats = PlatformStatistics{
		ID:             statisticsRowID,
		AveragePrice:   basePrice,
		PlatformFeeBps: feeBps,
	}
	return db.Create(&stats).Error
}

// LoadStatistics fetches the singleton row for update inside a transaction.
func LoadStatistics(tx *gorm.DB) (*PlatformStatistics, error) {
	var stats PlatformStatistics
	if err := tx.First(&stats, statisticsRowID).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// SaveStatistics writes the singleton row back.
func SaveStatistics(tx *gorm.DB, stats *PlatformStatistics) error {
	stats.ID = statisticsRowID
	return tx.Save(stats).Error
}
