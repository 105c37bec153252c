package buyers

import (
	"time"

	"gorm.io/datatypes"
)

// CorporateBuyer is a buyer profile keyed by the caller identity. The
// verified flag is settable only by the platform authority; the credit limit
// is recorded at registration.
type CorporateBuyer struct {
	ID                  string         `gorm:"primaryKey" json:"id"`
	CompanyName         string         `gorm:"not null" json:"company_name"`
	RegisteredAt        time.Time      `json:"registered_at"`
	TotalPurchases      int64          `gorm:"not null;default:0" json:"total_purchases"`
	SustainabilityGoals datatypes.JSON `gorm:"default:'[]'" json:"sustainability_goals"`
	Verified            bool           `gorm:"not null;default:false" json:"verified"`
	CreditLimit         int64          `gorm:"not null" json:"credit_limit"`
}

// maxSustainabilityGoals bounds the goal tag list on a buyer profile.
const maxSustainabilityGoals = 5
