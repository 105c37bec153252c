package credits

import (
	"time"

	"gorm.io/datatypes"

	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// CreditStatus is the carbon-credit lifecycle state. PENDING and RETIRED are
// declared for forward compatibility; issuance creates credits directly
// VERIFIED and the marketplace only moves them to SOLD.
type CreditStatus string

const (
	StatusPending  CreditStatus = "PENDING"
	StatusVerified CreditStatus = "VERIFIED"
	StatusSold     CreditStatus = "SOLD"
	StatusRetired  CreditStatus = "RETIRED"
)

// CarbonCredit is a tradable credit record. Amount is the remaining balance
// in tonnes x100; it only ever decreases on purchase and never goes negative.
// UnitPrice is integer cents.
type CarbonCredit struct {
	ID          identifier.ID  `gorm:"primaryKey" json:"id"`
	FarmID      identifier.ID  `gorm:"not null;index" json:"farm_id"`
	FarmerID    string         `gorm:"not null;index" json:"farmer_id"`
	Amount      int64          `gorm:"not null" json:"amount"`
	VintageYear int            `gorm:"not null;index" json:"vintage_year"`
	IssuedAt    time.Time      `json:"issued_at"`
	VerifiedAt  time.Time      `json:"verified_at"`
	Status      CreditStatus   `gorm:"not null;index" json:"status"`
	UnitPrice   int64          `gorm:"not null" json:"unit_price"`
	CoBenefits  datatypes.JSON `gorm:"default:'[]'" json:"co_benefits"`
	Methodology string         `gorm:"not null" json:"methodology"`
}

// IncentivePayment is an append-only record of a platform payout to a
// farmer. It is never mutated after being written.
type IncentivePayment struct {
	ID          identifier.ID `gorm:"primaryKey" json:"id"`
	RecipientID string        `gorm:"not null;index" json:"recipient_id"`
	FarmID      identifier.ID `gorm:"not null;index" json:"farm_id"`
	Amount      int64         `gorm:"not null" json:"amount"`
	PaymentType string        `gorm:"not null" json:"payment_type"`
	Practice    *string       `json:"practice,omitempty"`
	PaidAt      time.Time     `json:"paid_at"`
}

// maxCoBenefits bounds the co-benefit tag list on a credit.
const maxCoBenefits = 5

// coBenefitPremiumBps is the per-tag premium rate in basis points.
const coBenefitPremiumBps = 200

// CoBenefitPremium computes the price premium for a credit's co-benefit
// tags: basePrice x (200 bps per tag), truncating integer division.
func CoBenefitPremium(basePrice int64, tagCount int) int64 {
	return basePrice * (coBenefitPremiumBps * int64(tagCount)) / 10_000
}
