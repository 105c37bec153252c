package marketplace

import (
	"time"

	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// CreditTransaction is the immutable record of a cleared purchase. Amounts
// are tonnes x100; prices, fees, and premiums are integer cents.
type CreditTransaction struct {
	ID               identifier.ID `gorm:"primaryKey" json:"id"`
	CreditID         identifier.ID `gorm:"not null;index" json:"credit_id"`
	SellerID         string        `gorm:"not null;index" json:"seller_id"`
	BuyerID          string        `gorm:"not null;index" json:"buyer_id"`
	Amount           int64         `gorm:"not null" json:"amount"`
	UnitPrice        int64         `gorm:"not null" json:"unit_price"`
	TotalPrice       int64         `gorm:"not null" json:"total_price"`
	PlatformFee      int64         `gorm:"not null" json:"platform_fee"`
	FarmerPayment    int64         `gorm:"not null" json:"farmer_payment"`
	CoBenefitPremium int64         `gorm:"not null" json:"co_benefit_premium"`
	ExecutedAt       time.Time     `json:"executed_at"`
}
