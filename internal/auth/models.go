package auth

import "time"

// Account is a platform login. The account id is the caller identity every
// ledger operation receives; the platform authority is simply the account
// whose id matches the configured authority id.
type Account struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
