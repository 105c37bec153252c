package buyers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
)

// Requests

type RegisterBuyerRequest struct {
	CompanyName         string   `json:"company_name"`
	SustainabilityGoals []string `json:"sustainability_goals"`
	CreditLimit         int64    `json:"credit_limit"`
}

// Service owns corporate-buyer profiles.
type Service struct {
	db     *gorm.DB
	guard  *ledger.Guard
	clock  ledger.Clock
	logger *zap.Logger
}

func NewService(db *gorm.DB, guard *ledger.Guard, clock ledger.Clock, logger *zap.Logger) *Service {
	return &Service{db: db, guard: guard, clock: clock, logger: logger}
}

// RegisterBuyer creates an unverified buyer profile for the caller identity.
func (s *Service) RegisterBuyer(ctx context.Context, caller string, req RegisterBuyerRequest) (*CorporateBuyer, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: caller identity is required", ledger.ErrInvalidBuyer)
	}
	if req.CreditLimit <= 0 {
		return nil, fmt.Errorf("%w: credit limit must be positive", ledger.ErrInvalidBuyer)
	}
	if len(req.SustainabilityGoals) > maxSustainabilityGoals {
		return nil, fmt.Errorf("%w: at most %d sustainability goals", ledger.ErrInvalidBuyer, maxSustainabilityGoals)
	}

	goals, err := json.Marshal(req.SustainabilityGoals)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sustainability goals: %w", err)
	}

	buyer := &CorporateBuyer{
		ID:                  caller,
		CompanyName:         req.CompanyName,
		RegisteredAt:        s.clock(),
		TotalPurchases:      0,
		SustainabilityGoals: datatypes.JSON(goals),
		Verified:            false,
		CreditLimit:         req.CreditLimit,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing CorporateBuyer
		if err := tx.First(&existing, "id = ?", caller).Error; err == nil {
			return fmt.Errorf("%w: buyer already registered", ledger.ErrInvalidBuyer)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(buyer).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("buyer registered",
		zap.String("buyer_id", caller),
		zap.String("company_name", req.CompanyName))
	return buyer, nil
}

// VerifyBuyer marks a buyer as verified. Only the platform authority may set
// the flag; the underlying identity check happens off-ledger and only its
// outcome is recorded.
func (s *Service) VerifyBuyer(ctx context.Context, caller, buyerID string) (*CorporateBuyer, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, err
	}

	var buyer CorporateBuyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&buyer, "id = ?", buyerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: buyer %q", ledger.ErrNotFound, buyerID)
			}
			return err
		}
		if buyer.Verified {
			return nil
		}
		buyer.Verified = true
		return tx.Save(&buyer).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("buyer verified", zap.String("buyer_id", buyerID))
	return &buyer, nil
}

// GetBuyer fetches a buyer profile by identity.
func (s *Service) GetBuyer(ctx context.Context, id string) (*CorporateBuyer, error) {
	var buyer CorporateBuyer
	if err := s.db.WithContext(ctx).First(&buyer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: buyer %q", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &buyer, nil
}
