package credits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/farms"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Requests

type IssueCreditsRequest struct {
	FarmID      string   `json:"farm_id"`
	FarmerID    string   `json:"farmer_id"`
	Amount      int64    `json:"amount"`
	VintageYear int      `json:"vintage_year"`
	CoBenefits  []string `json:"co_benefits"`
	Methodology string   `json:"methodology"`
}

type UpdatePriceRequest struct {
	NewAveragePrice int64 `json:"new_average_price"`
}

type IncentivePaymentRequest struct {
	RecipientID string  `json:"recipient_id"`
	FarmID      string  `json:"farm_id"`
	Amount      int64   `json:"amount"`
	PaymentType string  `json:"payment_type"`
	Practice    *string `json:"practice,omitempty"`
}

// Service owns carbon-credit records and their issuance lifecycle.
type Service struct {
	db     *gorm.DB
	guard  *ledger.Guard
	seq    *ledger.Sequence
	clock  ledger.Clock
	logger *zap.Logger
}

func NewService(db *gorm.DB, guard *ledger.Guard, seq *ledger.Sequence, clock ledger.Clock, logger *zap.Logger) *Service {
	return &Service{db: db, guard: guard, seq: seq, clock: clock, logger: logger}
}

// IssueCredits creates a credit priced at the current global average price
// plus the co-benefit premium. The credit is created directly VERIFIED and
// the farm and platform issuance counters advance in the same transaction.
func (s *Service) IssueCredits(ctx context.Context, caller string, req IssueCreditsRequest) (*CarbonCredit, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ledger.ErrInvalidCredit)
	}
	if len(req.CoBenefits) > maxCoBenefits {
		return nil, fmt.Errorf("%w: at most %d co-benefit tags", ledger.ErrInvalidCredit, maxCoBenefits)
	}
	if req.FarmerID == "" {
		return nil, fmt.Errorf("%w: farmer identity is required", ledger.ErrInvalidCredit)
	}
	farmID, err := identifier.Parse(req.FarmID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidCredit, err)
	}

	coBenefits, err := json.Marshal(req.CoBenefits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode co-benefits: %w", err)
	}

	var credit *CarbonCredit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm farms.Farm
		if err := tx.First(&farm, "id = ?", farmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown farm %s", ledger.ErrInvalidCredit, farmID)
			}
			return err
		}

		stats, err := ledger.LoadStatistics(tx)
		if err != nil {
			return err
		}
		basePrice := stats.AveragePrice
		unitPrice := basePrice + CoBenefitPremium(basePrice, len(req.CoBenefits))

		now := s.clock()
		credit = &CarbonCredit{
			ID: identifier.Derive(
				farmID[:],
				identifier.String(req.FarmerID),
				identifier.Uint64(s.seq.Next()),
			),
			FarmID:      farmID,
			FarmerID:    req.FarmerID,
			Amount:      req.Amount,
			VintageYear: req.VintageYear,
			IssuedAt:    now,
			VerifiedAt:  now,
			Status:      StatusVerified,
			UnitPrice:   unitPrice,
			CoBenefits:  datatypes.JSON(coBenefits),
			Methodology: req.Methodology,
		}
		if err := tx.Create(credit).Error; err != nil {
			return err
		}

		farm.CreditsIssued += req.Amount
		if err := tx.Save(&farm).Error; err != nil {
			return err
		}

		stats.TotalCreditsIssued += req.Amount
		return ledger.SaveStatistics(tx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credits issued",
		zap.String("credit_id", credit.ID.Hex()),
		zap.String("farm_id", farmID.Hex()),
		zap.Int64("amount", req.Amount),
		zap.Int64("unit_price", credit.UnitPrice))
	return credit, nil
}

// UpdatePrice replaces the global average price used by subsequent
// issuances. Existing credits are not repriced.
func (s *Service) UpdatePrice(ctx context.Context, caller string, req UpdatePriceRequest) (int64, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return 0, err
	}
	if req.NewAveragePrice <= 0 {
		return 0, fmt.Errorf("%w: average price must be positive", ledger.ErrInvalidPrice)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stats, err := ledger.LoadStatistics(tx)
		if err != nil {
			return err
		}
		stats.AveragePrice = req.NewAveragePrice
		return ledger.SaveStatistics(tx, stats)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("average price updated", zap.Int64("new_average_price", req.NewAveragePrice))
	return req.NewAveragePrice, nil
}

// IssueIncentivePayment records an authority payout to a farmer. The log is
// append-only.
func (s *Service) IssueIncentivePayment(ctx context.Context, caller string, req IncentivePaymentRequest) (*IncentivePayment, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ledger.ErrInvalidAmount)
	}
	if req.RecipientID == "" {
		return nil, fmt.Errorf("%w: recipient identity is required", ledger.ErrInvalidAmount)
	}
	farmID, err := identifier.Parse(req.FarmID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAmount, err)
	}

	payment := &IncentivePayment{
		ID: identifier.Derive(
			identifier.String(req.RecipientID),
			farmID[:],
			identifier.Uint64(s.seq.Next()),
		),
		RecipientID: req.RecipientID,
		FarmID:      farmID,
		Amount:      req.Amount,
		PaymentType: req.PaymentType,
		Practice:    req.Practice,
		PaidAt:      s.clock(),
	}
	if err := s.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}

	s.logger.Info("incentive payment issued",
		zap.String("payment_id", payment.ID.Hex()),
		zap.String("recipient_id", req.RecipientID),
		zap.Int64("amount", req.Amount))
	return payment, nil
}

// GetCredit fetches a credit by id.
func (s *Service) GetCredit(ctx context.Context, id identifier.ID) (*CarbonCredit, error) {
	var credit CarbonCredit
	if err := s.db.WithContext(ctx).First(&credit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: credit %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &credit, nil
}

// ListFarmCredits returns all credits issued against a farm.
func (s *Service) ListFarmCredits(ctx context.Context, farmID identifier.ID) ([]CarbonCredit, error) {
	var result []CarbonCredit
	if err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("issued_at").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetIncentivePayment fetches a payment by id.
func (s *Service) GetIncentivePayment(ctx context.Context, id identifier.ID) (*IncentivePayment, error) {
	var payment IncentivePayment
	if err := s.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: incentive payment %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &payment, nil
}
