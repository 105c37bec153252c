package marketplace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/buyers"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/credits"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/workflows"
)

// Requests

type PurchaseRequest struct {
	CreditID     string `json:"credit_id"`
	Amount       int64  `json:"amount"`
	MaxUnitPrice int64  `json:"max_unit_price"`
}

// Service clears credit purchases between farmers and verified corporate
// buyers, extracting the platform fee and advancing the global statistics.
type Service struct {
	db        *gorm.DB
	seq       *ledger.Sequence
	clock     ledger.Clock
	lifecycle *workflows.StateMachine
	logger    *zap.Logger
}

func NewService(db *gorm.DB, seq *ledger.Sequence, clock ledger.Clock, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		seq:       seq,
		clock:     clock,
		lifecycle: workflows.NewCreditLifecycle(),
		logger:    logger,
	}
}

// PurchaseCredits clears a purchase. All checks run before any write; a
// failure at any step leaves every entity unchanged.
func (s *Service) PurchaseCredits(ctx context.Context, caller string, req PurchaseRequest) (*CreditTransaction, error) {
	creditID, err := identifier.Parse(req.CreditID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidCredit, err)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: purchase amount must be positive", ledger.ErrInvalidCredit)
	}

	var transaction *CreditTransaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var credit credits.CarbonCredit
		if err := tx.First(&credit, "id = ?", creditID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: credit %s", ledger.ErrInvalidCredit, creditID)
			}
			return err
		}

		var buyer buyers.CorporateBuyer
		if err := tx.First(&buyer, "id = ?", caller).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: caller has no buyer profile", ledger.ErrInvalidBuyer)
			}
			return err
		}
		if !buyer.Verified {
			return fmt.Errorf("%w: buyer is not verified", ledger.ErrUnauthorized)
		}
		if credit.Status != credits.StatusVerified {
			return fmt.Errorf("%w: credit is %s, expected %s", ledger.ErrInvalidState, credit.Status, credits.StatusVerified)
		}
		if req.Amount > credit.Amount {
			return fmt.Errorf("%w: requested %d, remaining %d", ledger.ErrInsufficientCredits, req.Amount, credit.Amount)
		}
		if credit.UnitPrice > req.MaxUnitPrice {
			return fmt.Errorf("%w: unit price %d exceeds limit %d", ledger.ErrPriceTooHigh, credit.UnitPrice, req.MaxUnitPrice)
		}

		stats, err := ledger.LoadStatistics(tx)
		if err != nil {
			return err
		}

		totalPrice := req.Amount * credit.UnitPrice
		platformFee := totalPrice * stats.PlatformFeeBps / 10_000
		farmerPayment := totalPrice - platformFee

		var tags []string
		if len(credit.CoBenefits) > 0 {
			if err := json.Unmarshal(credit.CoBenefits, &tags); err != nil {
				return fmt.Errorf("failed to decode co-benefits: %w", err)
			}
		}
		premium := credits.CoBenefitPremium(credit.UnitPrice, len(tags))

		if !s.lifecycle.CanTransition(string(credit.Status), string(credits.StatusSold)) {
			return fmt.Errorf("%w: credit cannot transition to %s", ledger.ErrInvalidState, credits.StatusSold)
		}

		transaction = &CreditTransaction{
			ID: identifier.Derive(
				creditID[:],
				identifier.String(caller),
				identifier.Uint64(s.seq.Next()),
			),
			CreditID:         creditID,
			SellerID:         credit.FarmerID,
			BuyerID:          caller,
			Amount:           req.Amount,
			UnitPrice:        credit.UnitPrice,
			TotalPrice:       totalPrice,
			PlatformFee:      platformFee,
			FarmerPayment:    farmerPayment,
			CoBenefitPremium: premium,
			ExecutedAt:       s.clock(),
		}
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}

		// The credit is marked SOLD on any successful purchase, even when a
		// positive balance remains. Preserved as observed platform behaviour;
		// flagged to stakeholders as a likely policy defect.
		credit.Amount -= req.Amount
		credit.Status = credits.StatusSold
		if err := tx.Save(&credit).Error; err != nil {
			return err
		}

		buyer.TotalPurchases += req.Amount
		if err := tx.Save(&buyer).Error; err != nil {
			return err
		}

		stats.TotalCreditsSold += req.Amount
		stats.TotalRevenue += totalPrice
		return ledger.SaveStatistics(tx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("credits purchased",
		zap.String("transaction_id", transaction.ID.Hex()),
		zap.String("credit_id", creditID.Hex()),
		zap.String("buyer_id", caller),
		zap.Int64("amount", req.Amount),
		zap.Int64("total_price", transaction.TotalPrice))
	return transaction, nil
}

// GetTransaction fetches a transaction by id.
func (s *Service) GetTransaction(ctx context.Context, id identifier.ID) (*CreditTransaction, error) {
	var transaction CreditTransaction
	if err := s.db.WithContext(ctx).First(&transaction, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &transaction, nil
}

// ListBuyerTransactions returns a buyer's purchase history.
func (s *Service) ListBuyerTransactions(ctx context.Context, buyerID string) ([]CreditTransaction, error) {
	var result []CreditTransaction
	if err := s.db.WithContext(ctx).Where("buyer_id = ?", buyerID).Order("executed_at").Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Statistics returns the platform statistics snapshot.
func (s *Service) Statistics(ctx context.Context) (*ledger.PlatformStatistics, error) {
	return ledger.LoadStatistics(s.db.WithContext(ctx))
}
