package marketplace

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/buyers"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/credits"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/farms"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

const testAuthority = "authority-1"

type testEnv struct {
	db            *gorm.DB
	service       *Service
	creditService *credits.Service
	buyerService  *buyers.Service
	farm          *farms.Farm
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&farms.Farm{}, &farms.Sensor{}, &farms.PracticeVerification{},
		&credits.CarbonCredit{}, &credits.IncentivePayment{},
		&buyers.CorporateBuyer{}, &CreditTransaction{},
		&ledger.PlatformStatistics{},
	))
	require.NoError(t, ledger.EnsureStatistics(db, 2_500, 300))

	guard := ledger.NewGuard(testAuthority)
	seq := ledger.NewSequence(1)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	farmService := farms.NewService(db, guard, seq, clock, zap.NewNop())
	farm, err := farmService.RegisterFarm(context.Background(), "farmer-1", farms.RegisterFarmRequest{
		Latitude:       41_880_000,
		Longitude:      -93_097_000,
		AreaHectares:   120,
		BaselineCarbon: 5_000,
	})
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		service:       NewService(db, seq, clock, zap.NewNop()),
		creditService: credits.NewService(db, guard, seq, clock, zap.NewNop()),
		buyerService:  buyers.NewService(db, guard, clock, zap.NewNop()),
		farm:          farm,
	}
}

func (e *testEnv) issueCredit(t *testing.T, amount int64, coBenefits []string) *credits.CarbonCredit {
	t.Helper()
	credit, err := e.creditService.IssueCredits(context.Background(), testAuthority, credits.IssueCreditsRequest{
		FarmID:      e.farm.ID.Hex(),
		FarmerID:    "farmer-1",
		Amount:      amount,
		VintageYear: 2026,
		CoBenefits:  coBenefits,
		Methodology: "soil-core-v2",
	})
	require.NoError(t, err)
	return credit
}

func (e *testEnv) registerVerifiedBuyer(t *testing.T, id string, limit int64) {
	t.Helper()
	ctx := context.Background()
	_, err := e.buyerService.RegisterBuyer(ctx, id, buyers.RegisterBuyerRequest{
		CompanyName: "Acme Corp",
		CreditLimit: limit,
	})
	require.NoError(t, err)
	_, err = e.buyerService.VerifyBuyer(ctx, testAuthority, id)
	require.NoError(t, err)
}

func TestPurchaseCredits(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	credit := env.issueCredit(t, 100_000, []string{"biodiversity", "water-quality"})
	assert.Equal(t, int64(2_600), credit.UnitPrice)
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	transaction, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID:     credit.ID.Hex(),
		Amount:       40_000,
		MaxUnitPrice: 2_600,
	})
	require.NoError(t, err)

	// 400.00t at 26.00 each: 1,040,000 gross, 3% fee of 31,200.
	assert.Equal(t, int64(1_040_000), transaction.TotalPrice)
	assert.Equal(t, int64(31_200), transaction.PlatformFee)
	assert.Equal(t, int64(1_008_800), transaction.FarmerPayment)
	assert.Equal(t, transaction.TotalPrice, transaction.PlatformFee+transaction.FarmerPayment)
	assert.Equal(t, "farmer-1", transaction.SellerID)
	assert.Equal(t, int64(104), transaction.CoBenefitPremium)

	updated := &credits.CarbonCredit{}
	require.NoError(t, env.db.First(updated, "id = ?", credit.ID).Error)
	assert.Equal(t, int64(60_000), updated.Amount)
	assert.Equal(t, credits.StatusSold, updated.Status)

	buyer, err := env.buyerService.GetBuyer(ctx, "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), buyer.TotalPurchases)

	stats, err := env.service.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(40_000), stats.TotalCreditsSold)
	assert.Equal(t, int64(1_040_000), stats.TotalRevenue)
}

func TestPurchasePartialFillStillMarksSold(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	credit := env.issueCredit(t, 100_000, nil)
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	_, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID:     credit.ID.Hex(),
		Amount:       10_000,
		MaxUnitPrice: 2_500,
	})
	require.NoError(t, err)

	// The first fill flips the credit to SOLD even though 90% of the balance
	// remains, so the remainder can never clear.
	updated := &credits.CarbonCredit{}
	require.NoError(t, env.db.First(updated, "id = ?", credit.ID).Error)
	assert.Equal(t, int64(90_000), updated.Amount)
	assert.Equal(t, credits.StatusSold, updated.Status)

	_, err = env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID:     credit.ID.Hex(),
		Amount:       10_000,
		MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidState)
}

func TestPurchaseRequiresVerifiedBuyer(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	credit := env.issueCredit(t, 10_000, nil)

	// No buyer profile at all.
	_, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 1_000, MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidBuyer)

	// Registered but not yet verified.
	_, err = env.buyerService.RegisterBuyer(ctx, "acme-corp", buyers.RegisterBuyerRequest{
		CompanyName: "Acme Corp", CreditLimit: 500_000,
	})
	require.NoError(t, err)
	_, err = env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 1_000, MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)

	// Nothing was written on either failure.
	var count int64
	require.NoError(t, env.db.Model(&CreditTransaction{}).Count(&count).Error)
	assert.Zero(t, count)
	untouched := &credits.CarbonCredit{}
	require.NoError(t, env.db.First(untouched, "id = ?", credit.ID).Error)
	assert.Equal(t, int64(10_000), untouched.Amount)
	assert.Equal(t, credits.StatusVerified, untouched.Status)
}

func TestPurchaseUnknownCredit(t *testing.T) {
	env := setupTestEnv(t)
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	_, err := env.service.PurchaseCredits(context.Background(), "acme-corp", PurchaseRequest{
		CreditID:     identifier.Derive(identifier.String("no-such-credit")).Hex(),
		Amount:       1_000,
		MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredit)
}

func TestPurchaseAmountValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	credit := env.issueCredit(t, 10_000, nil)
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	_, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 0, MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredit)

	_, err = env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 10_001, MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrInsufficientCredits)
}

func TestPurchasePriceTooHigh(t *testing.T) {
	env := setupTestEnv(t)

	credit := env.issueCredit(t, 10_000, []string{"biodiversity"})
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	// Unit price is 2550 with one tag; a 2500 ceiling rejects.
	_, err := env.service.PurchaseCredits(context.Background(), "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 1_000, MaxUnitPrice: 2_500,
	})
	assert.ErrorIs(t, err, ledger.ErrPriceTooHigh)
}

func TestPlatformFeeTruncates(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// Reprice so a purchase produces a total that does not divide evenly:
	// 101 x 33 = 3333, and 3333 * 300 / 10000 truncates to 9.
	_, err := env.creditService.UpdatePrice(ctx, testAuthority, credits.UpdatePriceRequest{NewAveragePrice: 33})
	require.NoError(t, err)
	credit := env.issueCredit(t, 10_000, nil)
	env.registerVerifiedBuyer(t, "acme-corp", 500_000)

	transaction, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
		CreditID: credit.ID.Hex(), Amount: 101, MaxUnitPrice: 33,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3_333), transaction.TotalPrice)
	assert.Equal(t, int64(9), transaction.PlatformFee)
	assert.Equal(t, int64(3_324), transaction.FarmerPayment)
}

func TestListBuyerTransactions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	env.registerVerifiedBuyer(t, "acme-corp", 500_000)
	var total int64
	for i := 0; i < 3; i++ {
		credit := env.issueCredit(t, 10_000, nil)
		transaction, err := env.service.PurchaseCredits(ctx, "acme-corp", PurchaseRequest{
			CreditID: credit.ID.Hex(), Amount: 2_000, MaxUnitPrice: 2_500,
		})
		require.NoError(t, err)
		total += transaction.TotalPrice
	}

	history, err := env.service.ListBuyerTransactions(ctx, "acme-corp")
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Revenue equals the sum of every transaction's total.
	var sum int64
	for _, transaction := range history {
		sum += transaction.TotalPrice
	}
	stats, err := env.service.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, sum, stats.TotalRevenue)
	assert.Equal(t, total, stats.TotalRevenue)

	fetched, err := env.service.GetTransaction(ctx, history[0].ID)
	require.NoError(t, err)
	assert.Equal(t, history[0].ID, fetched.ID)
}
