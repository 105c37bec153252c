package credits

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

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/farms"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

const testAuthority = "authority-1"

type testEnv struct {
	db      *gorm.DB
	service *Service
	farm    *farms.Farm
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&farms.Farm{}, &farms.Sensor{}, &farms.PracticeVerification{},
		&CarbonCredit{}, &IncentivePayment{},
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
		db:      db,
		service: NewService(db, guard, seq, clock, zap.NewNop()),
		farm:    farm,
	}
}

func (e *testEnv) statistics(t *testing.T) *ledger.PlatformStatistics {
	t.Helper()
	stats, err := ledger.LoadStatistics(e.db)
	require.NoError(t, err)
	return stats
}

func TestIssueCredits(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	credit, err := env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
		FarmID:      env.farm.ID.Hex(),
		FarmerID:    "farmer-1",
		Amount:      100_000,
		VintageYear: 2026,
		CoBenefits:  []string{"biodiversity", "water-quality"},
		Methodology: "soil-core-v2",
	})
	require.NoError(t, err)

	// 2500 base plus a 2% premium per tag: 2500 + 2500*400/10000 = 2600.
	assert.Equal(t, int64(2_600), credit.UnitPrice)
	assert.Equal(t, StatusVerified, credit.Status)
	assert.Equal(t, credit.IssuedAt, credit.VerifiedAt)

	farm := &farms.Farm{}
	require.NoError(t, env.db.First(farm, "id = ?", env.farm.ID).Error)
	assert.Equal(t, int64(100_000), farm.CreditsIssued)
	assert.Equal(t, int64(100_000), env.statistics(t).TotalCreditsIssued)
}

func TestIssueCreditsNoCoBenefits(t *testing.T) {
	env := setupTestEnv(t)

	credit, err := env.service.IssueCredits(context.Background(), testAuthority, IssueCreditsRequest{
		FarmID:   env.farm.ID.Hex(),
		FarmerID: "farmer-1",
		Amount:   5_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2_500), credit.UnitPrice)
}

func TestIssueCreditsAuthorityOnly(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.service.IssueCredits(context.Background(), "farmer-1", IssueCreditsRequest{
		FarmID:   env.farm.ID.Hex(),
		FarmerID: "farmer-1",
		Amount:   5_000,
	})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestIssueCreditsValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
		FarmID: env.farm.ID.Hex(), FarmerID: "farmer-1", Amount: 0,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredit)

	_, err = env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
		FarmID:   env.farm.ID.Hex(),
		FarmerID: "farmer-1",
		Amount:   5_000,
		CoBenefits: []string{
			"biodiversity", "water-quality", "soil-health", "pollinators", "shade", "one-too-many",
		},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredit)

	_, err = env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
		FarmID:   identifier.Derive(identifier.String("no-such-farm")).Hex(),
		FarmerID: "farmer-1",
		Amount:   5_000,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidCredit)
}

func TestUpdatePrice(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	updated, err := env.service.UpdatePrice(ctx, testAuthority, UpdatePriceRequest{NewAveragePrice: 3_000})
	require.NoError(t, err)
	assert.Equal(t, int64(3_000), updated)
	assert.Equal(t, int64(3_000), env.statistics(t).AveragePrice)

	// Subsequent issuances price off the new average.
	credit, err := env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
		FarmID:   env.farm.ID.Hex(),
		FarmerID: "farmer-1",
		Amount:   5_000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3_000), credit.UnitPrice)
}

func TestUpdatePriceValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.UpdatePrice(ctx, testAuthority, UpdatePriceRequest{NewAveragePrice: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidPrice)

	_, err = env.service.UpdatePrice(ctx, "farmer-1", UpdatePriceRequest{NewAveragePrice: 3_000})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestIssueIncentivePayment(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	practice := "cover-cropping"
	payment, err := env.service.IssueIncentivePayment(ctx, testAuthority, IncentivePaymentRequest{
		RecipientID: "farmer-1",
		FarmID:      env.farm.ID.Hex(),
		Amount:      15_000,
		PaymentType: "practice-adoption",
		Practice:    &practice,
	})
	require.NoError(t, err)

	fetched, err := env.service.GetIncentivePayment(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000), fetched.Amount)
	require.NotNil(t, fetched.Practice)
	assert.Equal(t, "cover-cropping", *fetched.Practice)
}

func TestIssueIncentivePaymentValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	_, err := env.service.IssueIncentivePayment(ctx, testAuthority, IncentivePaymentRequest{
		RecipientID: "farmer-1", FarmID: env.farm.ID.Hex(), Amount: 0,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = env.service.IssueIncentivePayment(ctx, testAuthority, IncentivePaymentRequest{
		RecipientID: "", FarmID: env.farm.ID.Hex(), Amount: 100,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = env.service.IssueIncentivePayment(ctx, "farmer-1", IncentivePaymentRequest{
		RecipientID: "farmer-1", FarmID: env.farm.ID.Hex(), Amount: 100,
	})
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestCoBenefitPremium(t *testing.T) {
	assert.Equal(t, int64(0), CoBenefitPremium(2_500, 0))
	assert.Equal(t, int64(50), CoBenefitPremium(2_500, 1))
	assert.Equal(t, int64(100), CoBenefitPremium(2_500, 2))
	assert.Equal(t, int64(250), CoBenefitPremium(2_500, 5))
	// Truncating integer division.
	assert.Equal(t, int64(1), CoBenefitPremium(99, 1))
}

func TestListFarmCredits(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.service.IssueCredits(ctx, testAuthority, IssueCreditsRequest{
			FarmID:   env.farm.ID.Hex(),
			FarmerID: "farmer-1",
			Amount:   1_000,
		})
		require.NoError(t, err)
	}

	listed, err := env.service.ListFarmCredits(ctx, env.farm.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
	assert.Equal(t, int64(3_000), env.statistics(t).TotalCreditsIssued)
}
