package buyers

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

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
)

const testAuthority = "authority-1"

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&CorporateBuyer{}))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewService(db, ledger.NewGuard(testAuthority), func() time.Time { return now }, zap.NewNop())
}

func TestRegisterBuyer(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	buyer, err := service.RegisterBuyer(ctx, "acme-corp", RegisterBuyerRequest{
		CompanyName:         "Acme Corp",
		SustainabilityGoals: []string{"net-zero-2030", "scope-3-offsets"},
		CreditLimit:         500_000,
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", buyer.ID)
	assert.False(t, buyer.Verified)
	assert.Zero(t, buyer.TotalPurchases)

	fetched, err := service.GetBuyer(ctx, "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", fetched.CompanyName)
	assert.Equal(t, int64(500_000), fetched.CreditLimit)
}

func TestRegisterBuyerDuplicate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	req := RegisterBuyerRequest{CompanyName: "Acme Corp", CreditLimit: 500_000}
	_, err := service.RegisterBuyer(ctx, "acme-corp", req)
	require.NoError(t, err)

	_, err = service.RegisterBuyer(ctx, "acme-corp", req)
	assert.ErrorIs(t, err, ledger.ErrInvalidBuyer)
}

func TestRegisterBuyerValidation(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.RegisterBuyer(ctx, "acme-corp", RegisterBuyerRequest{CreditLimit: 0})
	assert.ErrorIs(t, err, ledger.ErrInvalidBuyer)

	_, err = service.RegisterBuyer(ctx, "", RegisterBuyerRequest{CreditLimit: 100})
	assert.ErrorIs(t, err, ledger.ErrInvalidBuyer)

	_, err = service.RegisterBuyer(ctx, "acme-corp", RegisterBuyerRequest{
		CreditLimit: 100,
		SustainabilityGoals: []string{
			"goal-1", "goal-2", "goal-3", "goal-4", "goal-5", "goal-6",
		},
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidBuyer)
}

func TestVerifyBuyer(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.RegisterBuyer(ctx, "acme-corp", RegisterBuyerRequest{
		CompanyName: "Acme Corp", CreditLimit: 500_000,
	})
	require.NoError(t, err)

	buyer, err := service.VerifyBuyer(ctx, testAuthority, "acme-corp")
	require.NoError(t, err)
	assert.True(t, buyer.Verified)

	// Verifying twice is a no-op, not an error.
	buyer, err = service.VerifyBuyer(ctx, testAuthority, "acme-corp")
	require.NoError(t, err)
	assert.True(t, buyer.Verified)
}

func TestVerifyBuyerAuthorityOnly(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	_, err := service.RegisterBuyer(ctx, "acme-corp", RegisterBuyerRequest{
		CompanyName: "Acme Corp", CreditLimit: 500_000,
	})
	require.NoError(t, err)

	_, err = service.VerifyBuyer(ctx, "acme-corp", "acme-corp")
	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestVerifyBuyerUnknown(t *testing.T) {
	service := newTestService(t)

	_, err := service.VerifyBuyer(context.Background(), testAuthority, "nobody")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
