package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) PlatformSnapshot(ctx context.Context) (*PlatformSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlatformSnapshot), args.Error(1)
}

func (m *MockRepository) MarketplaceSnapshot(ctx context.Context) (*MarketplaceSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MarketplaceSnapshot), args.Error(1)
}

func TestPlatformSnapshot(t *testing.T) {
	mockRepo := new(MockRepository)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	service := NewService(mockRepo, func() time.Time { return now }, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("PlatformSnapshot", ctx).Return(&PlatformSnapshot{
		TotalFarms:          3,
		VerifiedFarms:       1,
		TotalCreditsIssued:  100_000,
		TotalVerifiedCarbon: 9_100,
	}, nil)

	snapshot, err := service.PlatformSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), snapshot.TotalFarms)
	assert.Equal(t, int64(9_100), snapshot.TotalVerifiedCarbon)
	assert.Equal(t, now, snapshot.GeneratedAt)

	mockRepo.AssertExpectations(t)
}

func TestMarketplaceSnapshot(t *testing.T) {
	mockRepo := new(MockRepository)
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	service := NewService(mockRepo, func() time.Time { return now }, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("MarketplaceSnapshot", ctx).Return(&MarketplaceSnapshot{
		TotalTransactions: 2,
		TotalVolume:       40_000,
		TotalRevenue:      1_040_000,
		TotalFees:         31_200,
	}, nil)

	snapshot, err := service.MarketplaceSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.TotalTransactions)
	assert.Equal(t, now, snapshot.GeneratedAt)

	mockRepo.AssertExpectations(t)
}

func TestSnapshotPropagatesRepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, time.Now, zap.NewNop())

	ctx := context.Background()
	mockRepo.On("PlatformSnapshot", ctx).Return(nil, errors.New("connection refused"))

	_, err := service.PlatformSnapshot(ctx)
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}
