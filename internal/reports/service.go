package reports

import (
	"context"

	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
)

// Service builds read-only snapshots for the portal dashboard. It never
// mutates ledger state.
type Service struct {
	repo   Repository
	clock  ledger.Clock
	logger *zap.Logger
}

func NewService(repo Repository, clock ledger.Clock, logger *zap.Logger) *Service {
	return &Service{repo: repo, clock: clock, logger: logger}
}

// PlatformSnapshot aggregates registry and verification totals.
func (s *Service) PlatformSnapshot(ctx context.Context) (*PlatformSnapshot, error) {
	snapshot, err := s.repo.PlatformSnapshot(ctx)
	if err != nil {
		s.logger.Error("platform snapshot failed", zap.Error(err))
		return nil, err
	}
	snapshot.GeneratedAt = s.clock()
	return snapshot, nil
}

// MarketplaceSnapshot aggregates trading totals.
func (s *Service) MarketplaceSnapshot(ctx context.Context) (*MarketplaceSnapshot, error) {
	snapshot, err := s.repo.MarketplaceSnapshot(ctx)
	if err != nil {
		s.logger.Error("marketplace snapshot failed", zap.Error(err))
		return nil, err
	}
	snapshot.GeneratedAt = s.clock()
	return snapshot, nil
}
