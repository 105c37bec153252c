package farms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Requests

type RegisterFarmRequest struct {
	Latitude       int64    `json:"latitude"`
	Longitude      int64    `json:"longitude"`
	AreaHectares   int64    `json:"area_hectares"`
	BaselineCarbon int64    `json:"baseline_carbon"`
	Practices      []string `json:"practices"`
}

type RegisterSensorRequest struct {
	SensorID   string `json:"sensor_id"`
	FarmID     string `json:"farm_id"`
	SensorType string `json:"sensor_type"`
	Latitude   int64  `json:"latitude"`
	Longitude  int64  `json:"longitude"`
}

type VerifyPracticeRequest struct {
	FarmID          string `json:"farm_id"`
	Practice        string `json:"practice"`
	ComplianceScore int64  `json:"compliance_score"`
}

// Service owns farm records and their sensor sub-records.
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

// RegisterFarm creates a farm record. The farm id is a pure function of the
// owner identity and location, so re-registering the same pair always fails.
func (s *Service) RegisterFarm(ctx context.Context, owner string, req RegisterFarmRequest) (*Farm, error) {
	if owner == "" {
		return nil, fmt.Errorf("%w: owner identity is required", ledger.ErrInvalidFarm)
	}
	if req.AreaHectares <= 0 {
		return nil, fmt.Errorf("%w: area must be positive", ledger.ErrInvalidFarm)
	}
	if req.BaselineCarbon <= 0 {
		return nil, fmt.Errorf("%w: baseline carbon must be positive", ledger.ErrInvalidFarm)
	}
	if len(req.Practices) > maxDeclaredPractices {
		return nil, fmt.Errorf("%w: at most %d practices may be declared", ledger.ErrInvalidFarm, maxDeclaredPractices)
	}

	farmID := identifier.Derive(
		identifier.String(owner),
		identifier.Int64(req.Latitude),
		identifier.Int64(req.Longitude),
	)

	practices, err := json.Marshal(req.Practices)
	if err != nil {
		return nil, fmt.Errorf("failed to encode practices: %w", err)
	}

	farm := &Farm{
		ID:             farmID,
		OwnerID:        owner,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		AreaHectares:   req.AreaHectares,
		BaselineCarbon: req.BaselineCarbon,
		Practices:      datatypes.JSON(practices),
		Verified:       false,
		CreditsIssued:  0,
		RegisteredAt:   s.clock(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Farm
		if err := tx.First(&existing, "id = ?", farmID).Error; err == nil {
			return fmt.Errorf("%w: farm already registered for this owner and location", ledger.ErrInvalidFarm)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(farm).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("farm registered",
		zap.String("farm_id", farm.ID.Hex()),
		zap.String("owner_id", owner))
	return farm, nil
}

// RegisterSensor attaches an active sensor to a farm. Only the farm's owner
// may register sensors for it.
func (s *Service) RegisterSensor(ctx context.Context, caller string, req RegisterSensorRequest) (*Sensor, error) {
	if req.SensorID == "" || len(req.SensorID) > maxSensorIDLength {
		return nil, fmt.Errorf("%w: sensor id must be 1-%d characters", ledger.ErrInvalidSensor, maxSensorIDLength)
	}
	farmID, err := identifier.Parse(req.FarmID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidFarm, err)
	}

	now := s.clock()
	sensor := &Sensor{
		ID:           req.SensorID,
		FarmID:       farmID,
		SensorType:   req.SensorType,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		InstalledAt:  now,
		CalibratedAt: now,
		Active:       true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm Farm
		if err := tx.First(&farm, "id = ?", farmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown farm %s", ledger.ErrInvalidFarm, farmID)
			}
			return err
		}
		if farm.OwnerID != caller {
			return fmt.Errorf("%w: only the farm owner may register sensors", ledger.ErrUnauthorized)
		}
		var existing Sensor
		if err := tx.First(&existing, "id = ?", req.SensorID).Error; err == nil {
			return fmt.Errorf("%w: sensor %q already registered", ledger.ErrDuplicateSensor, req.SensorID)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(sensor).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sensor registered",
		zap.String("sensor_id", sensor.ID),
		zap.String("farm_id", farmID.Hex()))
	return sensor, nil
}

// VerifyPractice records an authority-asserted compliance outcome for a
// recognized practice label and marks the farm verified.
func (s *Service) VerifyPractice(ctx context.Context, caller string, req VerifyPracticeRequest) (*PracticeVerification, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, err
	}
	if !IsRecognizedPractice(req.Practice) {
		return nil, fmt.Errorf("%w: unknown practice label %q", ledger.ErrInvalidPractice, req.Practice)
	}
	if req.ComplianceScore < 0 || req.ComplianceScore > 100 {
		return nil, fmt.Errorf("%w: compliance score must be within [0,100]", ledger.ErrInvalidPractice)
	}
	farmID, err := identifier.Parse(req.FarmID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidFarm, err)
	}

	verification := &PracticeVerification{
		ID: identifier.Derive(
			farmID[:],
			identifier.String(req.Practice),
			identifier.Uint64(s.seq.Next()),
		),
		FarmID:          farmID,
		Practice:        req.Practice,
		ComplianceScore: req.ComplianceScore,
		VerifiedBy:      caller,
		VerifiedAt:      s.clock(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm Farm
		if err := tx.First(&farm, "id = ?", farmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown farm %s", ledger.ErrInvalidFarm, farmID)
			}
			return err
		}
		if err := tx.Create(verification).Error; err != nil {
			return err
		}
		if !farm.Verified {
			farm.Verified = true
			if err := tx.Save(&farm).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("practice verified",
		zap.String("farm_id", farmID.Hex()),
		zap.String("practice", req.Practice),
		zap.Int64("compliance_score", req.ComplianceScore))
	return verification, nil
}

// GetFarm fetches a farm by id.
func (s *Service) GetFarm(ctx context.Context, id identifier.ID) (*Farm, error) {
	var farm Farm
	if err := s.db.WithContext(ctx).First(&farm, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: farm %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &farm, nil
}

// GetSensor fetches a sensor by id.
func (s *Service) GetSensor(ctx context.Context, id string) (*Sensor, error) {
	var sensor Sensor
	if err := s.db.WithContext(ctx).First(&sensor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: sensor %q", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &sensor, nil
}

// ListSensors returns the sensors registered for a farm.
func (s *Service) ListSensors(ctx context.Context, farmID identifier.ID) ([]Sensor, error) {
	var sensors []Sensor
	if err := s.db.WithContext(ctx).Where("farm_id = ?", farmID).Order("id").Find(&sensors).Error; err != nil {
		return nil, err
	}
	return sensors, nil
}

// GetPracticeVerification fetches a practice verification by id.
func (s *Service) GetPracticeVerification(ctx context.Context, id identifier.ID) (*PracticeVerification, error) {
	var verification PracticeVerification
	if err := s.db.WithContext(ctx).First(&verification, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: practice verification %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &verification, nil
}
