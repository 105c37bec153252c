package measurements

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/farms"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/workflows"
)

// Requests

type SensorMeasurementRequest struct {
	SensorID    string `json:"sensor_id"`
	CarbonLevel int64  `json:"carbon_level"`
	Confidence  int64  `json:"confidence"`
}

type SatelliteMeasurementRequest struct {
	FarmID          string `json:"farm_id"`
	Provider        string `json:"provider"`
	VegetationIndex int64  `json:"vegetation_index"`
	CarbonEstimate  int64  `json:"carbon_estimate"`
	CloudCover      int64  `json:"cloud_cover"`
	QualityScore    int64  `json:"quality_score"`
}

type VerifyMeasurementRequest struct {
	MeasurementID string `json:"measurement_id"`
	VerifiedLevel int64  `json:"verified_level"`
	Method        string `json:"method"`
	Notes         string `json:"notes"`
}

// Service owns carbon-measurement records and their verification outcomes.
type Service struct {
	db        *gorm.DB
	guard     *ledger.Guard
	seq       *ledger.Sequence
	clock     ledger.Clock
	lifecycle *workflows.StateMachine
	logger    *zap.Logger
}

func NewService(db *gorm.DB, guard *ledger.Guard, seq *ledger.Sequence, clock ledger.Clock, logger *zap.Logger) *Service {
	return &Service{
		db:        db,
		guard:     guard,
		seq:       seq,
		clock:     clock,
		lifecycle: workflows.NewMeasurementLifecycle(),
		logger:    logger,
	}
}

func validateCarbonLevel(level int64) error {
	if level <= 0 || level > maxCarbonLevel {
		return fmt.Errorf("%w: carbon level must be within (0,%d]", ledger.ErrInvalidMeasurement, maxCarbonLevel)
	}
	return nil
}

// RecordSensorMeasurement ingests a reading from a registered, active sensor.
// Any caller may submit; the sensor is the trust anchor.
func (s *Service) RecordSensorMeasurement(ctx context.Context, caller string, req SensorMeasurementRequest) (*Measurement, error) {
	if err := validateCarbonLevel(req.CarbonLevel); err != nil {
		return nil, err
	}
	if req.Confidence < 0 || req.Confidence > maxConfidence {
		return nil, fmt.Errorf("%w: confidence must be within [0,%d]", ledger.ErrInvalidMeasurement, maxConfidence)
	}

	var measurement *Measurement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sensor farms.Sensor
		if err := tx.First(&sensor, "id = ? AND active = ?", req.SensorID, true).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: sensor %q missing or inactive", ledger.ErrSensorNotFound, req.SensorID)
			}
			return err
		}
		measurement = &Measurement{
			ID: identifier.Derive(
				identifier.String(string(SourceSensor)),
				sensor.FarmID[:],
				identifier.String(sensor.ID),
				identifier.Uint64(s.seq.Next()),
			),
			FarmID:      sensor.FarmID,
			MeasuredAt:  s.clock(),
			CarbonLevel: req.CarbonLevel,
			Source:      SourceSensor,
			SourceID:    sensor.ID,
			Confidence:  req.Confidence,
			Status:      StatusPending,
		}
		return tx.Create(measurement).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sensor measurement recorded",
		zap.String("measurement_id", measurement.ID.Hex()),
		zap.String("sensor_id", req.SensorID),
		zap.Int64("carbon_level", req.CarbonLevel))
	return measurement, nil
}

// RecordSatelliteMeasurement ingests a remote-imagery reading asserted by the
// platform authority. The SatelliteObservation and its Measurement are
// created in the same transaction and share a derivation base, so the pair is
// always consistent.
func (s *Service) RecordSatelliteMeasurement(ctx context.Context, caller string, req SatelliteMeasurementRequest) (*Measurement, *SatelliteObservation, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, nil, err
	}
	farmID, err := identifier.Parse(req.FarmID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ledger.ErrInvalidFarm, err)
	}
	if err := validateCarbonLevel(req.CarbonEstimate); err != nil {
		return nil, nil, err
	}
	if req.VegetationIndex < -maxVegetationIndex || req.VegetationIndex > maxVegetationIndex {
		return nil, nil, fmt.Errorf("%w: vegetation index must be within [-%d,%d]", ledger.ErrInvalidMeasurement, maxVegetationIndex, maxVegetationIndex)
	}
	if req.CloudCover < 0 || req.CloudCover > maxCloudCover {
		return nil, nil, fmt.Errorf("%w: cloud cover must be within [0,%d]", ledger.ErrInvalidMeasurement, maxCloudCover)
	}
	if req.QualityScore < 0 || req.QualityScore > maxQualityScore {
		return nil, nil, fmt.Errorf("%w: quality score must be within [0,%d]", ledger.ErrInvalidMeasurement, maxQualityScore)
	}
	if req.Provider == "" {
		return nil, nil, fmt.Errorf("%w: provider is required", ledger.ErrInvalidMeasurement)
	}

	var (
		measurement *Measurement
		observation *SatelliteObservation
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm farms.Farm
		if err := tx.First(&farm, "id = ?", farmID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: unknown farm %s", ledger.ErrInvalidFarm, farmID)
			}
			return err
		}

		now := s.clock()
		measurementID := identifier.Derive(
			identifier.String(string(SourceSatellite)),
			farmID[:],
			identifier.String(req.Provider),
			identifier.Uint64(s.seq.Next()),
		)
		measurement = &Measurement{
			ID:          measurementID,
			FarmID:      farmID,
			MeasuredAt:  now,
			CarbonLevel: req.CarbonEstimate,
			Source:      SourceSatellite,
			SourceID:    req.Provider,
			Confidence:  req.QualityScore,
			Status:      StatusPending,
		}
		observation = &SatelliteObservation{
			// The observation id derives from the measurement id plus the
			// provider tag, binding the pair.
			ID:              identifier.Derive(measurementID[:], identifier.String(req.Provider)),
			MeasurementID:   measurementID,
			FarmID:          farmID,
			Provider:        req.Provider,
			ImageTime:       now,
			VegetationIndex: req.VegetationIndex,
			CarbonEstimate:  req.CarbonEstimate,
			CloudCover:      req.CloudCover,
			QualityScore:    req.QualityScore,
		}
		if err := tx.Create(measurement).Error; err != nil {
			return err
		}
		return tx.Create(observation).Error
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("satellite measurement recorded",
		zap.String("measurement_id", measurement.ID.Hex()),
		zap.String("provider", req.Provider),
		zap.String("farm_id", farmID.Hex()))
	return measurement, observation, nil
}

// VerifyMeasurement performs the one-shot PENDING to VERIFIED transition:
// writes the VerificationRecord, overwrites the measurement's carbon level,
// stamps the verifier, and advances the verified-carbon statistic.
func (s *Service) VerifyMeasurement(ctx context.Context, caller string, req VerifyMeasurementRequest) (*VerificationRecord, error) {
	if err := s.guard.RequireAuthority(caller); err != nil {
		return nil, err
	}
	measurementID, err := identifier.Parse(req.MeasurementID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
	}
	if err := validateCarbonLevel(req.VerifiedLevel); err != nil {
		return nil, err
	}
	if len(req.Notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ledger.ErrInvalidMeasurement, maxNotesLength)
	}

	var record *VerificationRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var measurement Measurement
		if err := tx.First(&measurement, "id = ?", measurementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: measurement %s", ledger.ErrNotFound, measurementID)
			}
			return err
		}
		if !s.lifecycle.CanTransition(string(measurement.Status), string(StatusVerified)) {
			return fmt.Errorf("%w: measurement is %s, expected %s", ledger.ErrInvalidState, measurement.Status, StatusPending)
		}

		now := s.clock()
		record = &VerificationRecord{
			ID: identifier.Derive(
				measurementID[:],
				identifier.String(caller),
				identifier.Uint64(s.seq.Next()),
			),
			MeasurementID: measurementID,
			VerifierID:    caller,
			Method:        req.Method,
			CarbonLevel:   req.VerifiedLevel,
			Confidence:    measurement.Confidence,
			VerifiedAt:    now,
			Notes:         req.Notes,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		measurement.CarbonLevel = req.VerifiedLevel
		measurement.Status = StatusVerified
		measurement.VerifiedBy = &record.VerifierID
		measurement.VerifiedAt = &now
		if err := tx.Save(&measurement).Error; err != nil {
			return err
		}

		stats, err := ledger.LoadStatistics(tx)
		if err != nil {
			return err
		}
		stats.TotalVerifiedCarbon += req.VerifiedLevel
		return ledger.SaveStatistics(tx, stats)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("measurement verified",
		zap.String("measurement_id", measurementID.Hex()),
		zap.String("verification_id", record.ID.Hex()),
		zap.Int64("verified_level", req.VerifiedLevel))
	return record, nil
}

// GetMeasurement fetches a measurement by id.
func (s *Service) GetMeasurement(ctx context.Context, id identifier.ID) (*Measurement, error) {
	var measurement Measurement
	if err := s.db.WithContext(ctx).First(&measurement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: measurement %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &measurement, nil
}

// GetObservation fetches a satellite observation by id.
func (s *Service) GetObservation(ctx context.Context, id identifier.ID) (*SatelliteObservation, error) {
	var observation SatelliteObservation
	if err := s.db.WithContext(ctx).First(&observation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: satellite observation %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &observation, nil
}

// GetVerification fetches a verification record by id.
func (s *Service) GetVerification(ctx context.Context, id identifier.ID) (*VerificationRecord, error) {
	var record VerificationRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: verification %s", ledger.ErrNotFound, id)
		}
		return nil, err
	}
	return &record, nil
}

// LatestSequestration computes the sequestration delta for a farm from its
// latest verified measurement. Farms without a verified measurement
// sequester zero by definition.
func (s *Service) LatestSequestration(ctx context.Context, farmID identifier.ID) (int64, error) {
	var farm farms.Farm
	if err := s.db.WithContext(ctx).First(&farm, "id = ?", farmID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: farm %s", ledger.ErrNotFound, farmID)
		}
		return 0, err
	}
	var measurement Measurement
	err := s.db.WithContext(ctx).
		Where("farm_id = ? AND status = ?", farmID, StatusVerified).
		Order("verified_at DESC").
		First(&measurement).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return Sequestration(measurement.CarbonLevel, farm.BaselineCarbon), nil
}
