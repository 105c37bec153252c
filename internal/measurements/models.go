package measurements

import (
	"time"

	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// MeasurementStatus is the measurement lifecycle state. DISPUTED is declared
// for forward compatibility; no operation produces it.
type MeasurementStatus string

const (
	StatusPending  MeasurementStatus = "PENDING"
	StatusVerified MeasurementStatus = "VERIFIED"
	StatusDisputed MeasurementStatus = "DISPUTED"
)

// MeasurementSource identifies where a carbon reading came from.
type MeasurementSource string

const (
	SourceSensor    MeasurementSource = "sensor"
	SourceSatellite MeasurementSource = "satellite"
)

// Measurement is a carbon reading for a farm. Carbon levels are scaled x100;
// confidence is 0-100.
type Measurement struct {
	ID          identifier.ID     `gorm:"primaryKey" json:"id"`
	FarmID      identifier.ID     `gorm:"not null;index" json:"farm_id"`
	MeasuredAt  time.Time         `json:"measured_at"`
	CarbonLevel int64             `gorm:"not null" json:"carbon_level"`
	Source      MeasurementSource `gorm:"not null" json:"source"`
	SourceID    string            `gorm:"not null" json:"source_id"`
	Confidence  int64             `gorm:"not null" json:"confidence"`
	Status      MeasurementStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	VerifiedBy  *string           `json:"verified_by,omitempty"`
	VerifiedAt  *time.Time        `json:"verified_at,omitempty"`
}

// SatelliteObservation is the remote-imagery record paired 1:1 with a
// satellite-sourced Measurement created in the same operation. The vegetation
// index is scaled x1000, the carbon estimate x100.
type SatelliteObservation struct {
	ID              identifier.ID `gorm:"primaryKey" json:"id"`
	MeasurementID   identifier.ID `gorm:"not null;uniqueIndex" json:"measurement_id"`
	FarmID          identifier.ID `gorm:"not null;index" json:"farm_id"`
	Provider        string        `gorm:"not null" json:"provider"`
	ImageTime       time.Time     `json:"image_time"`
	VegetationIndex int64         `gorm:"not null" json:"vegetation_index"`
	CarbonEstimate  int64         `gorm:"not null" json:"carbon_estimate"`
	CloudCover      int64         `gorm:"not null" json:"cloud_cover"`
	QualityScore    int64         `gorm:"not null" json:"quality_score"`
}

// VerificationRecord is the authority-asserted outcome for a measurement,
// created exactly once per measurement.
type VerificationRecord struct {
	ID            identifier.ID `gorm:"primaryKey" json:"id"`
	MeasurementID identifier.ID `gorm:"not null;uniqueIndex" json:"measurement_id"`
	VerifierID    string        `gorm:"not null" json:"verifier_id"`
	Method        string        `gorm:"not null" json:"method"`
	CarbonLevel   int64         `gorm:"not null" json:"carbon_level"`
	Confidence    int64         `gorm:"not null" json:"confidence"`
	VerifiedAt    time.Time     `json:"verified_at"`
	Notes         string        `gorm:"size:128" json:"notes"`
}

// Bounds for measurement fields.
const (
	maxCarbonLevel     = 100_000
	maxConfidence      = 100
	maxVegetationIndex = 1_000
	maxCloudCover      = 100
	maxQualityScore    = 100
	maxNotesLength     = 128
)

// Sequestration is the additional carbon attributable to regenerative
// practice: the verified level minus the farm baseline, floored at zero.
// It is a read-time calculation, never a stored field.
func Sequestration(verifiedLevel, baselineCarbon int64) int64 {
	if verifiedLevel <= baselineCarbon {
		return 0
	}
	return verifiedLevel - baselineCarbon
}
