package farms

import (
	"time"

	"gorm.io/datatypes"

	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Farm represents a registered regenerative farm. Coordinates are fixed-point
// integers (degrees x1e6); baseline carbon is scaled x100.
type Farm struct {
	ID             identifier.ID  `gorm:"primaryKey" json:"id"`
	OwnerID        string         `gorm:"not null;index" json:"owner_id"`
	Latitude       int64          `gorm:"not null" json:"latitude"`
	Longitude      int64          `gorm:"not null" json:"longitude"`
	AreaHectares   int64          `gorm:"not null" json:"area_hectares"`
	BaselineCarbon int64          `gorm:"not null" json:"baseline_carbon"`
	Practices      datatypes.JSON `gorm:"default:'[]'" json:"practices"`
	Verified       bool           `gorm:"not null;default:false" json:"verified"`
	CreditsIssued  int64          `gorm:"not null;default:0" json:"credits_issued"`
	RegisteredAt   time.Time      `json:"registered_at"`
}

// Sensor is an IoT sensor sub-record owned by a farm. The id is
// caller-supplied, at most 32 characters, globally unique.
type Sensor struct {
	ID           string        `gorm:"size:32;primaryKey" json:"id"`
	FarmID       identifier.ID `gorm:"not null;index" json:"farm_id"`
	SensorType   string        `gorm:"not null" json:"sensor_type"`
	Latitude     int64         `json:"latitude"`
	Longitude    int64         `json:"longitude"`
	InstalledAt  time.Time     `json:"installed_at"`
	CalibratedAt time.Time     `json:"calibrated_at"`
	Active       bool          `gorm:"not null;default:true" json:"active"`
}

// PracticeVerification records an authority-asserted compliance outcome for a
// declared regenerative practice.
type PracticeVerification struct {
	ID              identifier.ID `gorm:"primaryKey" json:"id"`
	FarmID          identifier.ID `gorm:"not null;index" json:"farm_id"`
	Practice        string        `gorm:"not null" json:"practice"`
	ComplianceScore int64         `gorm:"not null" json:"compliance_score"`
	VerifiedBy      string        `gorm:"not null" json:"verified_by"`
	VerifiedAt      time.Time     `json:"verified_at"`
}

// maxDeclaredPractices bounds the practice list declared at registration.
const maxDeclaredPractices = 10

// maxSensorIDLength bounds caller-supplied sensor identifiers.
const maxSensorIDLength = 32

// recognizedPractices is the closed set of practice labels the platform
// verifies compliance for.
var recognizedPractices = map[string]struct{}{
	"cover-cropping":     {},
	"no-till":            {},
	"rotational-grazing": {},
	"agroforestry":       {},
	"composting":         {},
	"precision-ag":       {},
}

// IsRecognizedPractice reports whether the label belongs to the closed
// practice set.
func IsRecognizedPractice(label string) bool {
	_, ok := recognizedPractices[label]
	return ok
}
