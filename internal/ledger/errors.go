package ledger

import (
	"errors"
	"net/http"
)

// Ledger error taxonomy. Every operation validates completely before writing;
// on failure it aborts with one of these sentinels (usually wrapped with
// context) and no state change is visible.
var (
	// ErrUnauthorized means the caller lacks the required role or
	// relationship (platform authority, farm owner, verified buyer).
	ErrUnauthorized = errors.New("unauthorized")

	// InvalidInput family: malformed or out-of-range arguments.
	ErrInvalidFarm        = errors.New("invalid farm")
	ErrInvalidSensor      = errors.New("invalid sensor")
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrInvalidCredit      = errors.New("invalid credit")
	ErrInvalidBuyer       = errors.New("invalid buyer")
	ErrInvalidPractice    = errors.New("invalid practice")
	ErrInvalidPrice       = errors.New("invalid price")
	ErrInvalidAmount      = errors.New("invalid amount")

	// ErrNotFound means a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is illegal for the entity's
	// current lifecycle state.
	ErrInvalidState = errors.New("invalid state")

	// Marketplace business rules.
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrPriceTooHigh        = errors.New("price too high")

	// Sensor registry rules.
	ErrDuplicateSensor = errors.New("duplicate sensor")
	ErrSensorNotFound  = errors.New("sensor not found")
)

// StatusCode maps a ledger error to an HTTP status for the API handlers.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrSensorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicateSensor):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientCredits), errors.Is(err, ErrPriceTooHigh):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidFarm),
		errors.Is(err, ErrInvalidSensor),
		errors.Is(err, ErrInvalidMeasurement),
		errors.Is(err, ErrInvalidCredit),
		errors.Is(err, ErrInvalidBuyer),
		errors.Is(err, ErrInvalidPractice),
		errors.Is(err, ErrInvalidPrice),
		errors.Is(err, ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
