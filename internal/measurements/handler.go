package measurements

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Handler exposes the measurement ledger over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers measurement routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	measurements := rg.Group("/measurements")
	{
		measurements.POST("/sensor", h.RecordSensorMeasurement)
		measurements.POST("/satellite", h.RecordSatelliteMeasurement)
		measurements.POST("/verify", h.VerifyMeasurement)
		measurements.GET("/:id", h.GetMeasurement)
	}
	rg.GET("/observations/:id", h.GetObservation)
	rg.GET("/verifications/:id", h.GetVerification)
	rg.GET("/farms/:id/sequestration", h.LatestSequestration)
}

func (h *Handler) RecordSensorMeasurement(c *gin.Context) {
	var req SensorMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	measurement, err := h.service.RecordSensorMeasurement(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, measurement)
}

func (h *Handler) RecordSatelliteMeasurement(c *gin.Context) {
	var req SatelliteMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	measurement, observation, err := h.service.RecordSatelliteMeasurement(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"measurement": measurement, "observation": observation})
}

func (h *Handler) VerifyMeasurement(c *gin.Context) {
	var req VerifyMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.service.VerifyMeasurement(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) GetMeasurement(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	measurement, err := h.service.GetMeasurement(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, measurement)
}

func (h *Handler) GetObservation(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	observation, err := h.service.GetObservation(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, observation)
}

func (h *Handler) GetVerification(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	record, err := h.service.GetVerification(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) LatestSequestration(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sequestration, err := h.service.LatestSequestration(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"farm_id": id, "sequestration": sequestration})
}
