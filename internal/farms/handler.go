package farms

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Handler exposes the farm registry over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers farm routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	farms := rg.Group("/farms")
	{
		farms.POST("", h.RegisterFarm)
		farms.GET("/:id", h.GetFarm)
		farms.GET("/:id/sensors", h.ListSensors)
	}
	practices := rg.Group("/practices")
	{
		practices.POST("/verify", h.VerifyPractice)
		practices.GET("/verifications/:id", h.GetPracticeVerification)
	}
	sensors := rg.Group("/sensors")
	{
		sensors.POST("", h.RegisterSensor)
		sensors.GET("/:id", h.GetSensor)
	}
}

func (h *Handler) RegisterFarm(c *gin.Context) {
	var req RegisterFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farm, err := h.service.RegisterFarm(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, farm)
}

func (h *Handler) RegisterSensor(c *gin.Context) {
	var req RegisterSensorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sensor, err := h.service.RegisterSensor(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sensor)
}

func (h *Handler) VerifyPractice(c *gin.Context) {
	var req VerifyPracticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	verification, err := h.service.VerifyPractice(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, verification)
}

func (h *Handler) GetFarm(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	farm, err := h.service.GetFarm(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, farm)
}

func (h *Handler) GetSensor(c *gin.Context) {
	sensor, err := h.service.GetSensor(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sensor)
}

func (h *Handler) ListSensors(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sensors, err := h.service.ListSensors(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sensors": sensors})
}

func (h *Handler) GetPracticeVerification(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	verification, err := h.service.GetPracticeVerification(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, verification)
}
