package buyers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
)

// Handler exposes the buyer registry over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers buyer routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	buyersGroup := rg.Group("/buyers")
	{
		buyersGroup.POST("", h.RegisterBuyer)
		buyersGroup.GET("/:id", h.GetBuyer)
		buyersGroup.POST("/:id/verify", h.VerifyBuyer)
	}
}

func (h *Handler) RegisterBuyer(c *gin.Context) {
	var req RegisterBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	buyer, err := h.service.RegisterBuyer(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, buyer)
}

func (h *Handler) VerifyBuyer(c *gin.Context) {
	buyer, err := h.service.VerifyBuyer(c.Request.Context(), auth.CallerID(c), c.Param("id"))
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, buyer)
}

func (h *Handler) GetBuyer(c *gin.Context) {
	buyer, err := h.service.GetBuyer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, buyer)
}
