package credits

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Handler exposes the credit registry over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers credit routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	credits := rg.Group("/credits")
	{
		credits.POST("", h.IssueCredits)
		credits.GET("/:id", h.GetCredit)
	}
	rg.GET("/farms/:id/credits", h.ListFarmCredits)
	rg.PUT("/pricing/average", h.UpdatePrice)
	payments := rg.Group("/incentive-payments")
	{
		payments.POST("", h.IssueIncentivePayment)
		payments.GET("/:id", h.GetIncentivePayment)
	}
}

func (h *Handler) IssueCredits(c *gin.Context) {
	var req IssueCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	credit, err := h.service.IssueCredits(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, credit)
}

func (h *Handler) UpdatePrice(c *gin.Context) {
	var req UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := h.service.UpdatePrice(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"average_price": price})
}

func (h *Handler) IssueIncentivePayment(c *gin.Context) {
	var req IncentivePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.service.IssueIncentivePayment(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (h *Handler) GetCredit(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	credit, err := h.service.GetCredit(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, credit)
}

func (h *Handler) ListFarmCredits(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.service.ListFarmCredits(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"credits": result})
}

func (h *Handler) GetIncentivePayment(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.service.GetIncentivePayment(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, payment)
}
