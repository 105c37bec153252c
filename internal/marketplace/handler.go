package marketplace

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/auth"
	"carbon-scribe/credit-ledger/credit-ledger-backend/internal/ledger"
	"carbon-scribe/credit-ledger/credit-ledger-backend/pkg/identifier"
)

// Handler exposes the marketplace exchange over HTTP.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers marketplace routes on the API group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	market := rg.Group("/marketplace")
	{
		market.POST("/purchases", h.PurchaseCredits)
		market.GET("/transactions/:id", h.GetTransaction)
		market.GET("/statistics", h.Statistics)
	}
	rg.GET("/buyers/:id/transactions", h.ListBuyerTransactions)
}

func (h *Handler) PurchaseCredits(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transaction, err := h.service.PurchaseCredits(c.Request.Context(), auth.CallerID(c), req)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := identifier.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	transaction, err := h.service.GetTransaction(c.Request.Context(), id)
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *Handler) ListBuyerTransactions(c *gin.Context) {
	transactions, err := h.service.ListBuyerTransactions(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(ledger.StatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

func (h *Handler) Statistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
