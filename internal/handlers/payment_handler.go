package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/services"
)

type PaymentHandler struct {
	*BaseHandler
	ledgerService services.LedgerService
}

func NewPaymentHandler(base *BaseHandler, ledgerService services.LedgerService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:   base,
		ledgerService: ledgerService,
	}
}

func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	payments.Use(middleware.AuthMiddleware())
	{
		payments.GET("/balance", h.GetBalance)
		payments.GET("/transactions", h.ListTransactions)
	}
}

func (h *PaymentHandler) GetBalance(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.ledgerService.GetBalance(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.ledgerService.ListTransactions(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
