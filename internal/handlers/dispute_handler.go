package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/services"
)

type DisputeHandler struct {
	*BaseHandler
	disputeService services.DisputeService
}

func NewDisputeHandler(base *BaseHandler, disputeService services.DisputeService) *DisputeHandler {
	return &DisputeHandler{
		BaseHandler:    base,
		disputeService: disputeService,
	}
}

func (h *DisputeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.PUT("/disputes/:id/resolve", h.Resolve)
	}
}

func (h *DisputeHandler) Resolve(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.disputeService.ResolveDispute(h.GetDB(c), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Dispute resolved"})
}
