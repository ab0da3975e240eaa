package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/models"
	"fls_backend/internal/services"
	"fls_backend/internal/services/dto"
)

type ProposalHandler struct {
	*BaseHandler
	proposalService services.ProposalService
}

func NewProposalHandler(base *BaseHandler, proposalService services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		BaseHandler:     base,
		proposalService: proposalService,
	}
}

func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	proposals := rg.Group("/proposals")
	proposals.Use(middleware.AuthMiddleware())
	{
		proposals.GET("/mine", h.ListMine)
		proposals.PUT("/:id", h.Update)
		proposals.DELETE("/:id", h.Withdraw)
	}
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	db := h.GetDB(c)

	if status := c.Query("project_status"); status != "" {
		resp, err := h.proposalService.ListMineByProjectStatus(db, user.ID, models.ProjectStatus(status))
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.proposalService.ListMine(db, user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProposalHandler) Update(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProposalRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.proposalService.UpdateProposal(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProposalHandler) Withdraw(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.proposalService.WithdrawProposal(h.GetDB(c), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Proposal withdrawn"})
}
