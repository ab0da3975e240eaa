package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fls_backend/internal/middleware"
	"fls_backend/internal/models"
	"fls_backend/internal/services"
	"fls_backend/internal/services/dto"
)

type ProjectHandler struct {
	*BaseHandler
	projectService  services.ProjectService
	proposalService services.ProposalService
	reviewService   services.ReviewService
	disputeService  services.DisputeService
}

func NewProjectHandler(
	base *BaseHandler,
	projectService services.ProjectService,
	proposalService services.ProposalService,
	reviewService services.ReviewService,
	disputeService services.DisputeService,
) *ProjectHandler {
	return &ProjectHandler{
		BaseHandler:     base,
		projectService:  projectService,
		proposalService: proposalService,
		reviewService:   reviewService,
		disputeService:  disputeService,
	}
}

func (h *ProjectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.Use(middleware.AuthMiddleware())
	{
		projects.POST("", h.Create)
		projects.GET("", h.ListAvailable)
		projects.GET("/mine", h.ListMine)
		projects.GET("/saved", h.ListSaved)
		projects.GET("/:id", h.Get)
		projects.PUT("/:id", h.Update)
		projects.DELETE("/:id", h.Delete)
		projects.POST("/:id/save", h.SaveUnsave)

		projects.GET("/:id/proposals", h.ListProposals)
		projects.POST("/:id/proposals", h.SubmitProposal)
		projects.POST("/:id/proposals/:proposalId/choose", h.ChooseProposal)
		projects.GET("/:id/chosen", h.GetChosen)

		projects.PUT("/:id/complete", h.MarkComplete)

		projects.POST("/:id/disputes", h.OpenDispute)
		projects.GET("/:id/disputes", h.ListDisputes)
	}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.CreateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.projectService.CreateProject(h.GetDB(c), user, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) ListAvailable(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.projectService.ListAvailable(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) ListMine(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	status := models.ProjectStatus(c.Query("status"))
	resp, err := h.projectService.ListOwned(h.GetDB(c), user.ID, status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) ListSaved(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.projectService.ListSaved(h.GetDB(c), user.ID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	if _, ok := h.CurrentUser(c); !ok {
		return
	}

	resp, err := h.projectService.GetProject(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProjectRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.projectService.UpdateProject(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(h.GetDB(c), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted and points restored"})
}

type saveUnsaveRequest struct {
	Save bool `json:"save"`
}

func (h *ProjectHandler) SaveUnsave(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req saveUnsaveRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	if err := h.projectService.SetSaved(h.GetDB(c), user, c.Param("id"), req.Save); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": req.Save})
}

func (h *ProjectHandler) ListProposals(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.proposalService.ListForProject(h.GetDB(c), user, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) SubmitProposal(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.SubmitProposalRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.proposalService.SubmitProposal(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) ChooseProposal(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.proposalService.ChooseProposal(h.GetDB(c), user, c.Param("id"), c.Param("proposalId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) GetChosen(c *gin.Context) {
	if _, ok := h.CurrentUser(c); !ok {
		return
	}

	resp, err := h.proposalService.GetChosen(h.GetDB(c), c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProjectHandler) MarkComplete(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	if err := h.reviewService.MarkComplete(h.GetDB(c), user, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project marked as complete"})
}

func (h *ProjectHandler) OpenDispute(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req dto.OpenDisputeRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	resp, err := h.disputeService.OpenDispute(h.GetDB(c), user, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProjectHandler) ListDisputes(c *gin.Context) {
	user, ok := h.CurrentUser(c)
	if !ok {
		return
	}

	resp, err := h.disputeService.ListForProject(h.GetDB(c), user, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
